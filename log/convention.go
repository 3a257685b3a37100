package log

import (
	"encoding/hex"
	"sort"
)

// ForComponent adds a tag to the logger labelling the component the logger is
// for.
func ForComponent(logger Logger, name string) Logger {
	return logger.With("component", name)
}

// ForInput labels the logger with the name of the input being parsed.
func ForInput(logger Logger, name string) Logger {
	return logger.With("input", name)
}

// WithBytes adds hex encoded data to the logger context.
func WithBytes(logger Logger, key string, data []byte) Logger {
	return logger.With(key, hex.EncodeToString(data))
}

// WithTags adds every tag to the logger context, in key order.
func WithTags(logger Logger, tags map[string]string) Logger {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger = logger.With(k, tags[k])
	}
	return logger
}

// Err logs an error with an additional message.
func Err(logger Logger, err error, msg string) {
	logger.With("err", err.Error()).Error(msg)
}
