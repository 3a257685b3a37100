// Package debug contains debugging helpers.
package debug

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
)

// DumpBytes writes a labelled hex dump of data to w.
func DumpBytes(w io.Writer, name string, data []byte) error {
	if _, err := fmt.Fprintf(w, "%s (%d bytes)\n", name, len(data)); err != nil {
		return err
	}
	d := hex.Dumper(w)
	if _, err := d.Write(data); err != nil {
		return err
	}
	return d.Close()
}

// GoStringByteArray renders data as a Go byte slice literal, for pasting
// failing inputs into tests.
func GoStringByteArray(data []byte) string {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "[]byte{")
	for i, b := range data {
		if i%16 == 0 {
			fmt.Fprint(&buf, "\n\t")
		}
		fmt.Fprintf(&buf, "0x%02x, ", b)
	}
	fmt.Fprint(&buf, "\n}")
	return buf.String()
}
