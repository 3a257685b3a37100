package take

import (
	"bytes"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rnd = rand.New(rand.NewSource(1))

// RandBytes returns n random bytes over a small alphabet, so that patterns
// occur often.
func RandBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = "abc"[rnd.Intn(3)]
	}
	return b
}

// AssertSplit checks that head and tail partition s.
func AssertSplit(t *testing.T, s, head, tail []byte) {
	t.Helper()
	assert.Equal(t, len(s), len(head)+len(tail))
	joined := append(append([]byte{}, head...), tail...)
	assert.Equal(t, s, joined)
}

func TestUntil(t *testing.T) {
	before, from, err := Until([]byte("hello world"), " ")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), before)
	assert.Equal(t, []byte(" world"), from)

	before2, from2, err := Until("GET / HTTP/1.1\r\n\r\n", []byte("\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1", before2)
	assert.Equal(t, "\r\n\r\n", from2)
}

func TestUntilCases(t *testing.T) {
	cases := []struct {
		Name    string
		Input   string
		Pattern string
		Before  string
		Err     error
	}{
		{"First", "abab", "ab", "", nil},
		{"Middle", "xxabab", "ab", "xx", nil},
		{"End", "xxxab", "ab", "xxx", nil},
		{"Whole", "ab", "ab", "", nil},
		{"Empty", "abc", "", "", nil},
		{"EmptyBoth", "", "", "", nil},
		{"Missing", "abc", "d", "", ErrNotFound},
		{"PatternLonger", "ab", "abc", "", ErrTooShort},
		{"EmptyInput", "", "a", "", ErrTooShort},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			before, from, err := Until(c.Input, c.Pattern)
			if c.Err != nil {
				assert.Equal(t, c.Err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.Before, before)
			assert.Equal(t, c.Input, before+from)
		})
	}
}

func TestUntilFirstOccurrence(t *testing.T) {
	for i := 0; i < 1000; i++ {
		s := RandBytes(rnd.Intn(20))
		p := RandBytes(1 + rnd.Intn(3))
		before, from, err := Until(s, p)
		idx := bytes.Index(s, p)
		switch {
		case len(p) > len(s):
			assert.Equal(t, ErrTooShort, err)
		case idx < 0:
			assert.Equal(t, ErrNotFound, err)
		default:
			require.NoError(t, err)
			assert.Len(t, before, idx)
			assert.True(t, bytes.HasPrefix(from, p))
			AssertSplit(t, s, before, from)
		}
	}
}

func TestUntilErr(t *testing.T) {
	_, _, err := UntilErr("hello", "z", assert.AnError)
	assert.Equal(t, assert.AnError, err)

	before, from, err := UntilErr("hello", "l", assert.AnError)
	require.NoError(t, err)
	assert.Equal(t, "he", before)
	assert.Equal(t, "llo", from)
}

func TestExact(t *testing.T) {
	s := []byte("hello world")
	head, tail, err := Exact(s, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), head)
	assert.Equal(t, []byte(" world"), tail)
}

func TestExactBounds(t *testing.T) {
	s := "hello"
	for n := -2; n <= len(s)+2; n++ {
		head, tail, err := Exact(s, n)
		switch {
		case n < 0:
			assert.Equal(t, ErrNegativeCount, err)
		case n > len(s):
			assert.Equal(t, ErrTooShort, err)
		default:
			require.NoError(t, err)
			assert.Len(t, head, n)
			assert.Equal(t, s, head+tail)
		}
	}
}

func TestExactErr(t *testing.T) {
	_, _, err := ExactErr("abc", 4, assert.AnError)
	assert.Equal(t, assert.AnError, err)

	head, tail, err := ExactErr("abc", 0, assert.AnError)
	require.NoError(t, err)
	assert.Equal(t, "", head)
	assert.Equal(t, "abc", tail)
}

func TestExpect(t *testing.T) {
	s := []byte("hello world")
	matched, rest, err := Expect(s, "hello ")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello "), matched)
	assert.Equal(t, []byte("world"), rest)
	AssertSplit(t, s, matched, rest)
}

func TestExpectMismatchReturnsInput(t *testing.T) {
	cases := []struct {
		Name    string
		Input   string
		Pattern string
	}{
		{"Differs", "hello world", "help"},
		{"LaterByte", "hello world", "hello!"},
		{"PatternLonger", "hi", "hi there"},
		{"EmptyInput", "", "x"},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			s := []byte(c.Input)
			matched, rest, err := Expect(s, c.Pattern)
			assert.Equal(t, ErrMismatch, err)
			assert.Nil(t, matched)
			assert.Equal(t, s, rest)
			if len(s) > 0 {
				assert.Same(t, &s[0], &rest[0])
			}
		})
	}
}

func TestExpectEmptyPattern(t *testing.T) {
	matched, rest, err := Expect("abc", "")
	require.NoError(t, err)
	assert.Equal(t, "", matched)
	assert.Equal(t, "abc", rest)
}

func TestExpectErr(t *testing.T) {
	_, rest, err := ExpectErr("HTTP/1.1", "HTTP/2", assert.AnError)
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, "HTTP/1.1", rest)
}

func TestMaybe(t *testing.T) {
	matched, rest, ok := Maybe("-----BEGIN KEY-----", "-----BEGIN ")
	assert.True(t, ok)
	assert.Equal(t, "-----BEGIN ", matched)
	assert.Equal(t, "KEY-----", rest)

	matched, rest, ok = Maybe("keyword arg", "-----BEGIN ")
	assert.False(t, ok)
	assert.Equal(t, "", matched)
	assert.Equal(t, "keyword arg", rest)
}

func noB(s []byte) bool { return bytes.IndexByte(s, 'b') < 0 }

func TestSmallest(t *testing.T) {
	s := []byte("aaaabbbbcccc")

	_, _, err := Smallest(s, func(p []byte) bool { return bytes.HasPrefix(p, []byte("bbbb")) }, 0)
	assert.Equal(t, ErrNotFound, err)

	prefix, rest, err := Smallest(s, noB, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), prefix)
	assert.Equal(t, []byte("aaabbbbcccc"), rest)
	AssertSplit(t, s, prefix, rest)
}

func TestSmallestEmptyPrefixCandidate(t *testing.T) {
	// With minSize 0 the empty prefix is the first candidate.
	prefix, rest, err := Smallest([]byte("aaaabbbbcccc"), noB, 0)
	require.NoError(t, err)
	assert.Empty(t, prefix)
	assert.Equal(t, []byte("aaaabbbbcccc"), rest)
}

func TestLargest(t *testing.T) {
	s := []byte("aaaabbbbcccc")

	_, _, err := Largest(s, func(p []byte) bool { return bytes.HasPrefix(p, []byte("b")) }, 0)
	assert.Equal(t, ErrNotFound, err)

	prefix, rest, err := Largest(s, noB, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaa"), prefix)
	assert.Equal(t, []byte("bbbbcccc"), rest)
	AssertSplit(t, s, prefix, rest)
}

func TestLargestNotMonotonic(t *testing.T) {
	f := func(p string) bool { return len(p) == 2 || len(p) == 5 }
	prefix, rest, err := Largest("abcdefgh", f, 0)
	require.NoError(t, err)
	assert.Equal(t, "abcde", prefix)
	assert.Equal(t, "fgh", rest)

	prefix, _, err = Smallest("abcdefgh", f, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab", prefix)
}

func TestPredicateRangeExcludesFullLength(t *testing.T) {
	s := "abcdef"
	whole := func(p string) bool { return len(p) == len(s) }

	_, _, err := Smallest(s, whole, 0)
	assert.Equal(t, ErrNotFound, err)
	_, _, err = Largest(s, whole, 0)
	assert.Equal(t, ErrNotFound, err)

	always := func(string) bool { return true }
	prefix, rest, err := Largest(s, always, 0)
	require.NoError(t, err)
	assert.Equal(t, "abcde", prefix)
	assert.Equal(t, "f", rest)
}

func TestPredicateMinSize(t *testing.T) {
	always := func(string) bool { return true }
	cases := []struct {
		Name     string
		MinSize  int
		Smallest string
		Err      error
	}{
		{"Negative", -3, "", nil},
		{"Zero", 0, "", nil},
		{"Two", 2, "ab", nil},
		{"LastCandidate", 3, "abc", nil},
		{"FullLength", 4, "", ErrNotFound},
		{"Beyond", 10, "", ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			prefix, _, err := Smallest("abcd", always, c.MinSize)
			assert.Equal(t, c.Err, err)
			assert.Equal(t, c.Smallest, prefix)
		})
	}
}

func TestSmallestLargestDuality(t *testing.T) {
	s := RandBytes(32)
	for lo := 0; lo < len(s); lo++ {
		for hi := lo + 1; hi <= len(s); hi++ {
			in := func(p []byte) bool { return len(p) >= lo && len(p) < hi }

			prefix, rest, err := Smallest(s, in, 0)
			require.NoError(t, err)
			assert.Len(t, prefix, lo)
			AssertSplit(t, s, prefix, rest)

			prefix, rest, err = Largest(s, in, 0)
			require.NoError(t, err)
			assert.Len(t, prefix, hi-1)
			AssertSplit(t, s, prefix, rest)
		}
	}
}

func TestPredicateErrVariants(t *testing.T) {
	never := func([]byte) bool { return false }
	_, _, err := SmallestErr([]byte("abc"), never, 0, assert.AnError)
	assert.Equal(t, assert.AnError, err)
	_, _, err = LargestErr([]byte("abc"), never, 0, assert.AnError)
	assert.Equal(t, assert.AnError, err)
}

type Token []byte

func TestNamedTypes(t *testing.T) {
	head, tail, err := Until(Token("key=value"), "=")
	require.NoError(t, err)
	assert.IsType(t, Token{}, head)
	assert.Equal(t, Token("key"), head)
	assert.Equal(t, Token("=value"), tail)
}

func TestViewsAliasBuffer(t *testing.T) {
	buf := []byte("hello world")
	head, tail, err := Exact(buf, 5)
	require.NoError(t, err)

	copy(buf, "jelly")
	buf[6] = 'W'

	assert.Equal(t, []byte("jelly"), head)
	assert.Equal(t, []byte(" World"), tail)
	assert.Same(t, &buf[5], &tail[0])
}

func TestConcurrentScans(t *testing.T) {
	s := []byte("GET /tor/server/authority HTTP/1.0\r\n\r\n")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				before, _, err := Until(s, "\r\n\r\n")
				assert.NoError(t, err)
				assert.Equal(t, []byte("GET /tor/server/authority HTTP/1.0"), before)
			}
		}()
	}
	wg.Wait()
}

func TestPredicateType(t *testing.T) {
	var digits Predicate[string] = func(s string) bool {
		return len(strings.Trim(s, "0123456789")) == 0
	}
	prefix, rest, err := Largest("9001 rest", digits, 1)
	require.NoError(t, err)
	assert.Equal(t, "9001", prefix)
	assert.Equal(t, " rest", rest)

	_, _, err = SmallestErr("rest", digits, 1, assert.AnError)
	assert.Equal(t, assert.AnError, err)
}
