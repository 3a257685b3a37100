// Package take provides scanning primitives for hand-written parsers.
//
// Every operation splits its input into a matched prefix and the remainder,
// and the caller threads the remainder into the next call. Results are
// sub-slices of the input: nothing is copied or allocated. A []byte view
// shares storage with the caller's buffer, so it observes later writes to
// that buffer and must not be used once the buffer is reused.
package take

// Bytes is the set of types the primitives operate on.
type Bytes interface {
	~[]byte | ~string
}

// Predicate decides whether a candidate prefix is acceptable. It must be
// pure, since it is called once per candidate.
type Predicate[S Bytes] func(S) bool

// Until scans s for the first occurrence of pattern. It returns the bytes
// before the occurrence and the rest of s starting at the occurrence, so the
// pattern itself remains at the front of from.
func Until[S, P Bytes](s S, pattern P) (before, from S, err error) {
	if len(pattern) > len(s) {
		return before, from, ErrTooShort
	}
	for i := 0; i <= len(s)-len(pattern); i++ {
		if hasPrefix(s[i:], pattern) {
			return s[:i], s[i:], nil
		}
	}
	return before, from, ErrNotFound
}

// UntilErr is Until, returning err on failure.
func UntilErr[S, P Bytes](s S, pattern P, err error) (before, from S, _ error) {
	before, from, e := Until(s, pattern)
	if e != nil {
		return before, from, err
	}
	return before, from, nil
}

// Exact splits off the first n bytes of s. n may be zero.
func Exact[S Bytes](s S, n int) (head, tail S, err error) {
	if n < 0 {
		return head, tail, ErrNegativeCount
	}
	if n > len(s) {
		return head, tail, ErrTooShort
	}
	return s[:n], s[n:], nil
}

// ExactErr is Exact, returning err on failure.
func ExactErr[S Bytes](s S, n int, err error) (head, tail S, _ error) {
	head, tail, e := Exact(s, n)
	if e != nil {
		return head, tail, err
	}
	return head, tail, nil
}

// Expect checks that s begins with pattern, and splits it off. On failure
// rest is s itself, unconsumed, so the caller may try an alternative.
func Expect[S, P Bytes](s S, pattern P) (matched, rest S, err error) {
	if !hasPrefix(s, pattern) {
		return matched, s, ErrMismatch
	}
	return s[:len(pattern)], s[len(pattern):], nil
}

// ExpectErr is Expect, returning err on failure.
func ExpectErr[S, P Bytes](s S, pattern P, err error) (matched, rest S, _ error) {
	matched, rest, e := Expect(s, pattern)
	if e != nil {
		return matched, rest, err
	}
	return matched, rest, nil
}

// Maybe consumes pattern if s begins with it. Otherwise ok is false and rest
// is s.
func Maybe[S, P Bytes](s S, pattern P) (matched, rest S, ok bool) {
	matched, rest, err := Expect(s, pattern)
	return matched, rest, err == nil
}

// Smallest returns the shortest prefix of s satisfying f. Candidate lengths
// run from minSize up to, but excluding, len(s): the whole of s is never
// tested.
func Smallest[S Bytes](s S, f Predicate[S], minSize int) (prefix, rest S, err error) {
	return SmallestErr(s, f, minSize, ErrNotFound)
}

// SmallestErr is Smallest, returning err on failure.
func SmallestErr[S Bytes](s S, f Predicate[S], minSize int, err error) (prefix, rest S, _ error) {
	for i := max(minSize, 0); i < len(s); i++ {
		if f(s[:i]) {
			return s[:i], s[i:], nil
		}
	}
	return prefix, rest, err
}

// Largest returns the longest prefix of s satisfying f, over the same
// candidate lengths as Smallest. The predicate need not be monotonic: every
// candidate is tested.
func Largest[S Bytes](s S, f Predicate[S], minSize int) (prefix, rest S, err error) {
	return LargestErr(s, f, minSize, ErrNotFound)
}

// LargestErr is Largest, returning err on failure.
func LargestErr[S Bytes](s S, f Predicate[S], minSize int, err error) (prefix, rest S, _ error) {
	n := -1
	for i := max(minSize, 0); i < len(s); i++ {
		if f(s[:i]) {
			n = i
		}
	}
	if n < 0 {
		return prefix, rest, err
	}
	return s[:n], s[n:], nil
}

// hasPrefix reports whether s begins with p. It compares byte by byte so
// that mixed string and []byte arguments need no conversion.
func hasPrefix[S, P Bytes](s S, p P) bool {
	if len(p) > len(s) {
		return false
	}
	for i := 0; i < len(p); i++ {
		if s[i] != p[i] {
			return false
		}
	}
	return true
}
