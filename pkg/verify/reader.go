package verify

import "io"

// Reader wraps an io.Reader, hashing every byte that passes through it.
// Finish compares the accumulated digest against an expected value.
type Reader struct {
	r      io.Reader
	hasher Hasher
}

// NewReader composes hasher over r.
func NewReader(r io.Reader, hasher Hasher) *Reader {
	return &Reader{r: r, hasher: hasher}
}

// Read delegates to the wrapped reader, feeding every read byte to the
// hasher before returning.
func (v *Reader) Read(buf []byte) (int, error) {
	n, err := v.r.Read(buf)
	if n > 0 {
		v.hasher.Update(buf[:n])
	}

	return n, err
}

// Finish finalizes the digest and compares it against expected.
func (v *Reader) Finish(expected []byte) error {
	actual := v.hasher.Finalize()
	if !bytesEqual(actual, expected) {
		return &HashMismatch{Expected: expected, Actual: actual}
	}

	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
