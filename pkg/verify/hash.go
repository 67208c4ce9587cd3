// Package verify implements the streaming digest machinery used to check
// downloaded and extracted bytes against an expected checksum (spec.md
// §4.B), grounded on pulith-verify/src/reader.rs.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"lukechampine.com/blake3"
)

// Algorithm selects a Hasher implementation.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// Hasher accumulates bytes and produces a final digest. Calling Update after
// Finalize is a programmer error; neither the implementations here nor
// Reader guard against it.
type Hasher interface {
	Update(p []byte)
	Finalize() []byte
}

// NewHasher constructs a Hasher for the given algorithm.
func NewHasher(alg Algorithm) (Hasher, error) {
	switch alg {
	case SHA256:
		return &stdHasher{h: sha256.New()}, nil
	case BLAKE3:
		return &stdHasher{h: blake3.New(32, nil)}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", alg)
	}
}

type stdHasher struct {
	h hash.Hash
}

func (s *stdHasher) Update(p []byte)  { s.h.Write(p) } //nolint:errcheck // hash.Hash.Write never errors
func (s *stdHasher) Finalize() []byte { return s.h.Sum(nil) }

// HashMismatch reports a verified-digest failure.
type HashMismatch struct {
	Expected []byte
	Actual   []byte
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", hex.EncodeToString(e.Expected), hex.EncodeToString(e.Actual))
}
