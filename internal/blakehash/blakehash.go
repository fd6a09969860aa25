// Package blakehash provides the streaming 256-bit content hash pkgar uses
// for both file bytes and the serialized entry table: BLAKE3, truncated to
// its default 32-byte output.
package blakehash

import (
	"hash"
	"io"

	"lukechampine.com/blake3"
)

// Size is the width in bytes of a pkgar content hash.
const Size = 32

// New returns a fresh streaming hasher. Callers write bytes incrementally
// (io.Copy, io.TeeReader, ...) and call Sum(nil) for the final digest; no
// file ever needs to be buffered in full to be hashed.
func New() hash.Hash {
	return blake3.New(Size, nil)
}

// Sum hashes all bytes read from r and returns the digest. It never buffers
// more than a streaming read requires.
func Sum(r io.Reader) ([Size]byte, error) {
	h := New()
	if _, err := io.Copy(h, r); err != nil {
		return [Size]byte{}, err
	}
	return digest(h), nil
}

// SumBytes hashes a single in-memory buffer, used for the entry table (which
// spec.md requires is fully resident and hashed as one contiguous region).
func SumBytes(b []byte) [Size]byte {
	h := New()
	h.Write(b)
	return digest(h)
}

func digest(h hash.Hash) [Size]byte {
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
