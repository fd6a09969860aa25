package pkgar

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/redox-os/pkgar/internal/sig"
)

// PublicKey is the raw 32-byte Ed25519 public key embedded in an archive
// header. The core never reads key files; callers supply raw bytes (spec.md
// §1, §6 — key generation and file encoding are a sibling tool's concern).
type PublicKey [32]byte

// SecretKey is the raw 64-byte expanded (seed-derived) Ed25519 private key
// used to sign a new archive.
type SecretKey [64]byte

// String renders the key as base58 text (the Solana/IPFS convention),
// purely for display in list/verify output and trust-set literals; it has
// no bearing on the signing or verification path.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// ParsePublicKeyBase58 decodes the base58 text form of a public key.
func ParsePublicKeyBase58(s string) (PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("pkgar: decode base58 public key: %w", err)
	}
	if len(b) != sig.PublicKeySize {
		return PublicKey{}, fmt.Errorf("pkgar: public key must decode to %d bytes, got %d", sig.PublicKeySize, len(b))
	}
	var k PublicKey
	copy(k[:], b)
	return k, nil
}

// TrustSet is the caller-supplied collection of public keys a Reader will
// accept. An empty TrustSet trusts no key — every archive is rejected with
// ErrKindUntrustedKey regardless of signature validity. There is no
// "trust everything" default; callers who want that must list every key
// they accept explicitly (spec.md §4.3, §9 — trust is injected policy).
type TrustSet struct {
	keys map[PublicKey]struct{}
}

// NewTrustSet builds a TrustSet from zero or more public keys.
func NewTrustSet(keys ...PublicKey) TrustSet {
	ts := TrustSet{keys: make(map[PublicKey]struct{}, len(keys))}
	for _, k := range keys {
		ts.keys[k] = struct{}{}
	}
	return ts
}

// Trusts reports whether key is a member of the set.
func (ts TrustSet) Trusts(key PublicKey) bool {
	_, ok := ts.keys[key]
	return ok
}
