// Package sig wraps detached Ed25519 signing and verification, the
// NaCl-compatible primitive spec.md §4.3 specifies for pkgar headers.
package sig

import (
	"crypto/ed25519"
	"fmt"
)

const (
	// PublicKeySize is the width in bytes of a raw Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize
	// SecretKeySize is the width in bytes of a raw, seed-derived (expanded)
	// Ed25519 secret key.
	SecretKeySize = ed25519.PrivateKeySize
	// SignatureSize is the width in bytes of a detached Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
)

// Sign produces a detached signature over preimage using secretKey, a raw
// 64-byte expanded Ed25519 private key.
func Sign(secretKey, preimage []byte) ([]byte, error) {
	if len(secretKey) != SecretKeySize {
		return nil, fmt.Errorf("sig: secret key must be %d bytes, got %d", SecretKeySize, len(secretKey))
	}
	return ed25519.Sign(ed25519.PrivateKey(secretKey), preimage), nil
}

// Verify reports whether signature is a valid detached Ed25519 signature of
// preimage under publicKey, a raw 32-byte Ed25519 public key.
func Verify(publicKey, preimage, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), preimage, signature)
}
