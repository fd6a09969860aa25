package sig

import (
	"crypto/ed25519"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	preimage := []byte("some 72-byte preimage stand-in")

	signature, err := Sign(priv, preimage)
	if err != nil {
		t.Fatal(err)
	}
	if len(signature) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(signature), SignatureSize)
	}
	if !Verify(pub, preimage, signature) {
		t.Fatal("valid signature failed to verify")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	preimage := []byte("original")
	signature, _ := Sign(priv, preimage)

	if Verify(pub, []byte("tampered"), signature) {
		t.Fatal("verification succeeded for a tampered preimage")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	otherPub, _, _ := ed25519.GenerateKey(nil)
	preimage := []byte("message")
	signature, _ := Sign(priv, preimage)

	if Verify(otherPub, preimage, signature) {
		t.Fatal("verification succeeded under the wrong public key")
	}
}

func TestSignRejectsWrongSizeKey(t *testing.T) {
	if _, err := Sign(make([]byte, SecretKeySize-1), []byte("x")); err == nil {
		t.Fatal("expected an error for an undersized secret key")
	}
}

func TestVerifyRejectsWrongSizeInputs(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	signature, _ := Sign(priv, []byte("m"))

	if Verify(pub[:len(pub)-1], []byte("m"), signature) {
		t.Fatal("accepted an undersized public key")
	}
	if Verify(pub, []byte("m"), signature[:len(signature)-1]) {
		t.Fatal("accepted an undersized signature")
	}
}
