package pkgar

import "testing"

func TestPublicKeyBase58RoundTrip(t *testing.T) {
	var k PublicKey
	for i := range k {
		k[i] = byte(i * 7)
	}
	s := k.String()
	got, err := ParsePublicKeyBase58(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != k {
		t.Fatalf("got %v, want %v", got, k)
	}
}

func TestParsePublicKeyBase58WrongLength(t *testing.T) {
	if _, err := ParsePublicKeyBase58("2"); err == nil {
		t.Fatal("expected an error decoding a too-short key")
	}
}

func TestTrustSetEmptyTrustsNothing(t *testing.T) {
	var k PublicKey
	ts := NewTrustSet()
	if ts.Trusts(k) {
		t.Fatal("an empty trust set must not trust the zero key")
	}
}

func TestTrustSetMembership(t *testing.T) {
	var a, b PublicKey
	a[0] = 1
	b[0] = 2
	ts := NewTrustSet(a)
	if !ts.Trusts(a) {
		t.Fatal("expected a to be trusted")
	}
	if ts.Trusts(b) {
		t.Fatal("expected b not to be trusted")
	}
}
