package binfmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Count: 7}
	for i := range h.Signature {
		h.Signature[i] = byte(i)
	}
	for i := range h.PublicKey {
		h.PublicKey[i] = byte(i + 1)
	}
	for i := range h.EntriesHash {
		h.EntriesHash[i] = byte(i + 2)
	}

	b := h.Marshal()
	if len(b) != HeaderSize {
		t.Fatalf("Marshal produced %d bytes, want %d", len(b), HeaderSize)
	}

	got, err := UnmarshalHeader(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestHeaderWrongSize(t *testing.T) {
	if _, err := UnmarshalHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestPreimageLayout(t *testing.T) {
	var pub, hash [32]byte
	for i := range pub {
		pub[i] = byte(i)
	}
	for i := range hash {
		hash[i] = byte(i + 100)
	}
	p := Preimage(pub, hash, 0x0102030405060708)
	if len(p) != 72 {
		t.Fatalf("preimage length = %d, want 72", len(p))
	}
	if !bytes.Equal(p[0:32], pub[:]) {
		t.Fatal("public key segment mismatch")
	}
	if !bytes.Equal(p[32:64], hash[:]) {
		t.Fatal("entries hash segment mismatch")
	}
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(p[64:72], want) {
		t.Fatalf("count segment = % x, want % x (little-endian)", p[64:72], want)
	}
}

func TestEntryRoundTrip(t *testing.T) {
	e := Entry{Offset: 1234, Size: 5678, Mode: 0o644, Path: "sub/dir/file.txt"}
	for i := range e.Hash {
		e.Hash[i] = byte(i)
	}

	b, err := e.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != EntrySize {
		t.Fatalf("Marshal produced %d bytes, want %d", len(b), EntrySize)
	}

	got, err := UnmarshalEntry(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != e {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestEntryPathTooLong(t *testing.T) {
	e := Entry{Path: strings.Repeat("a", PathFieldSize)}
	if _, err := e.Marshal(); err == nil {
		t.Fatal("expected an error for a path that cannot fit with its terminator")
	}
}

func TestEntryPathWithNUL(t *testing.T) {
	e := Entry{Path: "bad\x00path"}
	if _, err := e.Marshal(); err == nil {
		t.Fatal("expected an error for a path containing a NUL byte")
	}
}

func TestEntryTrailingGarbageRejected(t *testing.T) {
	e := Entry{Path: "a"}
	b, err := e.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	b[EntrySize-1] = 'x' // corrupt a byte that must be zero past the terminator
	if _, err := UnmarshalEntry(b); err == nil {
		t.Fatal("expected an error for non-zero bytes past the path terminator")
	}
}

func TestMarshalUnmarshalEntries(t *testing.T) {
	entries := []Entry{
		{Path: "a"},
		{Path: "b/c", Size: 10},
		{Path: "z", Offset: 10, Size: 20},
	}
	b, err := MarshalEntries(entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != len(entries)*EntrySize {
		t.Fatalf("encoded length = %d, want %d", len(b), len(entries)*EntrySize)
	}

	got, err := UnmarshalEntries(b, uint64(len(entries)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestUnmarshalEntriesWrongLength(t *testing.T) {
	if _, err := UnmarshalEntries(make([]byte, EntrySize), 2); err == nil {
		t.Fatal("expected an error when buffer length doesn't match count*EntrySize")
	}
}
