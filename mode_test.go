package pkgar

import (
	"os"
	"testing"
)

func TestEntryModePackRegularRoundTrip(t *testing.T) {
	m := EntryMode{Perm: 0o644}
	got, err := unpackMode(m.Pack())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestEntryModePackSymlinkRoundTrip(t *testing.T) {
	m := EntryMode{Perm: 0o777, IsSymlink: true}
	got, err := unpackMode(m.Pack())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestEntryModePermMasked(t *testing.T) {
	m := EntryMode{Perm: os.FileMode(0xFFFF)}
	packed := m.Pack()
	got, err := unpackMode(packed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Perm != os.FileMode(0o7777) {
		t.Fatalf("Perm = %o, want masked to 0o7777", got.Perm)
	}
}

func TestUnpackModeRejectsUnknownType(t *testing.T) {
	if _, err := unpackMode(0o040644); err == nil {
		t.Fatal("expected an error for a directory-type mode field")
	}
}
