package pkgar

import (
	"strings"
	"testing"
)

func TestEntryStringIncludesPathAndSize(t *testing.T) {
	e := Entry{Path: "sub/b.bin", Size: 2048, Mode: EntryMode{Perm: 0o644}}
	s := e.String()
	if !strings.Contains(s, "sub/b.bin") {
		t.Fatalf("String() = %q, want it to contain the path", s)
	}
	if !strings.Contains(s, "2.0 kB") && !strings.Contains(s, "2.0 KB") {
		t.Fatalf("String() = %q, want a human-readable size", s)
	}
}

func TestEntryStringMarksSymlinks(t *testing.T) {
	e := Entry{Path: "link", Mode: EntryMode{Perm: 0o777, IsSymlink: true}}
	s := e.String()
	if s[0] != 'l' {
		t.Fatalf("String() = %q, want it to start with the symlink marker", s)
	}
}
