package pkgar

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Entry describes one file recorded in an archive: its content hash,
// location within the data region, mode, and archive-relative path. Entries
// are produced by Reader.Entries in path-sorted order (spec.md §3
// invariant 5) and never include directories (spec.md §9 — directories are
// implicit).
type Entry struct {
	Path   string
	Hash   [32]byte
	Offset uint64
	Size   uint64
	Mode   EntryMode
}

// String renders e for list-style diagnostics: type, permission bits,
// human-readable size, and path.
func (e Entry) String() string {
	kind := '-'
	if e.Mode.IsSymlink {
		kind = 'l'
	}
	return fmt.Sprintf("%c%04o %8s  %s", kind, e.Mode.Perm.Perm(), humanize.Bytes(e.Size), e.Path)
}
