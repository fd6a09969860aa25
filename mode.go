package pkgar

import (
	"errors"
	"os"
)

// Entry mode packs Unix permission bits together with a file-type marker in
// the high bits, the traditional S_IFREG/S_IFLNK encoding (spec.md §3:
// "Unix permission bits plus a file-type nibble distinguishing regular file
// from symbolic link"). Directories never appear here — they are implicit
// (spec.md §3, §9).
const (
	modeTypeMask    = 0o170000
	modeTypeRegular = 0o100000
	modeTypeSymlink = 0o120000
	modePermMask    = 0o7777
)

// EntryMode is the decoded form of an entry's packed mode field.
type EntryMode struct {
	Perm      os.FileMode // permission bits, already masked to 0o7777
	IsSymlink bool
}

// Pack encodes m into the 32-bit on-disk mode field.
func (m EntryMode) Pack() uint32 {
	typ := uint32(modeTypeRegular)
	if m.IsSymlink {
		typ = modeTypeSymlink
	}
	return typ | (uint32(m.Perm) & modePermMask)
}

// errInvalidModeType is wrapped into an ErrKindInvalidEntry error at the
// reader's call site, where the offending entry index is known.
var errInvalidModeType = errors.New("mode's type bits are neither regular file nor symlink")

// unpackMode decodes a 32-bit on-disk mode field, rejecting any type other
// than regular file or symlink (spec.md §3 invariant 7).
func unpackMode(raw uint32) (EntryMode, error) {
	switch raw & modeTypeMask {
	case modeTypeRegular:
		return EntryMode{Perm: os.FileMode(raw & modePermMask)}, nil
	case modeTypeSymlink:
		return EntryMode{Perm: os.FileMode(raw & modePermMask), IsSymlink: true}, nil
	default:
		return EntryMode{}, errInvalidModeType
	}
}
