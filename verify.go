package pkgar

import (
	"os"

	"github.com/redox-os/pkgar/internal/blakehash"
)

// Mismatch describes one entry whose on-disk content no longer matches the
// archive.
type Mismatch struct {
	Path string
	Err  error
}

// Verify hashes every on-disk file under targetDir against its archive
// entry and returns every mismatch found — unlike every other operation,
// Verify does not stop at the first failure (spec.md §4.6, §7: "Verify is
// the only operation that accumulates all mismatches before returning").
// A nil, empty slice means every entry matched.
func Verify(archivePath, targetDir string, trust TrustSet) ([]Mismatch, error) {
	r, err := OpenFile(archivePath, trust)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var mismatches []Mismatch
	for _, e := range r.Entries() {
		full, err := targetPath(targetDir, e.Path)
		if err != nil {
			mismatches = append(mismatches, Mismatch{Path: e.Path, Err: err})
			continue
		}
		if err := verifyOne(e, full); err != nil {
			mismatches = append(mismatches, Mismatch{Path: e.Path, Err: err})
		}
	}
	return mismatches, nil
}

func verifyOne(e Entry, full string) error {
	var got [blakehash.Size]byte

	if e.Mode.IsSymlink {
		target, err := os.Readlink(full)
		if err != nil {
			return newErr(ErrKindIO, e.Path, err)
		}
		got = blakehash.SumBytes([]byte(target))
	} else {
		f, err := os.Open(full)
		if err != nil {
			return newErr(ErrKindIO, e.Path, err)
		}
		defer f.Close()
		sum, err := blakehash.Sum(f)
		if err != nil {
			return newErr(ErrKindIO, e.Path, err)
		}
		got = sum
	}

	if got != e.Hash {
		return &Error{Kind: ErrKindHashMismatch, Path: e.Path}
	}
	return nil
}
