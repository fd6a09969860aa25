package pkgar

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/redox-os/pkgar/internal/blakehash"
)

// RemoveOptions configures Remove.
type RemoveOptions struct {
	// Include, if non-empty, restricts removal to entries whose path
	// matches at least one doublestar glob pattern.
	Include []string
}

// Remove deletes every matching file under targetDir that still matches its
// archive entry's content hash, then removes any directory left empty,
// bottom-up. It stops at the first file whose on-disk content has diverged
// from the archive (ErrKindDivergedFile) without deleting anything from
// that point on (spec.md §4.6, §8's remove-safety property).
func Remove(archivePath, targetDir string, trust TrustSet, opts RemoveOptions) error {
	r, err := OpenFile(archivePath, trust)
	if err != nil {
		return err
	}
	defer r.Close()

	var removedDirs []string
	for _, e := range r.Entries() {
		matched, err := matchesInclude(opts.Include, e.Path)
		if err != nil {
			return newErr(ErrKindIO, e.Path, err)
		}
		if !matched {
			continue
		}

		full, err := targetPath(targetDir, e.Path)
		if err != nil {
			return err
		}

		if err := checkDiverged(e, full); err != nil {
			return err
		}
		if err := os.Remove(full); err != nil {
			return newErr(ErrKindIO, e.Path, err)
		}
		removedDirs = append(removedDirs, filepath.Dir(full))
	}

	removeEmptyDirs(targetDir, removedDirs)
	return nil
}

// checkDiverged hashes the file or symlink currently at full and compares it
// to e's recorded hash.
func checkDiverged(e Entry, full string) error {
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
		return &Error{Kind: ErrKindDivergedFile, Path: e.Path}
	}
	return nil
}

// removeEmptyDirs removes any directory among candidates (and their
// ancestors, up to but excluding root) left empty after file removal,
// processing the deepest paths first so a parent only empties out once its
// children are gone.
func removeEmptyDirs(root string, candidates []string) {
	root = filepath.Clean(root)
	seen := make(map[string]bool)
	var dirs []string
	for _, d := range candidates {
		for d != root && d != "." && !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
			d = filepath.Dir(d)
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	for _, d := range dirs {
		os.Remove(d) // no-op (and harmless) if d is not actually empty
	}
}
