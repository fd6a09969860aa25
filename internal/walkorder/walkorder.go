// Package walkorder implements the deterministic directory walk pkgar's
// builder requires: a depth-first traversal where each directory's children
// are visited sorted byte-wise by name, so archiving the same tree twice
// produces entries in the same order (spec.md §4.5, invariant 5 in §3).
//
// Generalized from the teacher's internal/walk/walk.go, which fans out the
// walk across goroutines and falls back to inode order when no better key
// is available. Both of those choices are exactly what the spec overrides
// (spec.md §5 makes the core single-threaded; spec.md §4.5 mandates
// lexicographic order, not inode order), so this version is a single
// synchronous recursion relying on os.ReadDir's own byte-wise sort.
package walkorder

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

func digest(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Visitor is called once for every non-directory entry found by Walk, in
// deterministic order. relPath uses forward slashes regardless of host OS.
type Visitor func(relPath string, d os.DirEntry) error

// Walk performs a depth-first traversal of root on the real filesystem.
// Within each directory, children are visited in the byte-wise order
// os.ReadDir already guarantees. Directories themselves never produce a
// Visitor call; only their contents do.
func Walk(root string, visit Visitor) error {
	return walkDir(root, ".", visit)
}

func walkDir(root, rel string, visit Visitor) error {
	full := root
	if rel != "." {
		full = filepath.Join(root, filepath.FromSlash(rel))
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return fmt.Errorf("walkorder: read dir %s: %w", full, err)
	}

	for _, e := range entries {
		childRel := e.Name()
		if rel != "." {
			childRel = path.Join(rel, e.Name())
		}
		if e.IsDir() {
			if err := walkDir(root, childRel, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(childRel, e); err != nil {
			return err
		}
	}
	return nil
}

// Set is a duplicate-detecting set of archive paths, keyed by a 64-bit
// digest rather than the full string so a tree with many thousands of
// entries doesn't pay for full-string comparisons in the common case.
//
// Grounded on the teacher's internal/fileid, which uses the same
// dependency (cespare/xxhash) for fast opportunistic keying of a different
// cache; here the "cache" is a duplicate-path check against invariant 6
// ("unique within the archive").
type Set struct {
	byDigest map[uint64][]string
}

// NewSet returns an empty path set.
func NewSet() *Set {
	return &Set{byDigest: make(map[uint64][]string)}
}

// Add reports whether path was newly added (true) or is a duplicate of one
// already present (false).
func (s *Set) Add(path string) bool {
	h := digest(path)
	for _, existing := range s.byDigest[h] {
		if existing == path {
			return false
		}
	}
	s.byDigest[h] = append(s.byDigest[h], path)
	return true
}

// Len returns the number of distinct paths added so far.
func (s *Set) Len() int {
	n := 0
	for _, bucket := range s.byDigest {
		n += len(bucket)
	}
	return n
}
