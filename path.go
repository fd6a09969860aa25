package pkgar

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/redox-os/pkgar/internal/binfmt"
)

var (
	errPathEmpty    = errors.New("path is empty")
	errPathAbsolute = errors.New("path starts with /")
	errPathDotDot   = errors.New("path contains a .. segment")
	errPathNUL      = errors.New("path contains a NUL byte")
	errPathNotSlash = errors.New("path uses a non-/ separator")
)

// validatePath checks path against spec.md §3 invariant 6 and §8's path
// hygiene property: relative, non-empty, no ".." segments, no leading "/",
// no embedded NUL, and short enough (with its NUL terminator) to fit the
// 256-byte entry path field.
func validatePath(path string) error {
	if path == "" {
		return errPathEmpty
	}
	if strings.ContainsRune(path, 0) {
		return errPathNUL
	}
	if strings.HasPrefix(path, "/") {
		return errPathAbsolute
	}
	if strings.Contains(path, "\\") {
		return errPathNotSlash
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return errPathDotDot
		}
	}
	if len(path)+1 > binfmt.PathFieldSize {
		return &Error{Kind: ErrKindPathOverflow, Path: path}
	}
	return nil
}

// targetPath joins an already-validated archive path onto root and confirms
// the result did not escape root, the defense-in-depth half of spec.md §8's
// path hygiene property ("extract refuses to materialize any entry whose
// path would escape the target root"). validatePath already rejects ".."
// segments at construction time; this is a second, independent check at the
// point the path touches the real filesystem.
func targetPath(root, path string) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(path))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &Error{Kind: ErrKindInvalidEntry, Path: path, Index: -1, Err: errPathDotDot}
	}
	return full, nil
}
