package pkgar

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/redox-os/pkgar/internal/dircache"
	"github.com/redox-os/pkgar/internal/fsops"
)

// ExtractOptions configures Extract.
type ExtractOptions struct {
	// Include, if non-empty, restricts extraction to entries whose path
	// matches at least one doublestar glob pattern.
	Include []string

	// Ledger, if set, records every staging path Extract creates so a
	// crashed run can be swept later. Optional.
	Ledger *StagingLedger
}

const stagingSuffix = ".pkgar-staging"

// Extract materializes every matching entry of the archive at archivePath
// under targetDir, following the per-file state machine in spec.md §4.7:
// stream and hash into a staging path, compare the hash, chmod, then
// rename into place. A hash mismatch aborts the entire extract and deletes
// every staging file this call created; entries already renamed before the
// failure are left in place (spec.md §4.6, §7 — extract is not
// transactional across files, only per file).
func Extract(archivePath, targetDir string, trust TrustSet, opts ExtractOptions) error {
	r, err := OpenFile(archivePath, trust)
	if err != nil {
		return err
	}
	defer r.Close()

	dirs := dircache.New(64)
	var stagingCreated []string

	abort := func(cause error) error {
		for _, p := range stagingCreated {
			os.Remove(p)
			if opts.Ledger != nil {
				opts.Ledger.Unmark(p)
			}
		}
		return cause
	}

	for _, e := range r.Entries() {
		matched, err := matchesInclude(opts.Include, e.Path)
		if err != nil {
			return abort(newErr(ErrKindIO, e.Path, err))
		}
		if !matched {
			continue
		}

		full, err := targetPath(targetDir, e.Path)
		if err != nil {
			return abort(err)
		}

		if err := dirs.Ensure(filepath.Dir(full), fsops.MkdirAll); err != nil {
			return abort(newErr(ErrKindIO, e.Path, err))
		}

		if e.Mode.IsSymlink {
			var buf bytes.Buffer
			if err := r.ReadFile(e, &buf); err != nil {
				return abort(err)
			}
			if err := fsops.ReplaceSymlink(buf.String(), full); err != nil {
				return abort(newErr(ErrKindIO, e.Path, err))
			}
			continue
		}

		staged, err := extractRegularFile(r, e, full, opts.Ledger)
		if staged != "" {
			stagingCreated = append(stagingCreated, staged)
		}
		if err != nil {
			return abort(err)
		}
	}

	return nil
}

// extractRegularFile runs one file through Idle -> Staged -> Hashed ->
// Chmod -> Renamed -> Done. On failure it returns the staging path it left
// behind (so the caller can clean it up) and the error; on success the file
// has been renamed into place and it returns "" and nil.
func extractRegularFile(r *Reader, e Entry, full string, ledger *StagingLedger) (stagingPath string, err error) {
	stagingPath = full + stagingSuffix

	f, err := os.OpenFile(stagingPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", newErr(ErrKindIO, e.Path, err)
	}
	if ledger != nil {
		if err := ledger.Mark(stagingPath); err != nil {
			f.Close()
			return stagingPath, err
		}
	}

	if err := r.ReadFile(e, f); err != nil {
		f.Close()
		return stagingPath, err
	}

	if err := fsops.SyncFile(f); err != nil {
		f.Close()
		return stagingPath, newErr(ErrKindIO, e.Path, err)
	}
	if err := fsops.Fchmod(f, uint32(e.Mode.Perm)); err != nil {
		f.Close()
		return stagingPath, newErr(ErrKindIO, e.Path, err)
	}
	if err := f.Close(); err != nil {
		return stagingPath, newErr(ErrKindIO, e.Path, err)
	}

	if err := fsops.Rename(stagingPath, full); err != nil {
		return stagingPath, newErr(ErrKindIO, e.Path, err)
	}
	if ledger != nil {
		ledger.Unmark(stagingPath)
	}
	return "", nil
}
