package pkgar

import "github.com/redox-os/pkgar/internal/staging"

// StagingLedger is an optional durable record of the staging paths an
// Extract call creates, so a run that crashes mid-tree can be swept by a
// later run without walking the whole target directory (spec.md §5:
// "staging files may leak ... must be cleaned out by a subsequent run or
// external sweep"). Extract works to spec without one — pass nil in
// ExtractOptions to skip it.
type StagingLedger struct {
	l *staging.Ledger
}

// OpenStagingLedger opens (creating if necessary) a ledger rooted at dir.
// dir should be a location dedicated to the ledger, not the extract target
// itself.
func OpenStagingLedger(dir string) (*StagingLedger, error) {
	l, err := staging.Open(dir)
	if err != nil {
		return nil, newErr(ErrKindIO, dir, err)
	}
	return &StagingLedger{l: l}, nil
}

// Close releases the ledger's storage handles.
func (s *StagingLedger) Close() error {
	return s.l.Close()
}

// Sweep returns every staging path still recorded — the leftovers of a run
// that crashed before renaming them into place or cleaning them up. Callers
// typically os.Remove each path, then call Unmark.
func (s *StagingLedger) Sweep() ([]string, error) {
	paths, err := s.l.Sweep()
	if err != nil {
		return nil, newErr(ErrKindIO, "", err)
	}
	return paths, nil
}

// Unmark removes stagingPath from the ledger once it has been cleaned up or
// renamed into its final location.
func (s *StagingLedger) Unmark(stagingPath string) error {
	if err := s.l.Unmark(stagingPath); err != nil {
		return newErr(ErrKindIO, stagingPath, err)
	}
	return nil
}

// Mark records that stagingPath has just been created and not yet renamed
// into place.
func (s *StagingLedger) Mark(stagingPath string) error {
	if err := s.l.Mark(stagingPath); err != nil {
		return newErr(ErrKindIO, stagingPath, err)
	}
	return nil
}
