// Package staging provides a durable, crash-survivable ledger of the
// staging paths an in-progress extract has created, so that a run that
// crashes mid-tree can be swept by a later run without walking the whole
// target directory looking for ".pkgar-staging" leftovers (spec.md §5: "...
// must be cleaned out by a subsequent run or external sweep").
//
// This is purely an operational aid. It never appears in the archive byte
// stream and Extract works to spec without one; a ledger is only consulted
// when the caller opens one and passes it to ExtractOptions.
//
// The teacher repo requires github.com/cockroachdb/pebble/v2 in its go.mod
// but imports it from none of its own source files — an already-unwired
// dependency. Rather than drop it, this package repurposes it from "VFS
// index/cache" to "staging ledger," the same embedded-KV shape serving a
// different job.
package staging

import (
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// Ledger is a durable set of staging paths, backed by an embedded
// key-value store on disk so its contents survive a process crash.
type Ledger struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a ledger rooted at dir.
func Open(dir string) (*Ledger, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Mark records that stagingPath has just been created and not yet renamed
// into place.
func (l *Ledger) Mark(stagingPath string) error {
	value := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	return l.db.Set([]byte(stagingPath), value, pebble.Sync)
}

// Unmark removes stagingPath from the ledger, called once it has been
// renamed into its final location (or removed after a verification
// failure).
func (l *Ledger) Unmark(stagingPath string) error {
	return l.db.Delete([]byte(stagingPath), pebble.Sync)
}

// Sweep returns every staging path still recorded in the ledger — the
// leftovers of a run that never reached Unmark, almost always because it
// crashed. It does not remove the files themselves or clear the ledger;
// callers decide what to do with each path (typically os.Remove, then
// Unmark).
func (l *Ledger) Sweep() ([]string, error) {
	iter, err := l.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var leaked []string
	for valid := iter.First(); valid; valid = iter.Next() {
		leaked = append(leaked, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return leaked, nil
}

// Close releases the ledger's underlying storage handles.
func (l *Ledger) Close() error {
	return l.db.Close()
}
