package staging

import (
	"sort"
	"testing"
)

func TestMarkSweepUnmark(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	paths := []string{"a/file.pkgar-staging", "a/other.pkgar-staging", "b/c.pkgar-staging"}
	for _, p := range paths {
		if err := l.Mark(p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := append([]string(nil), paths...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	for _, p := range paths {
		if err := l.Unmark(p); err != nil {
			t.Fatal(err)
		}
	}
	after, err := l.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 0 {
		t.Fatalf("expected an empty ledger after unmarking everything, got %v", after)
	}
}

func TestSweepEmptyLedger(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	got, err := l.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

func TestLedgerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Mark("leftover.pkgar-staging"); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "leftover.pkgar-staging" {
		t.Fatalf("got %v, want [leftover.pkgar-staging]", got)
	}
}
