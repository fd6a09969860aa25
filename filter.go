package pkgar

import "github.com/bmatcuk/doublestar/v4"

// matchesInclude reports whether path should be processed given an Include
// glob list: an empty list matches everything (the common case, where a
// caller wants every entry); a non-empty list matches if path satisfies any
// one pattern. Patterns are doublestar globs over the already-verified
// entry path, never the filesystem — this is list filtering, not argument
// parsing (spec.md §1 keeps the CLI out of scope; this is the pure-function
// half of what a CLI's "--include" flag would call).
func matchesInclude(patterns []string, path string) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}
	for _, pat := range patterns {
		ok, err := doublestar.Match(pat, path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
