// Package dircache memoizes which target directories extract has already
// materialized during the current run, so that consecutive entries sharing
// a parent directory (the common case, since entries are always visited in
// path-sorted order) skip a redundant directory-creation call.
//
// Grounded on internal/spinner/concurrent.go and internal/spinner/spinner.go
// in the teacher repo, which build exactly this shape of cache
// (tinylfu.New[K, V](size, samples, hasher, tinylfu.OnEvict(...))) to track
// block and reader popularity; here the same shape tracks "directory path
// already ensured to exist" instead.
package dircache

import (
	"hash/maphash"

	"github.com/dgryski/go-tinylfu"
)

// Cache is a small bounded memo of directory paths known to already exist.
// It is not a correctness mechanism — MkdirAll is always safe to call again
// — purely an optimization to skip the syscalls for repeat parents.
type Cache struct {
	t *tinylfu.T[string, struct{}]
}

// New returns a cache sized for roughly capacity distinct directories kept
// hot at once. A small minimum keeps tiny archives cheap without special
// casing them.
func New(capacity int) *Cache {
	if capacity < 64 {
		capacity = 64
	}
	seed := maphash.MakeSeed()
	hasher := func(k string) uint64 { return maphash.String(seed, k) }
	return &Cache{t: tinylfu.New[string, struct{}](capacity, capacity*10, hasher)}
}

// Ensure calls mkdir(dir) unless dir was already recorded as ensured by a
// previous call in this cache's lifetime.
func (c *Cache) Ensure(dir string, mkdir func(string) error) error {
	if _, ok := c.t.Get(dir); ok {
		return nil
	}
	if err := mkdir(dir); err != nil {
		return err
	}
	c.t.Add(dir, struct{}{})
	return nil
}
