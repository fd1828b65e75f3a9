package drive

import (
	gocache "github.com/patrickmn/go-cache"
)

// FolderCache is a process-wide cache of remote folder listings, keyed
// by parent folder id. It exists to avoid repeated remote list calls on
// hot paths; it is lazily populated and never proactively invalidated.
//
// Entries are best-effort, not authoritative: concurrent resolutions
// racing to populate the same key are last-write-wins, and correctness
// is enforced downstream by the persisted folder-mapping upsert.
type FolderCache struct {
	entries *gocache.Cache
}

// NewFolderCache returns an empty cache. Entries never expire; the only
// teardown is process exit or an explicit Clear.
func NewFolderCache() *FolderCache {
	return &FolderCache{
		entries: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the cached children of a parent folder, or ok=false on a
// miss.
func (c *FolderCache) Get(parentID string) ([]Entry, bool) {
	v, ok := c.entries.Get(parentID)
	if !ok {
		return nil, false
	}
	children, ok := v.([]Entry)
	return children, ok
}

// Put stores the children of a parent folder, replacing any previous
// entry.
func (c *FolderCache) Put(parentID string, children []Entry) {
	c.entries.Set(parentID, children, gocache.NoExpiration)
}

// Clear drops every entry. Intended for explicit cache-busting after
// manual remote-side folder edits.
func (c *FolderCache) Clear() {
	c.entries.Flush()
}
