package sync

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultFingerprintCacheSize = 2048

type fingerprintEntry struct {
	size    int64
	modTime time.Time
	etag    string
}

// FingerprintCache remembers computed fingerprints keyed by absolute path.
// An entry is only served when the file's size and mtime still match, so a
// touched or rewritten file always gets rehashed. Purely in-memory.
type FingerprintCache struct {
	entries *lru.Cache[string, fingerprintEntry]
}

func NewFingerprintCache(size int) *FingerprintCache {
	if size <= 0 {
		size = DefaultFingerprintCacheSize
	}
	// lru.New only errors on a non-positive size
	entries, _ := lru.New[string, fingerprintEntry](size)
	return &FingerprintCache{entries: entries}
}

func (c *FingerprintCache) Get(path string, size int64, modTime time.Time) (string, bool) {
	entry, ok := c.entries.Get(path)
	if !ok {
		return "", false
	}
	if entry.size != size || !entry.modTime.Equal(modTime) {
		return "", false
	}
	return entry.etag, true
}

func (c *FingerprintCache) Put(path string, size int64, modTime time.Time, etag string) {
	c.entries.Add(path, fingerprintEntry{
		size:    size,
		modTime: modTime,
		etag:    etag,
	})
}

func (c *FingerprintCache) Len() int {
	return c.entries.Len()
}
