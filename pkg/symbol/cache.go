package symbol

import (
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize is the number of parsed libraries a Cache keeps.
const DefaultCacheSize = 64

// Cache keeps recently parsed libraries keyed by absolute path. An entry is
// reloaded when the file's modification time or size changes.
type Cache struct {
	libs *lru.LRU[string, cachedLibrary]
}

type cachedLibrary struct {
	modTime time.Time
	size    int64
	lib     *Library
}

// NewCache returns a cache holding up to size libraries. A ttl of zero keeps
// entries until they are evicted.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{libs: lru.NewLRU[string, cachedLibrary](size, nil, ttl)}
}

// Load returns the parsed library at path, parsing it on a miss.
func (c *Cache) Load(path string) (*Library, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Load(path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Load(path)
	}
	if entry, ok := c.libs.Get(abs); ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.lib, nil
	}

	lib, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.libs.Add(abs, cachedLibrary{modTime: info.ModTime(), size: info.Size(), lib: lib})
	return lib, nil
}

// Forget drops the library at path, typically after it was saved.
func (c *Cache) Forget(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		c.libs.Remove(abs)
	}
}

// Len returns the number of cached libraries.
func (c *Cache) Len() int {
	return c.libs.Len()
}
