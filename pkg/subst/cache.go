package subst

import (
	"path/filepath"
	"sync"
)

// Default locations of the contraction tables, relative to the working directory.
var (
	DefaultBasePath     = filepath.Join("properties", "contraction_map.json")
	DefaultOverridePath = filepath.Join("properties", "manual_contraction_map.json")
)

// Cache holds a Map loaded at most once. A failed load is not cached.
type Cache struct {
	mu     sync.Mutex
	load   func() (Map, error)
	m      Map
	loaded bool
}

// NewCache returns a Cache that calls load on first Get.
func NewCache(load func() (Map, error)) *Cache {
	return &Cache{load: load}
}

// Get returns the cached Map, loading it on first use.
func (c *Cache) Get() (Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.m, nil
	}
	m, err := c.load()
	if err != nil {
		return Map{}, err
	}
	c.m, c.loaded = m, true
	return m, nil
}

// Override replaces the cached Map without calling the loader.
func (c *Cache) Override(m Map) {
	c.mu.Lock()
	c.m, c.loaded = m, true
	c.mu.Unlock()
}

// Reset drops the cached Map; the next Get loads again.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.m, c.loaded = Map{}, false
	c.mu.Unlock()
}

var (
	defaultMu    sync.Mutex
	basePath     = DefaultBasePath
	overridePath = DefaultOverridePath
	defaultCache = NewCache(func() (Map, error) {
		defaultMu.Lock()
		b, o := basePath, overridePath
		defaultMu.Unlock()
		return LoadMerged(b, o)
	})
)

// Configure sets the files the process-wide default map is loaded from and
// drops any cached value.
func Configure(base, override string) {
	defaultMu.Lock()
	basePath, overridePath = base, override
	defaultMu.Unlock()
	defaultCache.Reset()
}

// Default returns the process-wide combined contraction map (base merged with
// manual overrides), loading it on first use.
func Default() (Map, error) { return defaultCache.Get() }

// SetDefault pins the process-wide default map.
func SetDefault(m Map) { defaultCache.Override(m) }

// ResetDefault drops the cached default map.
func ResetDefault() { defaultCache.Reset() }
