// Package importer fetches public AnnoMI releases into a local data
// directory. Each source is an Adapter; URLs live in a SQLite table so they
// can be overridden without a rebuild.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter fetches one remote dataset file.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "annomi-full").
	ID() string
	// FileName returns the name of the CSV written into the output directory.
	FileName() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default source URL used for seeding the database.
	DefaultURL() string
	// License returns the license of the upstream data.
	License() string
	// Fetch downloads the source from sourceURL, checks that it is a usable
	// dataset, and writes FileName() plus a fetch manifest into outputDir.
	Fetch(ctx context.Context, sourceURL, outputDir string) (*FetchManifest, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
