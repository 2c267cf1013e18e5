package importer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent downloads in FetchAll.
const DefaultParallelism = 2

// FetchOne fetches a single adapter using the URL currently stored in sources.
func FetchOne(ctx context.Context, sources *SourceDB, a Adapter, outputDir string) (*FetchManifest, error) {
	url, err := sources.GetURL(a.ID())
	if err != nil {
		return nil, err
	}
	if err := ensureDir(outputDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	m, err := a.Fetch(ctx, url, outputDir)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.ID(), err)
	}
	if err := sources.RecordFetch(m); err != nil {
		return nil, err
	}
	return m, nil
}

// FetchAll fetches every adapter with at most limit downloads in flight.
// The first failure cancels the remaining fetches. Manifests are returned in
// adapter order.
func FetchAll(ctx context.Context, sources *SourceDB, list []Adapter, outputDir string, limit int, logger *slog.Logger) ([]*FetchManifest, error) {
	if limit <= 0 {
		limit = DefaultParallelism
	}
	manifests := make([]*FetchManifest, len(list))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, a := range list {
		g.Go(func() error {
			logger.Info("fetching source", "source", a.ID())
			m, err := FetchOne(ctx, sources, a, outputDir)
			if err != nil {
				return err
			}
			logger.Info("source fetched", "source", a.ID(), "file", m.File, "rows", m.Rows)
			manifests[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return manifests, nil
}
