package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkParallelism bounds concurrent HEAD requests.
const checkParallelism = 4

// Checker periodically sends a HEAD request to every source URL and records
// whether it still answers. Redirects are recorded, not followed.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that verifies source URLs every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start runs an immediate check then repeats every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source and persists the results.
func (c *Checker) CheckAll(ctx context.Context) {
	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return
	}
	if len(sources) == 0 {
		return
	}

	var ok, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(checkParallelism)
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			status, checkErr := c.checkOne(ctx, src.SourceURL)
			errMsg := ""
			if checkErr != nil {
				errMsg = checkErr.Error()
			}
			if err := c.sources.UpdateCheck(src.AdapterID, status, errMsg); err != nil {
				c.logger.Error("source check: update status", "source", src.AdapterID, "error", err)
			}

			if status >= 200 && status < 400 {
				ok.Add(1)
				return nil
			}
			failed.Add(1)
			c.logger.Warn("source unreachable",
				"source", src.AdapterID,
				"url", src.SourceURL,
				"status", status,
				"error", errMsg,
			)
			return nil
		})
	}
	g.Wait()

	c.logger.Info("source check complete", "total", ok.Load()+failed.Load(), "ok", ok.Load(), "failed", failed.Load())
}

// checkOne sends a HEAD request and returns the status code, 0 on network errors.
func (c *Checker) checkOne(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
