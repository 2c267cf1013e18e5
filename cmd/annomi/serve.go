// CLAUDE:SUMMARY CLI subcommands that expose the processed dataset over HTTP and as MCP tools on stdio.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/annomi/pkg/api"
	"github.com/hazyhaar/annomi/pkg/importer"
)

func cmdServe(args []string) error {
	fs, cfgPath := newFlagSet("serve")
	input := fs.String("input", "", "dataset CSV or gob snapshot (default: dataset from config)")
	addr := fs.String("addr", "", "listen address (default: addr from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *input == "" {
		*input = cfg.Dataset
	}
	if *addr == "" {
		*addr = cfg.Addr
	}

	d, err := loadProcessed(*input, false, cfg, logger)
	if err != nil {
		return err
	}
	svc, err := api.NewService(d)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.CheckInterval > 0 {
		sdb, err := openSources(cfg.SourcesDB)
		if err != nil {
			return err
		}
		defer sdb.Close()
		go importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("annomi listening", "addr", *addr, "rows", d.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cmdMCP(args []string) error {
	fs, cfgPath := newFlagSet("mcp")
	input := fs.String("input", "", "dataset CSV or gob snapshot (default: dataset from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *input == "" {
		*input = cfg.Dataset
	}

	d, err := loadProcessed(*input, false, cfg, logger)
	if err != nil {
		return err
	}
	svc, err := api.NewService(d)
	if err != nil {
		return err
	}

	srv := server.NewMCPServer("annomi", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, svc, logger)
	return server.ServeStdio(srv)
}
