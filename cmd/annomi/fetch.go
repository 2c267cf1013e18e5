// CLAUDE:SUMMARY CLI subcommands that download AnnoMI releases and manage the source URL table.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/hazyhaar/annomi/pkg/importer"
)

func openSources(path string) (*importer.SourceDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sources dir: %w", err)
	}
	sdb, err := importer.OpenSourceDB(path)
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, err
	}
	return sdb, nil
}

func cmdFetch(args []string) error {
	fs, cfgPath := newFlagSet("fetch")
	source := fs.String("source", "", "source ID to fetch (e.g. annomi-full)")
	all := fs.Bool("all", false, "fetch all sources")
	outputDir := fs.String("output-dir", "", "output directory (default: data_dir from config)")
	parallel := fs.Int("parallel", importer.DefaultParallelism, "concurrent downloads with --all")
	timeout := fs.Duration("timeout", 30*time.Minute, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *outputDir == "" {
		*outputDir = cfg.DataDir
	}

	if !*all && *source == "" {
		fmt.Fprintln(os.Stderr, "Usage: annomi fetch --source <id> | --all [--output-dir <dir>]")
		return listSources(cfg.SourcesDB)
	}

	sdb, err := openSources(cfg.SourcesDB)
	if err != nil {
		return err
	}
	defer sdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var list []importer.Adapter
	if *all {
		list = importer.All()
	} else {
		a, err := importer.Get(*source)
		if err != nil {
			return err
		}
		list = []importer.Adapter{a}
	}

	manifests, err := importer.FetchAll(ctx, sdb, list, *outputDir, *parallel, logger)
	if err != nil {
		return err
	}
	for _, m := range manifests {
		fmt.Printf("[%s] OK -> %s (%d rows, sha256 %s)\n", m.Source, m.File, m.Rows, m.SHA256[:12])
	}
	return nil
}

func cmdSources(args []string) error {
	fs, cfgPath := newFlagSet("sources")
	set := fs.String("set", "", "override a source URL: <id>=<url>")
	reset := fs.String("reset", "", "restore the default URL of a source")
	check := fs.Bool("check", false, "check every source URL with a HEAD request")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := setup(*cfgPath)
	if err != nil {
		return err
	}

	sdb, err := openSources(cfg.SourcesDB)
	if err != nil {
		return err
	}
	defer sdb.Close()

	switch {
	case *set != "":
		id, url, ok := strings.Cut(*set, "=")
		if !ok || url == "" {
			return fmt.Errorf("--set expects <id>=<url>, got %q", *set)
		}
		if err := sdb.SetURL(id, url); err != nil {
			return err
		}
	case *reset != "":
		a, err := importer.Get(*reset)
		if err != nil {
			return err
		}
		if err := sdb.ResetURL(a); err != nil {
			return err
		}
	case *check:
		importer.NewChecker(sdb, logger, time.Hour).CheckAll(context.Background())
	}
	return printSources(sdb)
}

func listSources(dbPath string) error {
	sdb, err := openSources(dbPath)
	if err != nil {
		return err
	}
	defer sdb.Close()
	return printSources(sdb)
}

func printSources(sdb *importer.SourceDB) error {
	sources, err := sdb.ListSources()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tROWS\tURL")
	for _, src := range sources {
		status, rows := "-", "-"
		if src.LastStatus != nil {
			status = fmt.Sprint(*src.LastStatus)
		}
		if src.Rows != nil {
			rows = fmt.Sprint(*src.Rows)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", src.AdapterID, src.FileName, status, rows, src.SourceURL)
	}
	return w.Flush()
}
