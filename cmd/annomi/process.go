// CLAUDE:SUMMARY CLI subcommands that run the preprocessing pipeline and the stratified train/test split.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/annomi/pkg/dataset"
	"github.com/hazyhaar/annomi/pkg/split"
)

func cmdProcess(args []string) error {
	fs, cfgPath := newFlagSet("process")
	input := fs.String("input", "", "dataset CSV (default: dataset from config)")
	output := fs.String("output", "", "processed CSV to write")
	snapshot := fs.String("snapshot", "", "gob snapshot to write")
	raw := fs.Bool("raw", false, "clean and remap topics only, keep utterance text as is")
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
	if *output == "" && *snapshot == "" {
		*output = filepath.Join(cfg.DataDir, "processed.csv")
		*snapshot = filepath.Join(cfg.DataDir, "processed.gob")
	}

	d, err := loadProcessed(*input, *raw, cfg, logger)
	if err != nil {
		return err
	}
	if *output != "" {
		if err := d.SaveCSV(*output); err != nil {
			return err
		}
		logger.Info("csv written", "path", *output, "rows", d.Len())
	}
	if *snapshot != "" {
		if err := d.SaveGob(*snapshot); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", *snapshot)
	}
	for topic, n := range d.Unresolved() {
		logger.Warn("unmapped topic dropped", "topic", topic, "rows", n)
	}
	return nil
}

func cmdSplit(args []string) error {
	fs, cfgPath := newFlagSet("split")
	input := fs.String("input", "", "dataset CSV or gob snapshot (default: dataset from config)")
	outDir := fs.String("out-dir", "", "directory for train.csv, test.csv and manifest.yaml")
	targets := fs.String("targets", "", "comma-separated target columns (default: targets from config)")
	testSize := fs.Float64("test-size", 0, "test fraction per group (default: test_size from config)")
	seed := fs.Uint64("seed", 0, "shuffle seed (default: seed from config)")
	noFallback := fs.Bool("no-fallback", false, "fail on singleton multi-topic groups")
	noEncode := fs.Bool("no-encode", false, "keep target labels instead of integer codes")
	raw := fs.Bool("raw", false, "keep utterance text unprocessed")
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
	if *outDir == "" {
		*outDir = filepath.Join(cfg.DataDir, "split")
	}
	set := explicitFlags(fs)
	if !set["test-size"] {
		*testSize = cfg.TestSize
	}
	if !set["seed"] {
		*seed = cfg.Seed
	}
	targetList := cfg.Targets
	if *targets != "" {
		targetList = strings.Split(*targets, ",")
	}

	d, err := loadProcessed(*input, *raw, cfg, logger)
	if err != nil {
		return err
	}

	opts := dataset.DefaultSplitOptions()
	opts.TestSize = *testSize
	opts.Rand = split.NewRand(*seed)
	opts.MultiTopicFallback = cfg.MultiTopicFallback && !*noFallback
	opts.Encode = !*noEncode

	train, test, encoders, err := d.SplitTargets(targetList, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := train.SaveCSV(filepath.Join(*outDir, "train.csv")); err != nil {
		return err
	}
	if err := test.SaveCSV(filepath.Join(*outDir, "test.csv")); err != nil {
		return err
	}

	m := dataset.NewManifest()
	m.Source = *input
	m.Pipeline = "processed"
	if *raw {
		m.Pipeline = "unprocessed"
	}
	m.TestSize = opts.TestSize
	m.Seed = *seed
	m.MultiTopicFallback = opts.MultiTopicFallback
	m.Targets = targetList
	m.Rows = d.Len()
	m.Dropped = d.Dropped()
	m.Train = train.Len()
	m.Test = test.Len()
	m.SetEncoders(encoders)
	if err := dataset.WriteManifest(*outDir, m); err != nil {
		return err
	}

	logger.Info("split written", "dir", *outDir, "run_id", m.RunID, "train", m.Train, "test", m.Test)
	return nil
}
