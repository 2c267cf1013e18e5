// Command annomi fetches, preprocesses and splits the AnnoMI dataset, and
// serves its text pipeline over HTTP or MCP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/annomi/pkg/dataset"
	"github.com/hazyhaar/annomi/pkg/split"
	"github.com/hazyhaar/annomi/pkg/subst"
	"github.com/hazyhaar/annomi/pkg/tabular"
	"github.com/hazyhaar/annomi/pkg/textnorm"
)

const version = "0.1.0"

type config struct {
	DataDir            string         `yaml:"data_dir"`
	Dataset            string         `yaml:"dataset"`
	TopicMap           string         `yaml:"topic_map"`
	Contractions       string         `yaml:"contractions"`
	ManualContractions string         `yaml:"manual_contractions"`
	TopicField         string         `yaml:"topic_field"`
	TopicSeparator     string         `yaml:"topic_separator"`
	OldTopicField      string         `yaml:"old_topic_field"`
	NewTopicField      string         `yaml:"new_topic_field"`
	TextField          string         `yaml:"text_field"`
	Format             tabular.Format `yaml:"format"`
	Fold               string         `yaml:"fold"`
	Targets            []string       `yaml:"targets"`
	TestSize           float64        `yaml:"test_size"`
	Seed               uint64         `yaml:"seed"`
	MultiTopicFallback bool           `yaml:"multi_topic_fallback"`
	Addr               string         `yaml:"addr"`
	SourcesDB          string         `yaml:"sources_db"`
	CheckInterval      time.Duration  `yaml:"check_interval"`
	LogLevel           string         `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		DataDir:            "data",
		Dataset:            dataset.DefaultDatasetPath,
		TopicMap:           dataset.DefaultTopicMapPath,
		Contractions:       subst.DefaultBasePath,
		ManualContractions: subst.DefaultOverridePath,
		TopicField:         dataset.DefaultTopicField,
		TopicSeparator:     split.DefaultSeparator,
		OldTopicField:      dataset.DefaultOldTopicField,
		NewTopicField:      dataset.DefaultNewTopicField,
		TextField:          dataset.DefaultTextField,
		Fold:               textnorm.FoldLower,
		Targets:            dataset.DefaultTargets,
		TestSize:           0.2,
		Seed:               42,
		MultiTopicFallback: true,
		Addr:               ":8421",
		SourcesDB:          "data/sources.db",
		LogLevel:           "info",
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "fetch":
		err = cmdFetch(os.Args[2:])
	case "sources":
		err = cmdSources(os.Args[2:])
	case "process":
		err = cmdProcess(os.Args[2:])
	case "split":
		err = cmdSplit(os.Args[2:])
	case "serve":
		err = cmdServe(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "version":
		fmt.Println("annomi", version)
	default:
		usage()
		os.Exit(1)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "annomi %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: annomi <command> [flags]

Commands:
  fetch     Download the AnnoMI release files
  sources   List, override or check source URLs
  process   Clean topics and text, write a CSV and a gob snapshot
  split     Stratified train/test split per target
  serve     Start the HTTP API
  mcp       Serve the MCP tools over stdio
  version   Print the version
`)
}

// newFlagSet returns a flag set carrying the shared --config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "annomi.yaml", "path to config file")
	return fs, cfgPath
}

// explicitFlags returns the names of the flags given on the command line, so
// an explicit zero can be told apart from an unset flag.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// setup loads the config, builds the logger and points the contraction
// tables at the configured files.
func setup(cfgPath string) (config, *slog.Logger, error) {
	boot := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := loadConfig(cfgPath, boot)
	if err != nil {
		return cfg, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	subst.Configure(cfg.Contractions, cfg.ManualContractions)
	return cfg, logger, nil
}

func loadConfig(path string, logger *slog.Logger) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// datasetOptions maps the config onto dataset options.
func datasetOptions(cfg config, logger *slog.Logger) []dataset.Option {
	return []dataset.Option{
		dataset.WithTopicField(cfg.TopicField),
		dataset.WithTopicSeparator(cfg.TopicSeparator),
		dataset.WithTopicColumns(cfg.OldTopicField, cfg.NewTopicField),
		dataset.WithTextField(cfg.TextField),
		dataset.WithTopicMapPath(cfg.TopicMap),
		dataset.WithFormat(cfg.Format),
		dataset.WithFold(textnorm.GetFolder(cfg.Fold)),
		dataset.WithLogger(logger),
	}
}

// loadProcessed loads path and runs the processing pipeline unless the file
// is a snapshot of an already cleaned dataset. raw selects the pipeline that
// keeps utterance text untouched.
func loadProcessed(path string, raw bool, cfg config, logger *slog.Logger) (*dataset.Dataset, error) {
	d, err := dataset.Load(path, datasetOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}
	if d.Cleaned() {
		logger.Info("dataset loaded", "path", path, "rows", d.Len(), "snapshot", true)
		return d, nil
	}

	if raw {
		d, err = d.Unprocessed()
	} else {
		d, err = d.Processed()
	}
	if err != nil {
		return nil, err
	}
	logger.Info("dataset processed", "path", path, "rows", d.Len(), "dropped", d.Dropped())
	return d, nil
}
