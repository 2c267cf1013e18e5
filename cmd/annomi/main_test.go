package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/annomi/pkg/dataset"
	"github.com/hazyhaar/annomi/pkg/split"
	"github.com/hazyhaar/annomi/pkg/subst"
	"github.com/hazyhaar/annomi/pkg/tabular"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annomi.yaml")
	writeFile(t, path, `
dataset: in/AnnoMI-full.csv
topic_separator: ";"
format:
  delimiter: ";"
  encoding: windows-1252
targets: [client_talk_type]
test_size: 0.3
multi_topic_fallback: false
check_interval: 6h
fold: lower_ascii
`)
	cfg, err := loadConfig(path, quietLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	want := defaultConfig()
	want.Dataset = "in/AnnoMI-full.csv"
	want.TopicSeparator = ";"
	want.Format = tabular.Format{Delimiter: ";", Encoding: "windows-1252"}
	want.Targets = []string{"client_talk_type"}
	want.TestSize = 0.3
	want.MultiTopicFallback = false
	want.CheckInterval = 6 * time.Hour
	want.Fold = "lower_ascii"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "test_size: [not a number\n")
	if _, err := loadConfig(path, quietLogger()); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"noise": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// writeFixture lays out a small AnnoMI-shaped project in dir and returns the
// config path.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "dataset.csv"), `id,topic,utterance_text,client_talk_type,main_therapist_behaviour
1,X,"I don't  know",neutral,question
2,X,Self-care matters,neutral,question
3,X|Y,ok [unintelligible 00:00:03],neutral,question
4,Y,fine,neutral,question
5,X,"Um [unintelligible 00:01:00] SURE",neutral,question
6,Y ,can't say,neutral,question
`)
	writeFile(t, filepath.Join(dir, "topics.csv"), "old_topic,new_topic\nX,alcohol\nY,smoking\n")
	writeFile(t, filepath.Join(dir, "contractions.json"), `{"don't": "do not", "can't": "cannot"}`)
	writeFile(t, filepath.Join(dir, "manual.json"), `{"can't": "can not"}`)

	cfgPath := filepath.Join(dir, "annomi.yaml")
	writeFile(t, cfgPath, `
data_dir: `+dir+`
dataset: `+filepath.Join(dir, "dataset.csv")+`
topic_map: `+filepath.Join(dir, "topics.csv")+`
contractions: `+filepath.Join(dir, "contractions.json")+`
manual_contractions: `+filepath.Join(dir, "manual.json")+`
sources_db: `+filepath.Join(dir, "sources.db")+`
log_level: error
seed: 7
`)
	t.Cleanup(func() {
		subst.Configure(subst.DefaultBasePath, subst.DefaultOverridePath)
	})
	return cfgPath
}

func TestCmdProcess(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir)

	if err := cmdProcess([]string{"--config", cfgPath}); err != nil {
		t.Fatalf("cmdProcess: %v", err)
	}

	d, err := dataset.Load(filepath.Join(dir, "processed.gob"))
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !d.Cleaned() {
		t.Error("snapshot not marked cleaned")
	}
	topics, _ := d.Column("topic")
	if diff := cmp.Diff([]string{"alcohol", "alcohol", "alcohol|smoking", "smoking", "alcohol", "smoking"}, topics); diff != "" {
		t.Errorf("topics (-want +got):\n%s", diff)
	}
	text, _ := d.Column("utterance_text")
	want := []string{"i do not know", "self care matters", "ok", "fine", "sure", "can not say"}
	if diff := cmp.Diff(want, text); diff != "" {
		t.Errorf("text (-want +got):\n%s", diff)
	}

	csvData, err := dataset.Load(filepath.Join(dir, "processed.csv"))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if diff := cmp.Diff(d.Records(), csvData.Records()); diff != "" {
		t.Errorf("csv and snapshot differ (-gob +csv):\n%s", diff)
	}
}

func TestCmdSplit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir)
	out := filepath.Join(dir, "run")

	if err := cmdSplit([]string{"--config", cfgPath, "--out-dir", out}); err != nil {
		t.Fatalf("cmdSplit: %v", err)
	}

	train, err := dataset.Load(filepath.Join(out, "train.csv"))
	if err != nil {
		t.Fatalf("load train: %v", err)
	}
	test, err := dataset.Load(filepath.Join(out, "test.csv"))
	if err != nil {
		t.Fatalf("load test: %v", err)
	}
	if train.Len() != 8 || test.Len() != 4 {
		t.Errorf("train=%d test=%d, want 8/4", train.Len(), test.Len())
	}
	ids, _ := test.Column("id")
	if slices.Contains(ids, "3") {
		t.Error("singleton multi-topic record landed in test")
	}

	m, err := dataset.LoadManifest(filepath.Join(out, dataset.ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Seed != 7 || m.Rows != 6 || m.Train != 8 || m.Test != 4 || !m.MultiTopicFallback {
		t.Errorf("manifest = %+v", m)
	}
	if diff := cmp.Diff(map[string][]string{
		"client_talk_type":         {"neutral"},
		"main_therapist_behaviour": {"question"},
	}, m.Encoders); diff != "" {
		t.Errorf("encoders (-want +got):\n%s", diff)
	}
}

func TestCmdSplit_NoFallback(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir)
	err := cmdSplit([]string{"--config", cfgPath, "--out-dir", filepath.Join(dir, "run"), "--no-fallback"})
	if err == nil {
		t.Fatal("expected insufficient stratum error")
	}
}

func TestCmdSplit_ExplicitZeroFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir)
	out := filepath.Join(dir, "run")

	if err := cmdSplit([]string{"--config", cfgPath, "--out-dir", out, "--seed", "0"}); err != nil {
		t.Fatalf("cmdSplit: %v", err)
	}
	m, err := dataset.LoadManifest(filepath.Join(out, dataset.ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Seed != 0 {
		t.Errorf("manifest seed = %d, want 0 from the command line", m.Seed)
	}

	err = cmdSplit([]string{"--config", cfgPath, "--out-dir", out, "--test-size", "0"})
	if !errors.Is(err, split.ErrInvalidTestSize) {
		t.Errorf("err = %v, want ErrInvalidTestSize", err)
	}
}

func TestExplicitFlags(t *testing.T) {
	fs, _ := newFlagSet("test")
	fs.Uint64("seed", 0, "")
	fs.Float64("test-size", 0, "")
	if err := fs.Parse([]string{"--seed", "0"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]bool{"seed": true}, explicitFlags(fs)); diff != "" {
		t.Errorf("explicit flags (-want +got):\n%s", diff)
	}
}

func TestCmdSources(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFixture(t, dir)

	if err := cmdSources([]string{"--config", cfgPath, "--set", "annomi-full=https://mirror.example.com/full.csv"}); err != nil {
		t.Fatalf("cmdSources --set: %v", err)
	}
	sdb, err := openSources(filepath.Join(dir, "sources.db"))
	if err != nil {
		t.Fatalf("openSources: %v", err)
	}
	url, _ := sdb.GetURL("annomi-full")
	sdb.Close()
	if url != "https://mirror.example.com/full.csv" {
		t.Errorf("url = %q", url)
	}

	if err := cmdSources([]string{"--config", cfgPath, "--set", "broken"}); err == nil {
		t.Error("expected error for malformed --set")
	}
	if err := cmdSources([]string{"--config", cfgPath, "--reset", "annomi-full"}); err != nil {
		t.Fatalf("cmdSources --reset: %v", err)
	}
}
