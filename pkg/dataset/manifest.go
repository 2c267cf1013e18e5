// CLAUDE:SUMMARY Split run manifest YAML: run parameters, row counts and encoder classes for reproducing a split.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/annomi/pkg/encode"
)

// ManifestFile is the file name WriteManifest uses inside a run directory.
const ManifestFile = "manifest.yaml"

// Manifest records how a train/test split was produced.
type Manifest struct {
	RunID              string              `yaml:"run_id"`
	CreatedAt          time.Time           `yaml:"created_at"`
	Source             string              `yaml:"source"`
	Pipeline           string              `yaml:"pipeline"`
	TestSize           float64             `yaml:"test_size"`
	Seed               uint64              `yaml:"seed"`
	MultiTopicFallback bool                `yaml:"multi_topic_fallback"`
	Targets            []string            `yaml:"targets"`
	Rows               int                 `yaml:"rows"`
	Dropped            int                 `yaml:"dropped"`
	Train              int                 `yaml:"train"`
	Test               int                 `yaml:"test"`
	Encoders           map[string][]string `yaml:"encoders,omitempty"`
}

// NewManifest returns a Manifest with a fresh run ID and timestamp.
func NewManifest() *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// SetEncoders records the class list of every non-nil encoder.
func (m *Manifest) SetEncoders(encoders map[string]*encode.Encoder) {
	m.Encoders = make(map[string][]string, len(encoders))
	for target, e := range encoders {
		if e != nil {
			m.Encoders[target] = e.Classes()
		}
	}
}

// Encoder rebuilds the encoder recorded for target.
func (m *Manifest) Encoder(target string) (*encode.Encoder, error) {
	classes, ok := m.Encoders[target]
	if !ok {
		return nil, fmt.Errorf("manifest %s: no encoder for %q", m.RunID, target)
	}
	return encode.FromClasses(classes)
}

// WriteManifest writes m as YAML to dir/manifest.yaml.
func WriteManifest(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.RunID == "" {
		return nil, fmt.Errorf("manifest %s: missing run_id", path)
	}
	return &m, nil
}
