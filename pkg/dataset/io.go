// CLAUDE:SUMMARY Dataset persistence: CSV export and gob snapshots for fast reloading of processed datasets.
package dataset

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/hazyhaar/annomi/pkg/tabular"
)

// WriteCSV writes the header and all records to w.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := tabular.NewWriter(w, d.cfg.format)
	if err := cw.Write(d.schema.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range d.records {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the dataset to a CSV file at path.
func (d *Dataset) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := d.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// snapshot is the gob form of a Dataset.
type snapshot struct {
	Columns    []string
	Records    [][]string
	Cleaned    bool
	Dropped    int
	Unresolved map[string]int
}

// SaveGob serializes the dataset, including its pipeline state, to path.
func (d *Dataset) SaveGob(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	snap := snapshot{
		Columns:    d.schema.columns,
		Records:    make([][]string, len(d.records)),
		Cleaned:    d.cleaned,
		Dropped:    d.dropped,
		Unresolved: d.unresolved,
	}
	for i, r := range d.records {
		snap.Records[i] = r
	}
	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}

// LoadGob reads a snapshot written by SaveGob.
func LoadGob(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	d, err := New(snap.Columns, snap.Records, opts...)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	d.cleaned = snap.Cleaned
	d.dropped = snap.Dropped
	d.unresolved = snap.Unresolved
	return d, nil
}
