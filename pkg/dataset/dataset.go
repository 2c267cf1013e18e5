// Package dataset holds an annotated utterance table and runs the
// normalization pipelines and stratified splits over it.
//
// A Dataset is never modified in place: every transformation returns a new
// Dataset that shares configuration and the lazily loaded topic mapping table
// with the one it was derived from.
package dataset

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hazyhaar/annomi/pkg/tabular"
	"github.com/hazyhaar/annomi/pkg/topic"
)

// Dataset is an ordered collection of records with a validated schema.
type Dataset struct {
	cfg     *config
	topics  *tableCache
	schema  *Schema
	records []Record

	cleaned    bool
	dropped    int
	unresolved map[string]int
}

// New builds a Dataset from a header and rows. The topic and utterance text
// columns must be present and every row must have one value per column.
func New(columns []string, rows [][]string, opts ...Option) (*Dataset, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	schema, err := NewSchema(columns)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{cfg.topicField, cfg.textField} {
		if _, err := schema.mustIndex(required); err != nil {
			return nil, err
		}
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		if len(row) != schema.Len() {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformedRow, i+1, len(row), schema.Len())
		}
		records[i] = Record(row).Clone()
	}

	d := &Dataset{
		cfg:     &cfg,
		schema:  schema,
		records: records,
	}
	d.topics = newTableCache(d.loadTopicTable)
	if cfg.topicTable != nil {
		d.topics.override(cfg.topicTable)
	}
	return d, nil
}

// Load reads a dataset file. Paths ending in ".gob" are read as snapshots
// written by SaveGob; anything else is read as CSV.
func Load(path string, opts ...Option) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".gob") {
		return LoadGob(path, opts...)
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	tbl, err := tabular.ReadFile(path, cfg.format)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	d, err := New(tbl.Header, tbl.Rows, opts...)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	d.cfg.logger.Debug("dataset loaded", "path", path, "rows", d.Len(), "columns", d.schema.Len())
	return d, nil
}

func (d *Dataset) loadTopicTable() (*topic.Table, error) {
	t, err := topic.LoadTable(d.cfg.topicMapPath, d.cfg.format, d.cfg.oldTopicField, d.cfg.newTopicField)
	if err != nil {
		return nil, err
	}
	d.cfg.logger.Debug("topic table loaded", "path", d.cfg.topicMapPath, "topics", t.Len())
	return t, nil
}

// derive returns a Dataset sharing d's configuration and topic cache.
func (d *Dataset) derive(schema *Schema, records []Record) *Dataset {
	return &Dataset{
		cfg:        d.cfg,
		topics:     d.topics,
		schema:     schema,
		records:    records,
		cleaned:    d.cleaned,
		dropped:    d.dropped,
		unresolved: d.unresolved,
	}
}

// mapColumn returns a Dataset with fn applied to column i of every record.
func (d *Dataset) mapColumn(i int, fn func(string) string) *Dataset {
	out := make([]Record, len(d.records))
	for j, r := range d.records {
		c := r.Clone()
		c[i] = fn(c[i])
		out[j] = c
	}
	return d.derive(d.schema, out)
}

func (d *Dataset) topicIndex() int {
	i, _ := d.schema.Index(d.cfg.topicField)
	return i
}

func (d *Dataset) textIndex() int {
	i, _ := d.schema.Index(d.cfg.textField)
	return i
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Schema returns the dataset schema.
func (d *Dataset) Schema() *Schema { return d.schema }

// Record returns a copy of record i.
func (d *Dataset) Record(i int) Record { return d.records[i].Clone() }

// Records returns a copy of all records.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = r.Clone()
	}
	return out
}

// Column returns the values of column name in record order.
func (d *Dataset) Column(name string) ([]string, error) {
	i, err := d.schema.mustIndex(name)
	if err != nil {
		return nil, err
	}
	return d.column(i), nil
}

func (d *Dataset) column(i int) []string {
	out := make([]string, len(d.records))
	for j, r := range d.records {
		out[j] = r[i]
	}
	return out
}

// Value returns the value of column name in record i.
func (d *Dataset) Value(i int, name string) (string, error) {
	c, err := d.schema.mustIndex(name)
	if err != nil {
		return "", err
	}
	return d.records[i][c], nil
}

// TopicCounts returns the topic distribution, most frequent first.
func (d *Dataset) TopicCounts() []topic.Count {
	return topic.Distribution(d.column(d.topicIndex()))
}

// Cleaned reports whether CleanTopics ran on this dataset's lineage.
func (d *Dataset) Cleaned() bool { return d.cleaned }

// Dropped returns how many records were removed because their topic could not
// be remapped.
func (d *Dataset) Dropped() int { return d.dropped }

// Unresolved returns, per topic, how many records were dropped by RemapTopics.
func (d *Dataset) Unresolved() map[string]int { return maps.Clone(d.unresolved) }

// TopicTable returns the topic mapping table, loading it on first use.
func (d *Dataset) TopicTable() (*topic.Table, error) { return d.topics.get() }

// ResetTopicTable drops the cached topic mapping table for this dataset's
// lineage; the next remap reloads it.
func (d *Dataset) ResetTopicTable() { d.topics.reset() }

// Concat appends datasets with identical schemas.
func Concat(first *Dataset, rest ...*Dataset) (*Dataset, error) {
	records := make([]Record, 0, first.Len())
	records = append(records, first.records...)
	for _, o := range rest {
		if !o.schema.equal(first.schema) {
			return nil, fmt.Errorf("dataset: concat schema mismatch: %v vs %v", first.schema.columns, o.schema.columns)
		}
		records = append(records, o.records...)
	}
	return first.derive(first.schema, records), nil
}

// tableCache loads the topic mapping table at most once per lineage.
type tableCache struct {
	mu   sync.Mutex
	load func() (*topic.Table, error)
	t    *topic.Table
}

func newTableCache(load func() (*topic.Table, error)) *tableCache {
	return &tableCache{load: load}
}

func (c *tableCache) get() (*topic.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t != nil {
		return c.t, nil
	}
	t, err := c.load()
	if err != nil {
		return nil, err
	}
	c.t = t
	return t, nil
}

func (c *tableCache) override(t *topic.Table) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *tableCache) reset() {
	c.mu.Lock()
	c.t = nil
	c.mu.Unlock()
}
