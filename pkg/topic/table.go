// CLAUDE:SUMMARY Old->new topic mapping table loaded from CSV, with direct and component-wise composite resolution.
package topic

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/hazyhaar/annomi/pkg/tabular"
)

// Default column names of the mapping file.
const (
	DefaultOldColumn = "old_topic"
	DefaultNewColumn = "new_topic"
)

// Table maps canonical topics to their remapped names.
type Table struct {
	m map[string]string
}

// NewTable builds a Table from a copy of m. Entries with an empty key or value
// are ignored.
func NewTable(m map[string]string) *Table {
	t := &Table{m: make(map[string]string, len(m))}
	for k, v := range m {
		if k == "" || v == "" {
			continue
		}
		t.m[k] = v
	}
	return t
}

// LoadTable reads the mapping file at path. Rows with an empty old or new
// topic are skipped; a repeated old topic keeps its last value.
func LoadTable(path string, f tabular.Format, oldCol, newCol string) (*Table, error) {
	if oldCol == "" {
		oldCol = DefaultOldColumn
	}
	if newCol == "" {
		newCol = DefaultNewColumn
	}

	tbl, err := tabular.ReadFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("load topic table: %w", err)
	}
	oldIdx, ok := tbl.Column(oldCol)
	if !ok {
		return nil, fmt.Errorf("topic table %s: column %q not found in header %v", path, oldCol, tbl.Header)
	}
	newIdx, ok := tbl.Column(newCol)
	if !ok {
		return nil, fmt.Errorf("topic table %s: column %q not found in header %v", path, newCol, tbl.Header)
	}

	t := &Table{m: make(map[string]string, len(tbl.Rows))}
	var collisions int
	for _, row := range tbl.Rows {
		oldTopic := strings.TrimSpace(row[oldIdx])
		newTopic := strings.TrimSpace(row[newIdx])
		if oldTopic == "" || newTopic == "" {
			continue
		}
		if _, exists := t.m[oldTopic]; exists {
			collisions++
		}
		t.m[oldTopic] = newTopic
	}
	if collisions > 0 {
		slog.Warn("duplicate old topics in mapping table", "path", path, "collisions", collisions)
	}
	return t, nil
}

// Len returns the number of mapped topics.
func (t *Table) Len() int { return len(t.m) }

// Map returns a copy of the table.
func (t *Table) Map() map[string]string { return maps.Clone(t.m) }

// Lookup returns the direct mapping of topic.
func (t *Table) Lookup(topic string) (string, bool) {
	v, ok := t.m[topic]
	return v, ok
}

// Resolve maps topic. A direct hit wins; otherwise a topic containing sep is
// mapped component by component and re-joined with sep. Any component without
// a mapping, or a plain topic without a hit, leaves the topic unresolved.
func (t *Table) Resolve(topic, sep string) (string, bool) {
	if v, ok := t.m[topic]; ok {
		return v, true
	}
	if sep == "" || !strings.Contains(topic, sep) {
		return "", false
	}
	parts := strings.Split(topic, sep)
	for i, p := range parts {
		v, ok := t.m[p]
		if !ok {
			return "", false
		}
		parts[i] = v
	}
	return strings.Join(parts, sep), true
}
