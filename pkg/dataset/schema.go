package dataset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hazyhaar/annomi/pkg/tabular"
)

var (
	// ErrMissingColumn is returned when a configured or requested column is
	// not part of the schema.
	ErrMissingColumn = errors.New("dataset: missing column")
	// ErrMalformedRow is returned for rows that do not match the schema.
	ErrMalformedRow = tabular.ErrMalformedRow
	// ErrInvalidTarget is returned when splitting on the topic or text column.
	ErrInvalidTarget = errors.New("dataset: invalid split target")
)

// Schema is the ordered list of column names of a dataset.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema validates columns: names must be non-empty and unique.
func NewSchema(columns []string) (*Schema, error) {
	s := &Schema{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("dataset: column %d has an empty name", i)
		}
		if _, dup := s.index[c]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c)
		}
		s.index[c] = i
	}
	return s, nil
}

// Columns returns the column names in order.
func (s *Schema) Columns() []string { return slices.Clone(s.columns) }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Index returns the position of column name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) mustIndex(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q not in %v", ErrMissingColumn, name, s.columns)
	}
	return i, nil
}

func (s *Schema) equal(o *Schema) bool { return slices.Equal(s.columns, o.columns) }

// without returns the schema minus column i.
func (s *Schema) without(i int) *Schema {
	cols := slices.Delete(slices.Clone(s.columns), i, i+1)
	out, _ := NewSchema(cols)
	return out
}

// Record is one row, with values aligned to the dataset's schema.
type Record []string

// Clone returns a copy of r.
func (r Record) Clone() Record { return slices.Clone(r) }
