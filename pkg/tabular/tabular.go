// CLAUDE:SUMMARY Header-first CSV reading/writing with declared delimiter and non-UTF-8 source transcoding.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrMalformedRow is returned for rows that cannot be aligned with the header.
var ErrMalformedRow = errors.New("tabular: malformed row")

// Format describes the CSV layout of a source file.
type Format struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

func (f Format) comma() rune {
	if f.Delimiter == "" {
		return ','
	}
	return []rune(f.Delimiter)[0]
}

// NewReader wraps r in a csv.Reader, transcoding from the declared encoding.
// Field whitespace is preserved: callers decide what to trim.
func NewReader(r io.Reader, f Format) (*csv.Reader, error) {
	if enc := f.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = f.comma()
	cr.LazyQuotes = true
	return cr, nil
}

// Table is a fully read CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Read reads a header row followed by data rows. Every data row must have as
// many fields as the header.
func Read(r io.Reader, f Format) (*Table, error) {
	cr, err := NewReader(r, f)
	if err != nil {
		return nil, err
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, pe.Line, pe.Err)
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path string, f Format) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	t, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// NewWriter returns a UTF-8 csv.Writer using f's delimiter.
func NewWriter(w io.Writer, f Format) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = f.comma()
	return cw
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
