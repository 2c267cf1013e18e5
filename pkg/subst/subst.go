// CLAUDE:SUMMARY Ordered literal substitution maps: validation, key-order-preserving JSON/YAML parsing, override merge.
package subst

import (
	"errors"
	"fmt"
	"iter"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSubstitutionMap is returned when a substitution source is not a
// flat mapping of literal strings to literal strings.
var ErrInvalidSubstitutionMap = errors.New("subst: invalid substitution map")

// Pair is a single literal replacement.
type Pair struct {
	Old string
	New string
}

// Map is an immutable, ordered list of replacements. The order is the order in
// which the replacements are applied; a replacement may produce text that a
// later key matches.
type Map struct {
	pairs []Pair
	index map[string]int
}

// New builds a Map from pairs in the given order. Empty or duplicated keys are
// rejected.
func New(pairs ...Pair) (Map, error) {
	m := Map{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if p.Old == "" {
			return Map{}, fmt.Errorf("%w: empty key", ErrInvalidSubstitutionMap)
		}
		if _, dup := m.index[p.Old]; dup {
			return Map{}, fmt.Errorf("%w: duplicate key %q", ErrInvalidSubstitutionMap, p.Old)
		}
		m.index[p.Old] = len(m.pairs)
		m.pairs = append(m.pairs, p)
	}
	return m, nil
}

// Len returns the number of replacements.
func (m Map) Len() int { return len(m.pairs) }

// Lookup returns the replacement registered for old.
func (m Map) Lookup(old string) (string, bool) {
	i, ok := m.index[old]
	if !ok {
		return "", false
	}
	return m.pairs[i].New, true
}

// All iterates the replacements in application order.
func (m Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, p := range m.pairs {
			if !yield(p.Old, p.New) {
				return
			}
		}
	}
}

// Pairs returns a copy of the replacements in application order.
func (m Map) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Merge combines maps left to right. On a key collision the later map's value
// wins but the key keeps the position where it first appeared; keys new to the
// result are appended.
func Merge(maps ...Map) Map {
	out := Map{index: make(map[string]int)}
	for _, m := range maps {
		for _, p := range m.pairs {
			if i, ok := out.index[p.Old]; ok {
				out.pairs[i].New = p.New
				continue
			}
			out.index[p.Old] = len(out.pairs)
			out.pairs = append(out.pairs, p)
		}
	}
	return out
}

// Parse decodes a JSON or YAML object of string keys to string values. Key
// order in the document is kept. A repeated key takes its last value and stays
// at the position where it first appeared. Numbers, booleans and other
// non-string scalars are rejected.
func Parse(data []byte) (Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Map{}, fmt.Errorf("%w: %v", ErrInvalidSubstitutionMap, err)
	}
	if doc.Kind == 0 {
		return New()
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return Map{}, fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidSubstitutionMap, root.Line)
	}

	pairs := make([]Pair, 0, len(root.Content)/2)
	seen := make(map[string]int, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if !isString(k) || !isString(v) {
			return Map{}, fmt.Errorf("%w: line %d: key and value must be strings", ErrInvalidSubstitutionMap, k.Line)
		}
		if j, ok := seen[k.Value]; ok {
			pairs[j].New = v.Value
			continue
		}
		seen[k.Value] = len(pairs)
		pairs = append(pairs, Pair{Old: k.Value, New: v.Value})
	}
	return New(pairs...)
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// Load reads and parses a substitution map file.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("read substitution map %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return Map{}, fmt.Errorf("parse substitution map %s: %w", path, err)
	}
	return m, nil
}

// LoadMerged loads the base map and, when overridePath is set, merges the
// override map on top of it.
func LoadMerged(basePath, overridePath string) (Map, error) {
	base, err := Load(basePath)
	if err != nil {
		return Map{}, err
	}
	if overridePath == "" {
		return base, nil
	}
	override, err := Load(overridePath)
	if err != nil {
		return Map{}, err
	}
	return Merge(base, override), nil
}
