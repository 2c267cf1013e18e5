// Package topic canonicalizes topic labels: whitespace variants are merged and
// topics (including separator-joined composites) are remapped through an
// old->new table.
package topic

import (
	"cmp"
	"slices"
	"strings"
)

// CleanMap builds the raw->canonical map for values. It reports false, with a
// nil map, when stripping surrounding whitespace would not merge any values.
//
// The map is derived from a frequency heuristic: every distinct raw value and
// every distinct stripped value is counted once, values seen exactly once are
// mapped to their stripped form and stripped values map to themselves. Two
// labels that differ only in surrounding whitespace and were meant to be
// distinct are merged; the heuristic cannot tell them apart.
func CleanMap(values []string) (map[string]string, bool) {
	raw := unique(values)
	stripped := make([]string, len(values))
	for i, v := range values {
		stripped[i] = strings.TrimSpace(v)
	}
	stripped = unique(stripped)

	if len(stripped) == len(raw) {
		return nil, false
	}

	counts := make(map[string]int, len(raw)+len(stripped))
	for _, v := range stripped {
		counts[v]++
	}
	for _, v := range raw {
		counts[v]++
	}

	m := make(map[string]string, len(counts))
	for v, c := range counts {
		if c == 1 {
			m[v] = strings.TrimSpace(v)
		}
	}
	for _, v := range stripped {
		m[v] = v
	}
	return m, true
}

// Clean returns values with whitespace variants merged, and whether anything
// was rewritten. The input is not modified.
func Clean(values []string) ([]string, bool) {
	m, dirty := CleanMap(values)
	out := slices.Clone(values)
	if !dirty {
		return out, false
	}
	for i, v := range out {
		if c, ok := m[v]; ok {
			out[i] = c
		}
	}
	return out, true
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Count is the number of records carrying a topic.
type Count struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"count" yaml:"count"`
}

// Distribution counts values, most frequent first, ties by topic name.
func Distribution(values []string) []Count {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	out := make([]Count, 0, len(counts))
	for t, c := range counts {
		out = append(out, Count{Topic: t, Count: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Topic, b.Topic)
	})
	return out
}
