// CLAUDE:SUMMARY Topic cleaning/remapping and utterance text pipelines (unprocessed and processed datasets).
package dataset

import (
	"github.com/hazyhaar/annomi/pkg/subst"
	"github.com/hazyhaar/annomi/pkg/textnorm"
	"github.com/hazyhaar/annomi/pkg/topic"
)

// CleanTopics merges whitespace variants of the same topic (e.g. "smoking
// cessation" and "smoking cessation "). The result is marked as cleaned even
// when nothing changed.
func (d *Dataset) CleanTopics() *Dataset {
	ti := d.topicIndex()
	m, dirty := topic.CleanMap(d.column(ti))

	var out *Dataset
	if dirty {
		out = d.mapColumn(ti, func(v string) string {
			if c, ok := m[v]; ok {
				return c
			}
			return v
		})
	} else {
		out = d.derive(d.schema, d.records)
	}
	out.cleaned = true
	d.cfg.logger.Debug("topics cleaned", "rewritten", dirty)
	return out
}

// RemapTopics maps every topic through the topic mapping table, resolving
// composite topics component by component. Records whose topic cannot be
// resolved are dropped and counted in Dropped and Unresolved.
//
// CleanTopics should run first; if it has not, a warning is logged and the
// raw topic values are remapped as they are.
func (d *Dataset) RemapTopics() (*Dataset, error) {
	if !d.cleaned {
		d.cfg.logger.Warn("remapping topics before CleanTopics, using raw topic values")
	}
	tbl, err := d.topics.get()
	if err != nil {
		return nil, err
	}

	ti := d.topicIndex()
	kept := make([]Record, 0, len(d.records))
	unresolved := make(map[string]int)
	for _, r := range d.records {
		mapped, ok := tbl.Resolve(r[ti], d.cfg.topicSep)
		if !ok {
			unresolved[r[ti]]++
			continue
		}
		c := r.Clone()
		c[ti] = mapped
		kept = append(kept, c)
	}

	out := d.derive(d.schema, kept)
	dropped := len(d.records) - len(kept)
	if dropped > 0 {
		out.dropped = d.dropped + dropped
		out.unresolved = make(map[string]int, len(d.unresolved)+len(unresolved))
		for t, n := range d.unresolved {
			out.unresolved[t] += n
		}
		for t, n := range unresolved {
			out.unresolved[t] += n
		}
		d.cfg.logger.Info("dropped records with unresolved topics",
			"dropped", dropped, "topics", len(unresolved), "kept", len(kept))
	}
	return out, nil
}

// Substitutions returns the configured substitution map, or the process-wide
// default when none was configured.
func (d *Dataset) Substitutions() (subst.Map, error) {
	if d.cfg.substitutions != nil {
		return *d.cfg.substitutions, nil
	}
	return subst.Default()
}

// ReplaceSubstrings applies m to the utterance text of every record.
func (d *Dataset) ReplaceSubstrings(m subst.Map) *Dataset {
	return d.mapColumn(d.textIndex(), func(v string) string {
		return textnorm.Replace(v, m)
	})
}

// ReplaceAbbreviations expands contractions in the utterance text using the
// configured map, or the combined default contraction map.
func (d *Dataset) ReplaceAbbreviations() (*Dataset, error) {
	m, err := d.Substitutions()
	if err != nil {
		return nil, err
	}
	return d.ReplaceSubstrings(m), nil
}

// CleanUtteranceText strips hyphens, unintelligible markers and repeated
// whitespace from the utterance text.
func (d *Dataset) CleanUtteranceText() *Dataset {
	return d.mapColumn(d.textIndex(), textnorm.CleanUtterance)
}

// Lowercase case-folds the utterance text.
func (d *Dataset) Lowercase() *Dataset {
	return d.mapColumn(d.textIndex(), d.cfg.fold)
}

// Unprocessed cleans and remaps topics, leaving the text as it is.
func (d *Dataset) Unprocessed() (*Dataset, error) {
	return d.CleanTopics().RemapTopics()
}

// Processed runs Unprocessed, then expands contractions, cleans the utterance
// text and case-folds it.
func (d *Dataset) Processed() (*Dataset, error) {
	out, err := d.Unprocessed()
	if err != nil {
		return nil, err
	}
	out, err = out.ReplaceAbbreviations()
	if err != nil {
		return nil, err
	}
	return out.CleanUtteranceText().Lowercase(), nil
}

// TextPipeline returns the processed-text chain applied by Processed, for
// normalizing single utterances outside a dataset.
func (d *Dataset) TextPipeline() (textnorm.Pipeline, error) {
	m, err := d.Substitutions()
	if err != nil {
		return textnorm.Pipeline{}, err
	}
	return textnorm.Pipeline{Substitutions: m, Fold: d.cfg.fold}, nil
}
