package dataset

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/hazyhaar/annomi/pkg/encode"
	"github.com/hazyhaar/annomi/pkg/split"
)

// SplitOptions configures SplitTarget and SplitTargets.
type SplitOptions struct {
	// TestSize is the fraction of every (target, topic) group sent to test.
	TestSize float64
	// Shuffle permutes each group before slicing.
	Shuffle bool
	// Rand drives shuffling; nil means unseeded.
	Rand *rand.Rand
	// Encode replaces the target column with integer codes.
	Encode bool
	// Encoder is used instead of fitting a fresh one. SplitTarget only.
	Encoder *encode.Encoder
	// AsXY removes the target column from Train and Test and returns it in
	// TrainY/TestY. SplitTarget only.
	AsXY bool
	// MultiTopicFallback sends a singleton composite-topic record to train
	// when one of its component topics forms a group of two or more.
	MultiTopicFallback bool
}

// DefaultSplitOptions returns a 0.2 test fraction with shuffling, encoding and
// the multi-topic fallback enabled.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		TestSize:           0.2,
		Shuffle:            true,
		Encode:             true,
		MultiTopicFallback: true,
	}
}

// SplitResult is the outcome of a single-target split.
type SplitResult struct {
	Train *Dataset
	Test  *Dataset
	// TrainY and TestY hold the target column when AsXY is set, encoded as
	// decimal codes when Encode is set.
	TrainY []string
	TestY  []string
	// TrainCodes and TestCodes hold the integer codes when AsXY and Encode
	// are both set.
	TrainCodes []int
	TestCodes  []int
	// Encoder is nil unless Encode is set.
	Encoder *encode.Encoder
	Groups  []split.GroupStat
}

type splitItem struct {
	rec   Record
	label string
	code  int
}

// SplitTarget partitions the dataset into train and test stratified by the
// target column and the topic. The encoder, when needed, is fit over the
// target column in record order before any shuffling.
func (d *Dataset) SplitTarget(target string, opts SplitOptions) (*SplitResult, error) {
	ti, err := d.schema.mustIndex(target)
	if err != nil {
		return nil, err
	}
	if target == d.cfg.topicField || target == d.cfg.textField {
		return nil, fmt.Errorf("%w: %q is the topic or text column", ErrInvalidTarget, target)
	}
	topicIdx := d.topicIndex()

	labels := d.column(ti)
	enc := opts.Encoder
	if opts.Encode && enc == nil {
		enc = encode.Fit(labels)
	}

	items := make([]splitItem, len(d.records))
	for i, r := range d.records {
		items[i] = splitItem{rec: r, label: labels[i]}
		if opts.Encode {
			code, err := enc.Transform(labels[i])
			if err != nil {
				return nil, fmt.Errorf("split %s: %w", target, err)
			}
			items[i].code = code
		}
	}

	res, err := split.Split(items, func(it splitItem) split.Key {
		return split.Key{Target: it.label, Topic: it.rec[topicIdx]}
	}, split.Options{
		TestSize:           opts.TestSize,
		Shuffle:            opts.Shuffle,
		Rand:               opts.Rand,
		MultiTopicFallback: opts.MultiTopicFallback,
		Separator:          d.cfg.topicSep,
	})
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", target, err)
	}

	out := &SplitResult{Groups: res.Groups}
	if opts.Encode {
		out.Encoder = enc
	}

	schema := d.schema
	if opts.AsXY {
		schema = d.schema.without(ti)
	}
	build := func(items []splitItem) (*Dataset, []string, []int) {
		records := make([]Record, len(items))
		var ys []string
		var codes []int
		for j, it := range items {
			value := it.label
			if opts.Encode {
				value = strconv.Itoa(it.code)
			}
			if !opts.AsXY {
				r := it.rec.Clone()
				r[ti] = value
				records[j] = r
				continue
			}
			records[j] = append(it.rec[:ti:ti], it.rec[ti+1:]...)
			ys = append(ys, value)
			if opts.Encode {
				codes = append(codes, it.code)
			}
		}
		return d.derive(schema, records), ys, codes
	}
	out.Train, out.TrainY, out.TrainCodes = build(res.Train)
	out.Test, out.TestY, out.TestCodes = build(res.Test)
	return out, nil
}

// SplitTargets splits the dataset once per target, each stratified on its own
// (target, topic) groups, and concatenates the results. The same record
// appears once per target. With no targets, DefaultTargets are used. Each
// target gets a freshly fit encoder when Encode is set.
func (d *Dataset) SplitTargets(targets []string, opts SplitOptions) (train, test *Dataset, encoders map[string]*encode.Encoder, err error) {
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	opts.Encoder = nil
	opts.AsXY = false

	encoders = make(map[string]*encode.Encoder, len(targets))
	var trains, tests []*Dataset
	for _, t := range targets {
		res, err := d.SplitTarget(t, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		encoders[t] = res.Encoder
		trains = append(trains, res.Train)
		tests = append(tests, res.Test)
		d.cfg.logger.Debug("target split", "target", t, "train", res.Train.Len(), "test", res.Test.Len())
	}

	if train, err = Concat(trains[0], trains[1:]...); err != nil {
		return nil, nil, nil, err
	}
	if test, err = Concat(tests[0], tests[1:]...); err != nil {
		return nil, nil, nil, err
	}
	return train, test, encoders, nil
}
