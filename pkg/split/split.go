// Package split partitions records into train and test sets stratified by
// (target label, topic) groups.
//
// Groups are visited in sorted key order and each group is sliced on its own,
// so a pinned random source reproduces the same partition. A group with a
// single record cannot feed both sides; when its topic is a composite such as
// "A|B" and one of the component topics is well represented for the same
// target, the record is sent to train instead of failing the split.
package split

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

// DefaultSeparator joins the component topics of a multi-topic label.
const DefaultSeparator = "|"

var (
	// ErrInsufficientStratumSize is the sentinel behind InsufficientStratumSizeError.
	ErrInsufficientStratumSize = errors.New("split: insufficient stratum size")
	// ErrInvalidTestSize is returned when the test fraction is outside (0, 1).
	ErrInvalidTestSize = errors.New("split: test size must be in (0, 1)")
)

// Key identifies a stratum.
type Key struct {
	Target string `json:"target" yaml:"target"`
	Topic  string `json:"topic" yaml:"topic"`
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.Target, k.Topic)
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Target, b.Target); c != 0 {
		return c
	}
	return cmp.Compare(a.Topic, b.Topic)
}

// InsufficientStratumSizeError reports a group too small to split with no
// applicable multi-topic fallback.
type InsufficientStratumSizeError struct {
	Key  Key
	Size int
}

func (e *InsufficientStratumSizeError) Error() string {
	return fmt.Sprintf("split: stratum (target=%q, topic=%q) has %d record(s), not enough to split",
		e.Key.Target, e.Key.Topic, e.Size)
}

func (e *InsufficientStratumSizeError) Unwrap() error { return ErrInsufficientStratumSize }

// Options configures Split.
type Options struct {
	// TestSize is the fraction of each group sent to test, in (0, 1).
	TestSize float64
	// Shuffle permutes each group before slicing.
	Shuffle bool
	// Rand drives the shuffle. Nil means an unseeded source.
	Rand *rand.Rand
	// MultiTopicFallback rescues singleton composite-topic groups.
	MultiTopicFallback bool
	// Separator splits composite topics. Empty means DefaultSeparator.
	Separator string
}

// DefaultOptions returns a 0.2 test fraction with shuffling and the
// multi-topic fallback enabled.
func DefaultOptions() Options {
	return Options{
		TestSize:           0.2,
		Shuffle:            true,
		MultiTopicFallback: true,
		Separator:          DefaultSeparator,
	}
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GroupStat describes how one stratum was partitioned.
type GroupStat struct {
	Key     Key  `json:"key" yaml:"key"`
	Size    int  `json:"size" yaml:"size"`
	Train   int  `json:"train" yaml:"train"`
	Test    int  `json:"test" yaml:"test"`
	Covered bool `json:"covered,omitempty" yaml:"covered,omitempty"`
}

// Result holds the partition. Train and Test are concatenated group slices in
// group order.
type Result[T any] struct {
	Train  []T
	Test   []T
	Groups []GroupStat
}

// TrainSize returns how many of n records go to train: n*(1-testSize) rounded
// half to even, clamped to [1, n-1]. n must be at least 2.
func TrainSize(n int, testSize float64) int {
	nTrain := int(math.RoundToEven(float64(n) * (1 - testSize)))
	return max(1, min(n-1, nTrain))
}

// Split partitions items by the (target, topic) key returned by key.
func Split[T any](items []T, key func(T) Key, opts Options) (*Result[T], error) {
	if !(opts.TestSize > 0 && opts.TestSize < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTestSize, opts.TestSize)
	}
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	rng := opts.Rand
	if opts.Shuffle && rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	groups := make(map[Key][]T)
	for _, it := range items {
		k := key(it)
		groups[k] = append(groups[k], it)
	}
	keys := slices.SortedFunc(maps.Keys(groups), compareKeys)

	res := &Result[T]{
		Train:  make([]T, 0, len(items)),
		Test:   make([]T, 0, len(items)),
		Groups: make([]GroupStat, 0, len(keys)),
	}
	for _, k := range keys {
		g := groups[k]
		if opts.Shuffle {
			rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		}

		n := len(g)
		if n < 2 {
			if opts.MultiTopicFallback && coveredBySubtopic(k, groups, sep) {
				res.Train = append(res.Train, g...)
				res.Groups = append(res.Groups, GroupStat{Key: k, Size: n, Train: n, Covered: true})
				continue
			}
			return nil, &InsufficientStratumSizeError{Key: k, Size: n}
		}

		nTrain := TrainSize(n, opts.TestSize)
		res.Train = append(res.Train, g[:nTrain]...)
		res.Test = append(res.Test, g[nTrain:]...)
		res.Groups = append(res.Groups, GroupStat{Key: k, Size: n, Train: nTrain, Test: n - nTrain})
	}
	return res, nil
}

// coveredBySubtopic reports whether a composite topic has a component that
// forms a splittable group with the same target.
func coveredBySubtopic[T any](k Key, groups map[Key][]T, sep string) bool {
	if !strings.Contains(k.Topic, sep) {
		return false
	}
	for _, sub := range strings.Split(k.Topic, sep) {
		if len(groups[Key{Target: k.Target, Topic: sub}]) >= 2 {
			return true
		}
	}
	return false
}
