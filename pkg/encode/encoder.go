// Package encode maps categorical labels to dense integer codes.
package encode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLabel is returned when transforming a label not seen by Fit.
	ErrUnknownLabel = errors.New("encode: unknown label")
	// ErrUnknownCode is returned when inverting a code outside 0..Len()-1.
	ErrUnknownCode = errors.New("encode: unknown code")
)

// Encoder is a bijection between label strings and the integers 0..k-1,
// assigned in the order labels were first seen during Fit.
type Encoder struct {
	classes []string
	index   map[string]int
}

// Fit builds an Encoder over values. The same input order always yields the
// same codes; fit before shuffling if codes must be reproducible.
func Fit(values []string) *Encoder {
	e := &Encoder{index: make(map[string]int)}
	for _, v := range values {
		if _, ok := e.index[v]; ok {
			continue
		}
		e.index[v] = len(e.classes)
		e.classes = append(e.classes, v)
	}
	return e
}

// FromClasses rebuilds an Encoder from a class list, e.g. read back from a
// run manifest. Duplicates are rejected.
func FromClasses(classes []string) (*Encoder, error) {
	e := &Encoder{index: make(map[string]int, len(classes))}
	for _, c := range classes {
		if _, ok := e.index[c]; ok {
			return nil, fmt.Errorf("encode: duplicate class %q", c)
		}
		e.index[c] = len(e.classes)
		e.classes = append(e.classes, c)
	}
	return e, nil
}

// Transform returns the code of value.
func (e *Encoder) Transform(value string) (int, error) {
	code, ok := e.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, value)
	}
	return code, nil
}

// TransformAll encodes values, failing on the first unknown label.
func (e *Encoder) TransformAll(values []string) ([]int, error) {
	codes := make([]int, len(values))
	for i, v := range values {
		c, err := e.Transform(v)
		if err != nil {
			return nil, err
		}
		codes[i] = c
	}
	return codes, nil
}

// Inverse returns the label for code.
func (e *Encoder) Inverse(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return e.classes[code], nil
}

// Classes returns the labels indexed by code.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of classes.
func (e *Encoder) Len() int { return len(e.classes) }
