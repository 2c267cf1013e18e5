package encode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFit_FirstSeenOrder(t *testing.T) {
	e := Fit([]string{"sustain", "change", "sustain", "neutral", "change"})

	if diff := cmp.Diff([]string{"sustain", "change", "neutral"}, e.Classes()); diff != "" {
		t.Errorf("Classes mismatch (-want +got):\n%s", diff)
	}
	if e.Len() != 3 {
		t.Errorf("Len = %d, want 3", e.Len())
	}

	tests := []struct {
		label string
		code  int
	}{
		{"sustain", 0},
		{"change", 1},
		{"neutral", 2},
	}
	for _, tt := range tests {
		got, err := e.Transform(tt.label)
		if err != nil {
			t.Fatalf("Transform(%q): %v", tt.label, err)
		}
		if got != tt.code {
			t.Errorf("Transform(%q) = %d, want %d", tt.label, got, tt.code)
		}
		back, err := e.Inverse(got)
		if err != nil || back != tt.label {
			t.Errorf("Inverse(%d) = %q, %v; want %q", got, back, err, tt.label)
		}
	}
}

func TestTransform_UnknownLabel(t *testing.T) {
	e := Fit([]string{"a"})
	if _, err := e.Transform("b"); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("err = %v, want ErrUnknownLabel", err)
	}
	if _, err := e.TransformAll([]string{"a", "b"}); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("TransformAll err = %v, want ErrUnknownLabel", err)
	}
}

func TestInverse_OutOfRange(t *testing.T) {
	e := Fit([]string{"a", "b"})
	for _, code := range []int{-1, 2, 100} {
		if _, err := e.Inverse(code); !errors.Is(err, ErrUnknownCode) {
			t.Errorf("Inverse(%d) err = %v, want ErrUnknownCode", code, err)
		}
	}
}

func TestTransformAll(t *testing.T) {
	e := Fit([]string{"x", "y"})
	codes, err := e.TransformAll([]string{"y", "y", "x"})
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	if diff := cmp.Diff([]int{1, 1, 0}, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestFromClasses(t *testing.T) {
	e, err := FromClasses([]string{"b", "a"})
	if err != nil {
		t.Fatalf("FromClasses: %v", err)
	}
	if c, _ := e.Transform("a"); c != 1 {
		t.Errorf("Transform(a) = %d, want 1", c)
	}
	if _, err := FromClasses([]string{"a", "a"}); err == nil {
		t.Error("expected error for duplicate class")
	}
}

func TestClasses_ReturnsCopy(t *testing.T) {
	e := Fit([]string{"a"})
	c := e.Classes()
	c[0] = "mutated"
	if got, _ := e.Inverse(0); got != "a" {
		t.Errorf("Inverse(0) = %q after mutating Classes() result", got)
	}
}
