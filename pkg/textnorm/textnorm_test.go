package textnorm

import (
	"testing"

	"github.com/hazyhaar/annomi/pkg/subst"
)

func mustMap(t *testing.T, pairs ...subst.Pair) subst.Map {
	t.Helper()
	m, err := subst.New(pairs...)
	if err != nil {
		t.Fatalf("subst.New: %v", err)
	}
	return m
}

func TestReplace_Sequential(t *testing.T) {
	m := mustMap(t, subst.Pair{Old: "ab", New: "x"}, subst.Pair{Old: "x", New: "y"})
	if got := Replace("ab", m); got != "y" {
		t.Errorf("Replace = %q, want %q", got, "y")
	}

	// Reversed order: "x" is replaced before "ab" produces it.
	rev := mustMap(t, subst.Pair{Old: "x", New: "y"}, subst.Pair{Old: "ab", New: "x"})
	if got := Replace("ab", rev); got != "x" {
		t.Errorf("Replace reversed = %q, want %q", got, "x")
	}
}

func TestReplace_Contractions(t *testing.T) {
	m := mustMap(t,
		subst.Pair{Old: "won't", New: "will not"},
		subst.Pair{Old: "n't", New: " not"},
		subst.Pair{Old: "I'm", New: "I am"},
	)
	tests := []struct {
		input, want string
	}{
		{"I won't go", "I will not go"},
		{"I don't know", "I do not know"},
		{"I'm fine", "I am fine"},
		{"", ""},
		{"nothing here", "nothing here"},
	}
	for _, tt := range tests {
		if got := Replace(tt.input, m); got != tt.want {
			t.Errorf("Replace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReplace_NoCaseFolding(t *testing.T) {
	m := mustMap(t, subst.Pair{Old: "im", New: "i am"})
	if got := Replace("IM here", m); got != "IM here" {
		t.Errorf("Replace = %q, want input untouched", got)
	}
}

func TestRemoveUnintelligible(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"leading with prefix", "I said [unintelligible 00:01:02] hello", "hello"},
		{"at start", "[unintelligible 00:00:12] okay so", "okay so"},
		{"trailing", "I think so [unintelligible 00:03:01]", "I think so"},
		{"trailing before punctuation", "maybe [unintelligible 00:03:01].", "maybe."},
		{"leading wins", "a [unintelligible 1] b [unintelligible 2]", "b [unintelligible 2]"},
		{"alone", "[unintelligible 00:01:00]", "[unintelligible 00:01:00]"},
		{"absent", "no marker here", "no marker here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveUnintelligible(tt.input); got != tt.want {
				t.Errorf("RemoveUnintelligible(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"a   b", "a b"},
		{"a b", "a b"},
		{"a\t\t b", "a b"},
		{"a\tb", "a\tb"},
		{"a\u00a0\u00a0b", "a b"},
		{"a\u3000 b", "a b"},
		{"a\v\vb", "a b"},
		{"a\u00a0b", "a\u00a0b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CollapseSpaces(tt.input); got != tt.want {
			t.Errorf("CollapseSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanUtterance(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"I said [unintelligible 00:01:02] hello", "hello"},
		{"  well-being  matters ", "well being matters"},
		{"so - um - yeah", "so um yeah"},
		{"right [unintelligible 00:10:00]", "right"},
		{"a\u00a0\u00a0b", "a b"},
	}
	for _, tt := range tests {
		if got := CleanUtterance(tt.input); got != tt.want {
			t.Errorf("CleanUtterance(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFolders(t *testing.T) {
	tests := []struct {
		mode, input, want string
	}{
		{FoldLower, "HELLO Élodie", "hello élodie"},
		{FoldLowerASCII, "HELLO Élodie", "hello elodie"},
		{FoldNone, "HELLO", "HELLO"},
		{"", "ABC", "abc"},
		{"unknown", "ABC", "abc"},
	}
	for _, tt := range tests {
		if got := GetFolder(tt.mode)(tt.input); got != tt.want {
			t.Errorf("GetFolder(%q)(%q) = %q, want %q", tt.mode, tt.input, got, tt.want)
		}
	}
}

func TestPipeline(t *testing.T) {
	p := Pipeline{
		Substitutions: mustMap(t, subst.Pair{Old: "I'm", New: "I am"}),
		Fold:          Lower,
	}
	got := p.Normalize("Um [unintelligible 00:00:03] I'm  Fine-ish")
	if want := "i am fine ish"; got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}

	raw := Pipeline{}
	if got := raw.Normalize("A  B"); got != "A B" {
		t.Errorf("Normalize without fold = %q, want %q", got, "A B")
	}
}
