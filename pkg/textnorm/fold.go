// CLAUDE:SUMMARY Case folding strategies (lower, lower+strip-accents, none) selected by config mode.
package textnorm

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folder transforms the case of an utterance.
type Folder func(string) string

// Fold modes accepted by GetFolder.
const (
	FoldLower      = "lower"
	FoldLowerASCII = "lower_ascii"
	FoldNone       = "none"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Lower lower-cases s with Unicode rules.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// LowerASCII lower-cases and strips accents (e.g. "Café" -> "cafe").
func LowerASCII(s string) string {
	result, _, _ := transform.String(stripAccents, Lower(s))
	return result
}

// None returns s unchanged.
func None(s string) string {
	return s
}

// GetFolder returns the folder for mode. Default is lower.
func GetFolder(mode string) Folder {
	switch mode {
	case FoldLowerASCII:
		return LowerASCII
	case FoldNone:
		return None
	default:
		return Lower
	}
}
