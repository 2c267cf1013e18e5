// CLAUDE:SUMMARY Transcript clean-up: hyphen removal, [unintelligible ...] marker stripping, whitespace collapsing.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	// Marker followed by more speech: drop everything up to and including the
	// marker and the spaces after it.
	leadingMarker = regexp.MustCompile(`^.*?\[unintelligible[^\]]*\] +`)
	// Marker preceded by speech: drop the spaces before it and the marker.
	trailingMarker = regexp.MustCompile(` +\[unintelligible[^\]]*\]`)
	// Any Unicode whitespace, including no-break and ideographic spaces.
	multiSpace = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]{2,}`)
)

// StripHyphens turns hyphens into spaces and trims the result.
func StripHyphens(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "-", " "))
}

// RemoveUnintelligible removes an "[unintelligible HH:MM:SS]" annotation. The
// leading form is tried first; the trailing form only when it does not match.
func RemoveUnintelligible(s string) string {
	if leadingMarker.MatchString(s) {
		return leadingMarker.ReplaceAllString(s, "")
	}
	if trailingMarker.MatchString(s) {
		return trailingMarker.ReplaceAllString(s, "")
	}
	return s
}

// CollapseSpaces replaces every run of two or more whitespace characters with
// a single space.
func CollapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}

// CleanUtterance runs StripHyphens, RemoveUnintelligible and CollapseSpaces in
// that order.
func CleanUtterance(s string) string {
	return CollapseSpaces(RemoveUnintelligible(StripHyphens(s)))
}
