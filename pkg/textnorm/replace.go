// Package textnorm rewrites utterance text: ordered literal substitutions,
// transcription clean-up, and case folding.
package textnorm

import (
	"strings"

	"github.com/hazyhaar/annomi/pkg/subst"
)

// Replace applies every replacement of m to text in m's order. Each step works
// on the output of the previous one, so a replacement can feed a later key.
func Replace(text string, m subst.Map) string {
	for old, repl := range m.All() {
		text = strings.ReplaceAll(text, old, repl)
	}
	return text
}
