package textnorm

import "github.com/hazyhaar/annomi/pkg/subst"

// Pipeline is the processed-text chain for a single utterance: substitutions,
// transcript clean-up, then case folding.
type Pipeline struct {
	Substitutions subst.Map
	Fold          Folder
}

// Normalize runs the full chain on text.
func (p Pipeline) Normalize(text string) string {
	text = CleanUtterance(Replace(text, p.Substitutions))
	if p.Fold != nil {
		text = p.Fold(text)
	}
	return text
}
