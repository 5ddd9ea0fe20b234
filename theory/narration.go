package theory

import "strings"

// Narration is the spoken answer for a progression, e.g. "one to four to five".
func Narration(p Progression) string {
	words := make([]string, len(p.Chords))
	for i, c := range p.Chords {
		words[i] = c.Degree.Word()
	}
	return strings.Join(words, " to ")
}
