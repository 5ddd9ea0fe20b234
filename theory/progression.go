package theory

import (
	"strings"
)

// Chord is one step of a progression.
type Chord struct {
	Degree  Degree
	Voicing Voicing
}

// Progression is a key plus its chords, the first of which is always I.
type Progression struct {
	Key    Key
	Chords []Chord
}

func (p Progression) Len() int {
	return len(p.Chords)
}

// Degrees returns the degree sequence.
func (p Progression) Degrees() []Degree {
	out := make([]Degree, len(p.Chords))
	for i, c := range p.Chords {
		out[i] = c.Degree
	}
	return out
}

// Range returns the lowest and highest pitch of the progression.
func (p Progression) Range() (low, high int) {
	if len(p.Chords) == 0 {
		return 0, 0
	}
	low, high = p.Chords[0].Voicing.Low(), p.Chords[0].Voicing.High()
	for _, c := range p.Chords[1:] {
		low = min(low, c.Voicing.Low())
		high = max(high, c.Voicing.High())
	}
	return low, high
}

// Span is the pitch range covered by every voicing, in semitones.
func (p Progression) Span() int {
	low, high := p.Range()
	return high - low
}

func (p Progression) String() string {
	labels := make([]string, len(p.Chords))
	for i, c := range p.Chords {
		labels[i] = c.Degree.String()
	}
	return p.Key.String() + ": " + strings.Join(labels, " ")
}
