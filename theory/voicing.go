package theory

import "fmt"

// Voicing is a concrete triad: three ascending MIDI pitches.
type Voicing struct {
	Notes     [3]int
	Inversion int // 0 root position, 1 first, 2 second
	Octave    int // octave offset from the base octave
}

var (
	inversions    = []int{0, 1, 2}
	octaveOffsets = []int{0, -1, 1}
)

// NewVoicing realizes degree d of key k at the given inversion and octave.
func NewVoicing(k Key, d Degree, inversion, octave int) Voicing {
	f := d.Formula()
	tonic := k.Tonic() + 12*octave
	n := [3]int{tonic + f[0], tonic + f[1], tonic + f[2]}
	switch inversion {
	case 1:
		n = [3]int{n[1], n[2], n[0] + 12}
	case 2:
		n = [3]int{n[2], n[0] + 12, n[1] + 12}
	}
	return Voicing{Notes: n, Inversion: inversion, Octave: octave}
}

// candidates enumerates every inversion at every octave offset.
func candidates(k Key, d Degree) []Voicing {
	out := make([]Voicing, 0, len(inversions)*len(octaveOffsets))
	for _, o := range octaveOffsets {
		for _, inv := range inversions {
			out = append(out, NewVoicing(k, d, inv, o))
		}
	}
	return out
}

func (v Voicing) Low() int  { return v.Notes[0] }
func (v Voicing) High() int { return v.Notes[2] }

func (v Voicing) sum() int {
	return v.Notes[0] + v.Notes[1] + v.Notes[2]
}

// distance orders candidates: mean-pitch distance first, then total
// voice movement.
func distance(from, to Voicing) (int, int) {
	movement := 0
	for i := range from.Notes {
		movement += abs(to.Notes[i] - from.Notes[i])
	}
	return abs(to.sum() - from.sum()), movement
}

// nearest picks the candidate closest to prev; ties keep the earlier one.
func nearest(prev Voicing, options []Voicing) Voicing {
	best := options[0]
	bestMean, bestMove := distance(prev, best)
	for _, c := range options[1:] {
		mean, move := distance(prev, c)
		if mean < bestMean || (mean == bestMean && move < bestMove) {
			best, bestMean, bestMove = c, mean, move
		}
	}
	return best
}

func (v Voicing) String() string {
	return fmt.Sprintf("%v inv%d oct%+d", v.Notes, v.Inversion, v.Octave)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
