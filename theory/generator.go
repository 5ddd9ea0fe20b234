package theory

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration    = errors.New("invalid configuration")
	ErrUnsatisfiableConstraint = errors.New("span constraint cannot be met")
)

// DefaultMaxAttempts bounds how often a progression is resampled before
// falling back to root position voicings.
const DefaultMaxAttempts = 100

// Rand is the random source used for generation. *rand.Rand satisfies it;
// each caller should own its own instance.
type Rand interface {
	Intn(n int) int
}

// Params configures Generate.
type Params struct {
	Length      int
	Keys        []Key
	Degrees     []Degree // pool for every chord after the first
	MaxSpan     int      // semitones
	MaxAttempts int      // DefaultMaxAttempts when zero

	// Distinct draws the non-initial degrees without replacement.
	Distinct bool
}

// Validate reports ErrInvalidConfiguration for malformed parameters.
func (p Params) Validate() error {
	if p.Length < 1 {
		return fmt.Errorf("length %d must be at least 1; %w", p.Length, ErrInvalidConfiguration)
	}
	if len(p.Keys) == 0 {
		return fmt.Errorf("empty key pool; %w", ErrInvalidConfiguration)
	}
	if len(p.Degrees) == 0 {
		return fmt.Errorf("empty degree pool; %w", ErrInvalidConfiguration)
	}
	if p.MaxSpan < 1 {
		return fmt.Errorf("max span %d must be positive; %w", p.MaxSpan, ErrInvalidConfiguration)
	}
	for _, k := range p.Keys {
		if !k.Valid() {
			return fmt.Errorf("key %v out of range; %w", k, ErrInvalidConfiguration)
		}
	}
	for _, d := range p.Degrees {
		if !d.Valid() {
			return fmt.Errorf("degree %v out of range; %w", d, ErrInvalidConfiguration)
		}
	}
	if p.Distinct && len(p.Degrees) < p.Length-1 {
		return fmt.Errorf("%d distinct degrees needed, pool has %d; %w", p.Length-1, len(p.Degrees), ErrInvalidConfiguration)
	}
	return nil
}

// Generate builds one random progression that starts on the tonic and whose
// voicings stay inside p.MaxSpan semitones.
//
// Each chord after the first takes the inversion and octave nearest to the
// previous chord. A progression that overflows the span is resampled; once
// the attempt budget is spent, the chords that push the window over the
// bound are forced to root position in the base octave. If even that does
// not fit, ErrUnsatisfiableConstraint is returned.
func Generate(rng Rand, p Params) (Progression, error) {
	if err := p.Validate(); err != nil {
		return Progression{}, err
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var last Progression
	for i := 0; i < attempts; i++ {
		last = voice(sample(rng, p))
		if last.Span() <= p.MaxSpan {
			return last, nil
		}
	}

	repaired := repair(last, p.MaxSpan)
	if span := repaired.Span(); span > p.MaxSpan {
		return Progression{}, fmt.Errorf("span %d exceeds %d after %d attempts; %w",
			span, p.MaxSpan, attempts, ErrUnsatisfiableConstraint)
	}
	return repaired, nil
}

// sample picks the key and degree sequence. Voicings are left empty.
func sample(rng Rand, p Params) Progression {
	prog := Progression{
		Key:    p.Keys[rng.Intn(len(p.Keys))],
		Chords: make([]Chord, p.Length),
	}
	prog.Chords[0].Degree = I

	if p.Distinct {
		pool := append([]Degree(nil), p.Degrees...)
		for i := 1; i < p.Length; i++ {
			j := rng.Intn(len(pool))
			prog.Chords[i].Degree = pool[j]
			pool[j] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		}
		return prog
	}

	for i := 1; i < p.Length; i++ {
		prog.Chords[i].Degree = p.Degrees[rng.Intn(len(p.Degrees))]
	}
	return prog
}

// voice assigns voicings greedily along the progression.
func voice(prog Progression) Progression {
	prog.Chords[0].Voicing = NewVoicing(prog.Key, prog.Chords[0].Degree, 0, 0)
	for i := 1; i < len(prog.Chords); i++ {
		prev := prog.Chords[i-1].Voicing
		prog.Chords[i].Voicing = nearest(prev, candidates(prog.Key, prog.Chords[i].Degree))
	}
	return prog
}

// repair walks the progression with a running window and resets any chord
// that would widen it past maxSpan to root position, base octave.
func repair(prog Progression, maxSpan int) Progression {
	chords := append([]Chord(nil), prog.Chords...)
	low, high := chords[0].Voicing.Low(), chords[0].Voicing.High()
	for i := 1; i < len(chords); i++ {
		v := chords[i].Voicing
		if max(high, v.High())-min(low, v.Low()) > maxSpan {
			v = NewVoicing(prog.Key, chords[i].Degree, 0, 0)
			chords[i].Voicing = v
		}
		low = min(low, v.Low())
		high = max(high, v.High())
	}
	return Progression{Key: prog.Key, Chords: chords}
}
