package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"chordear/audio"
	"chordear/midi"
	"chordear/synth"
	"chordear/theory"
	"chordear/voice"
)

// Exercise is one generated and rendered progression.
type Exercise struct {
	Number      int
	Progression theory.Progression
	Narration   string
	Spoken      bool // false when narration was replaced by silence
}

// Session renders a batch of exercises into one assembler.
type Session struct {
	Params    theory.Params // Length is replaced per progression
	MinLength int
	MaxLength int
	Timing    midi.Timing

	Rand      theory.Rand
	Renderer  synth.Renderer
	Narrator  voice.Narrator // nil disables narration
	Assembler *audio.Assembler
}

// Run generates and renders count exercises in order. Progressions whose
// span cannot be satisfied are skipped; renderer failures abort the run.
func (s *Session) Run(ctx context.Context, count int) ([]Exercise, error) {
	exercises := make([]Exercise, 0, count)
	for i := 1; i <= count; i++ {
		prog, err := s.generate()
		if errors.Is(err, theory.ErrUnsatisfiableConstraint) {
			logrus.WithError(err).WithField("exercise", i).Warnln("skipping progression")
			continue
		}
		if err != nil {
			return exercises, err
		}

		ex, err := s.render(ctx, len(exercises)+1, prog)
		if err != nil {
			return exercises, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func (s *Session) generate() (theory.Progression, error) {
	params := s.Params
	params.Length = s.MinLength
	if s.MaxLength > s.MinLength {
		params.Length += s.Rand.Intn(s.MaxLength - s.MinLength + 1)
	}
	return theory.Generate(s.Rand, params)
}

// render produces chord audio and narration concurrently, then appends
// the section.
func (s *Session) render(ctx context.Context, number int, prog theory.Progression) (Exercise, error) {
	ex := Exercise{Number: number, Progression: prog, Narration: theory.Narration(prog)}
	logrus.WithFields(logrus.Fields{
		"exercise": number,
		"key":      prog.Key.String(),
		"span":     prog.Span(),
	}).Infoln("progression in key " + prog.Key.String() + ": " + ex.Narration)

	var chords, narration *audio.Buffer
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		buf, err := s.Renderer.Render(gctx, midi.Events(prog, s.Timing), s.Timing)
		if err != nil {
			return fmt.Errorf("failed to render exercise %d; %w", number, err)
		}
		chords = buf
		return nil
	})

	if s.Narrator != nil {
		group.Go(func() error {
			buf, err := s.Narrator.Narrate(gctx, ex.Narration)
			if err != nil {
				// never fatal; the section gets silence instead
				logrus.WithError(err).WithField("text", ex.Narration).Warnln("narration failed")
				return nil
			}
			narration = buf
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return ex, err
	}

	ex.Spoken = narration != nil
	if err := s.Assembler.Append(audio.Section{Chords: chords, Narration: narration}); err != nil {
		return ex, fmt.Errorf("failed to assemble exercise %d; %w", number, err)
	}
	return ex, nil
}
