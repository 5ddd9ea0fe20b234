package audio

import (
	"errors"
	"io"
	"time"
)

// AssemblerConfig sets the fixed gaps of every exercise section.
type AssemblerConfig struct {
	RepeatGap        time.Duration // between the two playbacks of a progression
	PostGap          time.Duration // before the narration
	EndGap           time.Duration // after the narration
	MissingNarration time.Duration // silence used when narration is unavailable
	NarrationGainDB  float64
}

// Section is one exercise: the rendered progression and its spoken answer.
// Narration may be nil.
type Section struct {
	Chords    *Buffer
	Narration *Buffer
}

// Assembler lays sections end to end:
//
//	chords | repeat gap | chords | post gap | narration | end gap
type Assembler struct {
	cfg      AssemblerConfig
	timeline *Timeline
	cursor   int // frame where the next section starts
	sections int
}

func NewAssembler(f Format, cfg AssemblerConfig) *Assembler {
	return &Assembler{cfg: cfg, timeline: NewTimeline(f)}
}

// Append adds a section after everything placed so far.
func (a *Assembler) Append(s Section) error {
	if s.Chords == nil {
		return errors.New("section has no chord audio")
	}
	f := a.timeline.format
	cursor := a.cursor

	for play := 0; play < 2; play++ {
		if play > 0 {
			cursor += f.frames(a.cfg.RepeatGap)
		}
		if err := a.timeline.Place(s.Chords, cursor); err != nil {
			return err
		}
		cursor += s.Chords.Frames()
	}
	cursor += f.frames(a.cfg.PostGap)

	if s.Narration != nil {
		narration := s.Narration.Gain(a.cfg.NarrationGainDB)
		if err := a.timeline.Place(narration, cursor); err != nil {
			return err
		}
		cursor += narration.Frames()
	} else {
		cursor += f.frames(a.cfg.MissingNarration)
	}
	cursor += f.frames(a.cfg.EndGap)

	a.timeline.Pad(cursor)
	a.cursor = cursor
	a.sections++
	return nil
}

// Sections counts appended sections.
func (a *Assembler) Sections() int {
	return a.sections
}

func (a *Assembler) Buffer() *Buffer {
	return a.timeline.Buffer()
}

func (a *Assembler) WriteWAV(output io.WriteSeeker) error {
	return WriteWAV(a.Buffer(), output)
}
