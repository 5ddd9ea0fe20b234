package midi

import (
	"time"

	"chordear/theory"
)

// Timing describes the grid chords are laid out on.
type Timing struct {
	TicksPerBeat uint16
	BPM          float64
	ChordTicks   uint32 // how long each chord is held
	GapTicks     uint32 // silence between chords
	Velocity     uint8
}

// DefaultTiming: 60 bpm at 480 ticks per beat, so 960 ticks is two seconds.
func DefaultTiming() Timing {
	return Timing{
		TicksPerBeat: 480,
		BPM:          60,
		ChordTicks:   960,
		GapTicks:     240,
		Velocity:     100,
	}
}

// Duration converts ticks to wall time.
func (t Timing) Duration(ticks uint32) time.Duration {
	beats := float64(ticks) / float64(t.TicksPerBeat)
	return time.Duration(beats * 60 / t.BPM * float64(time.Second))
}

// NoteEvent is a chord sounding from Start for Length ticks.
type NoteEvent struct {
	Notes  []uint8
	Start  uint32
	Length uint32
}

func (e NoteEvent) End() uint32 {
	return e.Start + e.Length
}

// Events lays the progression out as one event per chord.
func Events(p theory.Progression, t Timing) []NoteEvent {
	events := make([]NoteEvent, 0, len(p.Chords))
	var cursor uint32
	for i, c := range p.Chords {
		if i > 0 {
			cursor += t.GapTicks
		}
		notes := make([]uint8, len(c.Voicing.Notes))
		for j, n := range c.Voicing.Notes {
			notes[j] = uint8(n)
		}
		events = append(events, NoteEvent{Notes: notes, Start: cursor, Length: t.ChordTicks})
		cursor += t.ChordTicks
	}
	return events
}

// Length is the tick at which the last event ends.
func Length(events []NoteEvent) uint32 {
	var end uint32
	for _, e := range events {
		end = max(end, e.End())
	}
	return end
}
