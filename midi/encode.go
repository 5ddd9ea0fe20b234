package midi

import (
	"fmt"
	"io"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const channel uint8 = 0

// Encode writes the events as a single track Standard MIDI File.
// Events must not overlap.
func Encode(w io.Writer, events []NoteEvent, t Timing) error {
	sorted := append([]NoteEvent(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var track smf.Track
	track.Add(0, smf.MetaTempo(t.BPM))

	var cursor uint32
	for _, e := range sorted {
		if e.Start < cursor {
			return fmt.Errorf("event at tick %d overlaps previous ending at %d", e.Start, cursor)
		}
		if len(e.Notes) == 0 {
			continue
		}

		delta := e.Start - cursor
		for _, n := range e.Notes {
			track.Add(delta, gomidi.NoteOn(channel, n, t.Velocity))
			delta = 0
		}
		delta = e.Length
		for _, n := range e.Notes {
			track.Add(delta, gomidi.NoteOff(channel, n))
			delta = 0
		}
		cursor = e.End()
	}
	track.Close(0)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(t.TicksPerBeat)
	if err := file.Add(track); err != nil {
		return fmt.Errorf("failed to add track; %w", err)
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi; %w", err)
	}
	return nil
}
