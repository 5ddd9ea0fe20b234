package audio

import (
	"fmt"
	"time"
)

// Timeline mixes buffers at fixed offsets into one growing track.
// Overlapping material is summed and clipped.
type Timeline struct {
	format Format
	data   []int16
}

func NewTimeline(f Format) *Timeline {
	return &Timeline{format: f}
}

// Place mixes b into the timeline starting at the given frame.
func (t *Timeline) Place(b *Buffer, frame int) error {
	if b.Format != t.format {
		return fmt.Errorf("cannot place %v into %v timeline; %w", b.Format, t.format, ErrFormatMismatch)
	}
	if frame < 0 {
		return fmt.Errorf("negative offset %d", frame)
	}
	start := frame * t.format.Channels
	t.grow(start + len(b.Data))
	for i, s := range b.Data {
		// ADD: sources rarely overlap, so summing keeps both intact
		t.data[start+i] = clamp(float64(t.data[start+i]) + float64(s))
	}
	return nil
}

// PlaceAt is Place with the offset given as time.
func (t *Timeline) PlaceAt(b *Buffer, at time.Duration) error {
	return t.Place(b, t.format.frames(at))
}

// Pad extends the timeline with silence up to the given frame.
func (t *Timeline) Pad(frame int) {
	t.grow(frame * t.format.Channels)
}

func (t *Timeline) grow(samples int) {
	if samples <= len(t.data) {
		return
	}
	t.data = append(t.data, make([]int16, samples-len(t.data))...)
}

// Frames is the current length of the timeline.
func (t *Timeline) Frames() int {
	return len(t.data) / t.format.Channels
}

// Buffer returns the mixed result. The timeline keeps ownership of the data.
func (t *Timeline) Buffer() *Buffer {
	return &Buffer{Format: t.format, Data: t.data}
}
