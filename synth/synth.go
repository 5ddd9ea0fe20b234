package synth

import (
	"context"
	"errors"

	"chordear/audio"
	"chordear/midi"
)

var (
	ErrEngineUnavailable = errors.New("rendering engine unavailable")
)

// Renderer turns note events into audio. Identical events and instrument
// settings must produce identical audio.
type Renderer interface {
	Render(ctx context.Context, events []midi.NoteEvent, timing midi.Timing) (*audio.Buffer, error)
}
