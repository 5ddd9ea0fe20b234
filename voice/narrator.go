package voice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"chordear/audio"
)

var (
	ErrNarrationUnavailable = errors.New("narration unavailable")
)

// Narrator speaks text and returns the audio in the session format.
type Narrator interface {
	Narrate(ctx context.Context, text string) (*audio.Buffer, error)
}

// decodeFunc turns an engine output file into PCM.
type decodeFunc func(ctx context.Context, filename string, f audio.Format) (*audio.Buffer, error)

// unavailable marks err as a narration failure
func unavailable(err error) error {
	return fmt.Errorf("%w; %w", err, ErrNarrationUnavailable)
}

// --- utilities for this package

func hashString(input string) string {
	hash := sha256.New()
	hash.Write([]byte(input))
	return hex.EncodeToString(hash.Sum(nil))
}
