package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrFormatMismatch = errors.New("audio format mismatch")
)

// Format of interleaved 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// frames converts a duration to a whole number of frames
func (f Format) frames(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(f.SampleRate)))
}

// Buffer holds interleaved 16-bit PCM samples.
type Buffer struct {
	Format Format
	Data   []int16
}

// Silence returns d worth of zeroed samples.
func Silence(f Format, d time.Duration) *Buffer {
	return &Buffer{Format: f, Data: make([]int16, f.frames(d)*f.Channels)}
}

// Frames is the number of sample frames (one sample per channel).
func (b *Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Format.Channels
}

func (b *Buffer) Duration() time.Duration {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Format.SampleRate)
}

// Gain returns a copy scaled by db decibels.
func (b *Buffer) Gain(db float64) *Buffer {
	factor := math.Pow(10, db/20)
	out := &Buffer{Format: b.Format, Data: make([]int16, len(b.Data))}
	for i, s := range b.Data {
		out.Data[i] = clamp(float64(s) * factor)
	}
	return out
}

func clamp(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Remix converts between mono and stereo. Mono is the average of both
// channels; stereo duplicates the single channel.
func (b *Buffer) Remix(channels int) (*Buffer, error) {
	from := b.Format.Channels
	if from == channels {
		return b, nil
	}
	out := &Buffer{Format: Format{SampleRate: b.Format.SampleRate, Channels: channels}}
	switch {
	case from == 2 && channels == 1:
		out.Data = make([]int16, len(b.Data)/2)
		for i := range out.Data {
			out.Data[i] = int16((int32(b.Data[2*i]) + int32(b.Data[2*i+1])) / 2)
		}
	case from == 1 && channels == 2:
		out.Data = make([]int16, len(b.Data)*2)
		for i, s := range b.Data {
			out.Data[2*i], out.Data[2*i+1] = s, s
		}
	default:
		return nil, fmt.Errorf("cannot remix %d to %d channels; %w", from, channels, ErrFormatMismatch)
	}
	return out, nil
}
