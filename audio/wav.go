package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// WriteWAV encodes the buffer as a 16-bit PCM WAV file.
func WriteWAV(b *Buffer, output io.WriteSeeker) error {
	format := &goaudio.Format{SampleRate: b.Format.SampleRate, NumChannels: b.Format.Channels}
	e := wav.NewEncoder(output, format.SampleRate, bitDepth, format.NumChannels, 1) // 1 is PCM

	intBuffer := &goaudio.IntBuffer{
		Format:         format,
		Data:           convertToIntSlice(b.Data),
		SourceBitDepth: bitDepth,
	}
	if err := e.Write(intBuffer); err != nil {
		return fmt.Errorf("failed to write wav samples; %w", err)
	}
	return e.Close()
}

// ReadWAV decodes a PCM WAV file, scaling samples to 16 bits.
func ReadWAV(input io.ReadSeeker) (*Buffer, error) {
	d := wav.NewDecoder(input)
	if !d.IsValidFile() {
		return nil, errors.New("not a valid wav file")
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav; %w", err)
	}

	depth := int(d.BitDepth)
	if depth < bitDepth {
		return nil, fmt.Errorf("unsupported wav bit depth %d", depth)
	}
	shift := depth - bitDepth

	out := &Buffer{
		Format: Format{SampleRate: pcm.Format.SampleRate, Channels: pcm.Format.NumChannels},
		Data:   make([]int16, len(pcm.Data)),
	}
	for i, v := range pcm.Data {
		out.Data[i] = int16(v >> shift)
	}
	return out, nil
}

// Convert []int16 to []int for IntBuffer
func convertToIntSlice(data []int16) []int {
	result := make([]int, len(data))
	for i, v := range data {
		result[i] = int(v)
	}
	return result
}
