package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// FFmpeg is the binary used to decode speech engine output.
var FFmpeg = "ffmpeg"

// DecodeFile converts any ffmpeg-readable file (mp3, aiff, wav) to PCM
// in the requested format.
func DecodeFile(ctx context.Context, filename string, f Format) (*Buffer, error) {
	run := exec.CommandContext(ctx, FFmpeg,
		"-v", "error",
		"-i", filename,
		"-f", "s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-vn",
		"pipe:1")

	ffmpegout, err := run.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("StdoutPipe error: %w", err)
	}
	if err := run.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg; %w", err)
	}

	raw, err := io.ReadAll(bufio.NewReaderSize(ffmpegout, 16384))
	if err != nil {
		_ = run.Wait()
		return nil, fmt.Errorf("failed to read ffmpeg output; %w", err)
	}
	if err := run.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed on %s; %w", filename, err)
	}

	return &Buffer{Format: f, Data: decodeS16LE(raw)}, nil
}

// decodeS16LE reads little-endian samples; a trailing odd byte is dropped
func decodeS16LE(raw []byte) []int16 {
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return out
}
