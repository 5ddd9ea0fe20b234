package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"

	"chordear/audio"
	"chordear/midi"
)

// FluidSynth renders through the fluidsynth command line, using a MIDI
// file and a WAV file in a scratch directory.
type FluidSynth struct {
	cmd        []string
	soundFont  string
	format     audio.Format
	workdir    string
}

// NewFluidSynth parses command (e.g. "fluidsynth -ni -g 0.6") into the
// base invocation. Output is rendered at f's sample rate and remixed to its
// channel count. Files are written under workdir.
func NewFluidSynth(command, soundFont string, f audio.Format, workdir string) (*FluidSynth, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse synth command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("synth command empty")
	}
	return &FluidSynth{cmd: args, soundFont: soundFont, format: f, workdir: workdir}, nil
}

// Check fails with ErrEngineUnavailable when the binary or the soundfont
// is missing.
func (f *FluidSynth) Check() error {
	if _, err := exec.LookPath(f.cmd[0]); err != nil {
		return fmt.Errorf("%s not found; %w", f.cmd[0], ErrEngineUnavailable)
	}
	info, err := os.Stat(f.soundFont)
	if err != nil {
		return fmt.Errorf("soundfont %q: %v; %w", f.soundFont, err, ErrEngineUnavailable)
	}
	if info.IsDir() {
		return fmt.Errorf("soundfont %q is a directory; %w", f.soundFont, ErrEngineUnavailable)
	}
	return nil
}

func (f *FluidSynth) Render(ctx context.Context, events []midi.NoteEvent, timing midi.Timing) (*audio.Buffer, error) {
	id := uuid.NewString()
	midiFile := filepath.Join(f.workdir, id+".mid")
	wavFile := filepath.Join(f.workdir, id+".wav")
	defer remove(midiFile)
	defer remove(wavFile)

	if err := writeMIDI(midiFile, events, timing); err != nil {
		return nil, err
	}

	args := append([]string{}, f.cmd[1:]...)
	args = append(args, f.soundFont, midiFile, "-F", wavFile, "-r", strconv.Itoa(f.format.SampleRate))
	run := exec.CommandContext(ctx, f.cmd[0], args...)
	if out, err := run.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("fluidsynth failed: %s; %w", strings.TrimSpace(string(out)), err)
	}

	wav, err := os.Open(wavFile)
	if err != nil {
		return nil, fmt.Errorf("fluidsynth produced no output; %w", err)
	}
	defer wav.Close()

	buf, err := audio.ReadWAV(wav)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered audio; %w", err)
	}
	if buf.Format.SampleRate != f.format.SampleRate {
		return nil, fmt.Errorf("rendered at %v, want %v; %w", buf.Format, f.format, audio.ErrFormatMismatch)
	}
	return buf.Remix(f.format.Channels)
}

func writeMIDI(filename string, events []midi.NoteEvent, timing midi.Timing) error {
	out, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create midi file; %w", err)
	}
	defer out.Close()

	if err := midi.Encode(out, events, timing); err != nil {
		return err
	}
	return out.Close()
}

func remove(filename string) {
	if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("file", filename).Warnln("failed to remove scratch file")
	}
}
