package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordear/audio"
)

var testFormat = audio.Format{SampleRate: 8000, Channels: 1}

func readWAVFile(_ context.Context, filename string, _ audio.Format) (*audio.Buffer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return audio.ReadWAV(f)
}

// fakeSpeech writes a script that copies a WAV fixture to its first
// argument and logs the text it was asked to speak.
func fakeSpeech(t *testing.T) (command, spoken string) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.wav")
	file, err := os.Create(fixture)
	require.NoError(t, err)
	require.NoError(t, audio.WriteWAV(&audio.Buffer{Format: testFormat, Data: []int16{5, 6, 7}}, file))
	require.NoError(t, file.Close())

	spoken = filepath.Join(dir, "spoken.txt")
	script := filepath.Join(dir, "speak.sh")
	body := fmt.Sprintf("cp %q \"$1\"\nprintf '%%s\\n' \"$2\" >> %q\n", fixture, spoken)
	require.NoError(t, os.WriteFile(script, []byte(body), 0644))
	return "sh " + script + " {output}", spoken
}

func TestCommandNarrate(t *testing.T) {
	command, spoken := fakeSpeech(t)
	c, err := NewCommand(command, "wav", t.TempDir(), testFormat)
	require.NoError(t, err)
	c.decode = readWAVFile

	buf, err := c.Narrate(context.Background(), "one to four to five")
	require.NoError(t, err)
	assert.Equal(t, []int16{5, 6, 7}, buf.Data)

	// second request reuses the file on disk
	_, err = c.Narrate(context.Background(), "one to four to five")
	require.NoError(t, err)

	log, err := os.ReadFile(spoken)
	require.NoError(t, err)
	assert.Equal(t, "one to four to five\n", string(log))
}

func TestCommandFailure(t *testing.T) {
	c, err := NewCommand("sh -c 'exit 3' {output}", ".aiff", t.TempDir(), testFormat)
	require.NoError(t, err)

	_, err = c.Narrate(context.Background(), "one")
	assert.ErrorIs(t, err, ErrNarrationUnavailable)
}

func TestCommandExpand(t *testing.T) {
	c, err := NewCommand("espeak -w {output}", "wav", "out", testFormat)
	require.NoError(t, err)
	assert.Equal(t, ".wav", c.ext)
	assert.Equal(t, []string{"espeak", "-w", "a.wav", "one to five"}, c.expand("a.wav", "one to five"))

	c, err = NewCommand(DefaultCommand, ".aiff", "out", testFormat)
	require.NoError(t, err)
	assert.Equal(t, []string{"say", "-o", "b.aiff", "two"}, c.expand("b.aiff", "two"))

	_, err = NewCommand("say", ".aiff", "out", testFormat)
	assert.Error(t, err)
	_, err = NewCommand("", ".aiff", "out", testFormat)
	assert.Error(t, err)
}

func TestCommandCheck(t *testing.T) {
	c, err := NewCommand("no-such-speech-engine {output}", ".aiff", t.TempDir(), testFormat)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Check(), ErrNarrationUnavailable)
}

type countingNarrator struct {
	calls int
	err   error
}

func (n *countingNarrator) Narrate(_ context.Context, text string) (*audio.Buffer, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	return &audio.Buffer{Format: testFormat, Data: []int16{int16(len(text))}}, nil
}

func TestCached(t *testing.T) {
	next := &countingNarrator{}
	c := NewCached(next, time.Minute)
	defer c.Close()

	a, err := c.Narrate(context.Background(), "one to two")
	require.NoError(t, err)
	b, err := c.Narrate(context.Background(), "one to two")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, next.calls)

	_, err = c.Narrate(context.Background(), "one to three")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSkipsFailures(t *testing.T) {
	next := &countingNarrator{err: unavailable(errors.New("offline"))}
	c := NewCached(next, time.Minute)
	defer c.Close()

	for i := 0; i < 2; i++ {
		_, err := c.Narrate(context.Background(), "one")
		assert.ErrorIs(t, err, ErrNarrationUnavailable)
	}
	assert.Equal(t, 2, next.calls)
}

func TestElevenLabsWithoutKey(t *testing.T) {
	api := NewElevenLabs("", "voice", "", t.TempDir(), testFormat, 1)
	assert.Equal(t, DefaultElevenLabsModel, api.ModelID)

	_, err := api.Narrate(context.Background(), "one to five")
	assert.ErrorIs(t, err, ErrNarrationUnavailable)
}

func TestElevenLabs(t *testing.T) {
	key := os.Getenv("ELEVENLABS_APIKEY")
	if key == "" {
		t.Skip("ELEVENLABS_APIKEY not set")
	}
	api := NewElevenLabs(key, "BreKkXSwy4hr1vgm7ZqX", "", t.TempDir(), testFormat, 1)
	buf, err := api.Narrate(context.Background(), "one to four to five")
	assert.NoError(t, err)
	assert.NotEmpty(t, buf.Data)
}
