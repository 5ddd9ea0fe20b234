package midi

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"chordear/theory"
)

func testProgression() theory.Progression {
	return theory.Progression{
		Key: theory.C,
		Chords: []theory.Chord{
			{Degree: theory.I, Voicing: theory.NewVoicing(theory.C, theory.I, 0, 0)},
			{Degree: theory.IV, Voicing: theory.NewVoicing(theory.C, theory.IV, 2, -1)},
			{Degree: theory.V, Voicing: theory.NewVoicing(theory.C, theory.V, 1, -1)},
		},
	}
}

func TestEvents(t *testing.T) {
	events := Events(testProgression(), DefaultTiming())
	require.Len(t, events, 3)

	assert.Equal(t, []uint8{60, 64, 67}, events[0].Notes)
	assert.Equal(t, uint32(0), events[0].Start)
	assert.Equal(t, uint32(1200), events[1].Start)
	assert.Equal(t, uint32(2400), events[2].Start)
	assert.Equal(t, uint32(3360), Length(events))
}

func TestTimingDuration(t *testing.T) {
	tm := DefaultTiming()
	assert.Equal(t, time.Second, tm.Duration(480))
	assert.Equal(t, 2*time.Second, tm.Duration(960))
	assert.Equal(t, 250*time.Millisecond, tm.Duration(120))
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	events := Events(testProgression(), DefaultTiming())
	require.NoError(t, Encode(&buf, events, DefaultTiming()))

	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, file.Tracks, 1)

	var ch, key, vel uint8
	ons := 0
	var absolute uint32
	var lastOn uint32
	for _, ev := range file.Tracks[0] {
		absolute += ev.Delta
		if gomidi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) && vel > 0 {
			ons++
			lastOn = absolute
		}
	}
	assert.Equal(t, 9, ons)
	assert.Equal(t, uint32(2400), lastOn)
}

func TestEncodeRejectsOverlap(t *testing.T) {
	events := []NoteEvent{
		{Notes: []uint8{60}, Start: 0, Length: 960},
		{Notes: []uint8{62}, Start: 480, Length: 960},
	}
	err := Encode(&bytes.Buffer{}, events, DefaultTiming())
	assert.Error(t, err)
}
