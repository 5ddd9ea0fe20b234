package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 kHz mono so one frame is one millisecond
var testFormat = Format{SampleRate: 1000, Channels: 1}

func constant(frames int, v int16) *Buffer {
	b := &Buffer{Format: testFormat, Data: make([]int16, frames)}
	for i := range b.Data {
		b.Data[i] = v
	}
	return b
}

func TestSilence(t *testing.T) {
	s := Silence(testFormat, 300*time.Millisecond)
	assert.Equal(t, 300, s.Frames())
	assert.Equal(t, 300*time.Millisecond, s.Duration())

	stereo := Silence(Format{SampleRate: 44100, Channels: 2}, time.Second)
	assert.Len(t, stereo.Data, 88200)
}

func TestGain(t *testing.T) {
	b := constant(4, 1000)
	quieter := b.Gain(-6)
	assert.Equal(t, int16(501), quieter.Data[0])
	assert.Equal(t, int16(1000), b.Data[0], "source untouched")

	louder := constant(1, 30000).Gain(6)
	assert.Equal(t, int16(32767), louder.Data[0])
}

func TestTimelinePlace(t *testing.T) {
	tl := NewTimeline(testFormat)
	require.NoError(t, tl.Place(constant(10, 100), 0))
	require.NoError(t, tl.Place(constant(10, 50), 5))
	require.NoError(t, tl.PlaceAt(constant(1, 32700), 5*time.Millisecond))

	out := tl.Buffer()
	assert.Equal(t, 15, tl.Frames())
	assert.Equal(t, int16(100), out.Data[0])
	assert.Equal(t, int16(32767), out.Data[5])
	assert.Equal(t, int16(150), out.Data[6])
	assert.Equal(t, int16(50), out.Data[14])

	err := tl.Place(&Buffer{Format: Format{SampleRate: 44100, Channels: 2}}, 0)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func testAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		RepeatGap:        200 * time.Millisecond,
		PostGap:          300 * time.Millisecond,
		EndGap:           100 * time.Millisecond,
		MissingNarration: 1500 * time.Millisecond,
	}
}

func TestAssemblerLayout(t *testing.T) {
	a := NewAssembler(testFormat, testAssemblerConfig())
	require.NoError(t, a.Append(Section{Chords: constant(100, 10), Narration: constant(50, 1000)}))

	out := a.Buffer()
	require.Equal(t, 850, out.Frames())
	assert.Equal(t, int16(10), out.Data[0])
	assert.Equal(t, int16(0), out.Data[150])
	assert.Equal(t, int16(10), out.Data[300])
	assert.Equal(t, int16(0), out.Data[450])
	assert.Equal(t, int16(1000), out.Data[700])
	assert.Equal(t, int16(0), out.Data[800])

	require.NoError(t, a.Append(Section{Chords: constant(100, 20), Narration: constant(50, 1000)}))
	assert.Equal(t, int16(20), a.Buffer().Data[850])
	assert.Equal(t, 1700, a.Buffer().Frames())
	assert.Equal(t, 2, a.Sections())
}

func TestAssemblerNarrationGain(t *testing.T) {
	cfg := testAssemblerConfig()
	cfg.NarrationGainDB = -6
	a := NewAssembler(testFormat, cfg)
	require.NoError(t, a.Append(Section{Chords: constant(100, 10), Narration: constant(50, 1000)}))
	assert.Equal(t, int16(501), a.Buffer().Data[700])
}

func TestAssemblerMissingNarration(t *testing.T) {
	a := NewAssembler(testFormat, testAssemblerConfig())
	require.NoError(t, a.Append(Section{Chords: constant(100, 10)}))
	assert.Equal(t, 2300, a.Buffer().Frames())

	assert.Error(t, a.Append(Section{}))
}

func TestWAVRoundTrip(t *testing.T) {
	f := Format{SampleRate: 22050, Channels: 2}
	in := &Buffer{Format: f, Data: []int16{0, 1, -1, 32767, -32768, 1234, -4321, 7}}

	path := filepath.Join(t.TempDir(), "out.wav")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(in, file))
	require.NoError(t, file.Close())

	file, err = os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	out, err := ReadWAV(file)
	require.NoError(t, err)
	assert.Equal(t, f, out.Format)
	assert.Equal(t, in.Data, out.Data)
}

func TestDecodeS16LE(t *testing.T) {
	got := decodeS16LE([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0x7f})
	assert.Equal(t, []int16{1, -1, -32768}, got)
}

func TestRemix(t *testing.T) {
	stereo := &Buffer{Format: Format{SampleRate: 8000, Channels: 2}, Data: []int16{100, 300, -2, -4, 32767, 32767}}

	mono, err := stereo.Remix(1)
	require.NoError(t, err)
	assert.Equal(t, Format{SampleRate: 8000, Channels: 1}, mono.Format)
	assert.Equal(t, []int16{200, -3, 32767}, mono.Data)

	back, err := mono.Remix(2)
	require.NoError(t, err)
	assert.Equal(t, []int16{200, 200, -3, -3, 32767, 32767}, back.Data)

	same, err := stereo.Remix(2)
	require.NoError(t, err)
	assert.Same(t, stereo, same)

	_, err = stereo.Remix(6)
	assert.ErrorIs(t, err, ErrFormatMismatch)
}
