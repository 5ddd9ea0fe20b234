package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chordear/theory"
)

func TestDefaultsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	params, err := cfg.GeneratorParams()
	require.NoError(t, err)
	assert.Len(t, params.Keys, 12)
	assert.Equal(t, theory.DiatonicDegrees(), params.Degrees)
	assert.Equal(t, 3, params.Length)
	assert.Equal(t, 24, params.MaxSpan)

	asm := cfg.AssemblerConfig()
	assert.Equal(t, 2*time.Second, asm.RepeatGap)
	assert.Equal(t, 300*time.Millisecond, asm.PostGap)
	assert.Equal(t, -6.0, asm.NarrationGainDB)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Output, cfg.Output)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
output: drills.wav
generator:
  num_progressions: 5
  min_length: 2
  max_length: 4
  keys: [C, G]
  degrees: [IV, V, vi]
  distinct: true
timing:
  rep_gap_ticks: 480
narrator:
  mode: none
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	t.Setenv("CHORDEAR_SEED", "1234")
	t.Setenv("CHORDEAR_SOUNDFONT", "/opt/sf2/piano.sf2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "drills.wav", cfg.Output)
	assert.Equal(t, 5, cfg.Generator.NumProgressions)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, "/opt/sf2/piano.sf2", cfg.Synth.SoundFont)
	assert.Equal(t, NarratorNone, cfg.Narrator.Mode)
	// untouched keys keep their defaults
	assert.Equal(t, 44100, cfg.Synth.SampleRate)
	assert.Equal(t, time.Second, cfg.AssemblerConfig().RepeatGap)

	params, err := cfg.GeneratorParams()
	require.NoError(t, err)
	assert.Equal(t, []theory.Key{theory.C, theory.G}, params.Keys)
	assert.Equal(t, []theory.Degree{theory.IV, theory.V, theory.VI}, params.Degrees)
	assert.True(t, params.Distinct)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad key":       "generator:\n  keys: [H]\n",
		"empty degrees": "generator:\n  degrees: []\n",
		"length range":  "generator:\n  min_length: 4\n  max_length: 2\n",
		"narrator":      "narrator:\n  mode: shout\n",
		"distinct":      "generator:\n  distinct: true\n  max_length: 5\n  degrees: [IV, V]\n",
		"velocity":      "timing:\n  velocity: 200\n",
		"channels":      "synth:\n  channels: 6\n",
		"yaml":          "generator: [",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestBadSeedEnv(t *testing.T) {
	t.Setenv("CHORDEAR_SEED", "soon")
	_, err := Load("")
	assert.Error(t, err)
}
