package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"chordear/audio"
	"chordear/midi"
	"chordear/theory"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Seed      int64           `yaml:"seed"` // 0 picks one from the clock
	Output    string          `yaml:"output"`
	WorkDir   string          `yaml:"work_dir"` // scratch files; empty uses a temp dir
	Generator GeneratorConfig `yaml:"generator"`
	Timing    TimingConfig    `yaml:"timing"`
	Assembly  AssemblyConfig  `yaml:"assembly"`
	Synth     SynthConfig     `yaml:"synth"`
	Narrator  NarratorConfig  `yaml:"narrator"`
	Answers   AnswersConfig   `yaml:"answers"`
	Upload    UploadConfig    `yaml:"upload"`
}

type GeneratorConfig struct {
	NumProgressions int      `yaml:"num_progressions"`
	MinLength       int      `yaml:"min_length"`
	MaxLength       int      `yaml:"max_length"`
	MaxSpan         int      `yaml:"max_span"`
	MaxAttempts     int      `yaml:"max_attempts"`
	Distinct        bool     `yaml:"distinct"`
	Keys            []string `yaml:"keys"`
	Degrees         []string `yaml:"degrees"`
}

type TimingConfig struct {
	TicksPerBeat int     `yaml:"ticks_per_beat"`
	BPM          float64 `yaml:"bpm"`
	ChordTicks   int     `yaml:"chord_ticks"`
	GapTicks     int     `yaml:"gap_ticks"`
	RepGapTicks  int     `yaml:"rep_gap_ticks"`
	Velocity     int     `yaml:"velocity"`
}

type AssemblyConfig struct {
	PostGapMS          int     `yaml:"post_gap_ms"`
	EndGapMS           int     `yaml:"end_gap_ms"`
	MissingNarrationMS int     `yaml:"missing_narration_ms"`
	NarrationGainDB    float64 `yaml:"narration_gain_db"`
}

type SynthConfig struct {
	Command    string `yaml:"command"`
	SoundFont  string `yaml:"soundfont"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type NarratorConfig struct {
	Mode              string  `yaml:"mode"` // exec, google, elevenlabs, none
	Command           string  `yaml:"command"`
	Extension         string  `yaml:"extension"`
	Language          string  `yaml:"language"`
	VoiceID           string  `yaml:"voice_id"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	CacheDir          string  `yaml:"cache_dir"`
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
}

type AnswersConfig struct {
	Path string `yaml:"path"` // empty disables the answer sheet
}

type UploadConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

const (
	NarratorExec       = "exec"
	NarratorGoogle     = "google"
	NarratorElevenLabs = "elevenlabs"
	NarratorNone       = "none"
)

func Default() Config {
	return Config{
		LogLevel: "info",
		Output:   "chord_progressions.wav",
		Generator: GeneratorConfig{
			NumProgressions: 3,
			MinLength:       3,
			MaxLength:       3,
			MaxSpan:         24,
			MaxAttempts:     theory.DefaultMaxAttempts,
			Keys:            []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"},
			Degrees:         []string{"I", "II", "III", "IV", "V", "VI", "VII"},
		},
		Timing: TimingConfig{
			TicksPerBeat: 480,
			BPM:          60,
			ChordTicks:   960,
			GapTicks:     240,
			RepGapTicks:  960,
			Velocity:     100,
		},
		Assembly: AssemblyConfig{
			PostGapMS:          300,
			EndGapMS:           1000,
			MissingNarrationMS: 1500,
			NarrationGainDB:    -6,
		},
		Synth: SynthConfig{
			Command:    "fluidsynth -ni",
			SoundFont:  "FluidR3_GM.sf2",
			SampleRate: 44100,
			Channels:   2,
		},
		Narrator: NarratorConfig{
			Mode:              NarratorExec,
			Command:           "say -o {output} {text}",
			Extension:         ".aiff",
			Language:          "en",
			VoiceID:           "21m00Tcm4TlvDq8ikWAM",
			RequestsPerSecond: 2,
			CacheTTLSeconds:   3600,
		},
		Answers: AnswersConfig{
			Path: "chord_progressions.yaml",
		},
		Upload: UploadConfig{
			Prefix: "exercises/",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CHORDEAR_SOUNDFONT"); v != "" {
		cfg.Synth.SoundFont = v
	}
	if v := os.Getenv("CHORDEAR_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("CHORDEAR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHORDEAR_NARRATOR"); v != "" {
		cfg.Narrator.Mode = v
	}
	if v := os.Getenv("CHORDEAR_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CHORDEAR_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("ELEVENLABS_APIKEY"); v != "" {
		cfg.Narrator.APIKey = v
	}
	return nil
}

func (c Config) Validate() error {
	g := c.Generator
	if g.NumProgressions < 1 {
		return fmt.Errorf("generator.num_progressions must be positive")
	}
	if g.MinLength < 1 || g.MaxLength < g.MinLength {
		return fmt.Errorf("generator length range %d..%d invalid", g.MinLength, g.MaxLength)
	}
	if c.Timing.TicksPerBeat <= 0 || c.Timing.BPM <= 0 || c.Timing.ChordTicks <= 0 {
		return fmt.Errorf("timing must be positive")
	}
	if c.Timing.GapTicks < 0 || c.Timing.RepGapTicks < 0 {
		return fmt.Errorf("timing gaps must not be negative")
	}
	if c.Timing.Velocity < 1 || c.Timing.Velocity > 127 {
		return fmt.Errorf("timing.velocity %d outside 1..127", c.Timing.Velocity)
	}
	if c.Synth.SampleRate <= 0 {
		return fmt.Errorf("synth.sample_rate must be positive")
	}
	if c.Synth.Channels != 1 && c.Synth.Channels != 2 {
		return fmt.Errorf("synth.channels must be 1 or 2, got %d", c.Synth.Channels)
	}
	switch c.Narrator.Mode {
	case NarratorExec, NarratorGoogle, NarratorElevenLabs, NarratorNone:
	default:
		return fmt.Errorf("unknown narrator mode %q", c.Narrator.Mode)
	}
	params, err := c.GeneratorParams()
	if err != nil {
		return err
	}
	params.Length = g.MaxLength
	return params.Validate()
}

// GeneratorParams converts the generator section. Length is left at
// MinLength; callers vary it per progression.
func (c Config) GeneratorParams() (theory.Params, error) {
	keys, err := theory.ParseKeys(c.Generator.Keys)
	if err != nil {
		return theory.Params{}, err
	}
	degrees, err := theory.ParseDegrees(c.Generator.Degrees)
	if err != nil {
		return theory.Params{}, err
	}
	return theory.Params{
		Length:      c.Generator.MinLength,
		Keys:        keys,
		Degrees:     degrees,
		MaxSpan:     c.Generator.MaxSpan,
		MaxAttempts: c.Generator.MaxAttempts,
		Distinct:    c.Generator.Distinct,
	}, nil
}

func (c Config) MIDITiming() midi.Timing {
	return midi.Timing{
		TicksPerBeat: uint16(c.Timing.TicksPerBeat),
		BPM:          c.Timing.BPM,
		ChordTicks:   uint32(c.Timing.ChordTicks),
		GapTicks:     uint32(c.Timing.GapTicks),
		Velocity:     uint8(c.Timing.Velocity),
	}
}

// AssemblerConfig derives the repeat gap from rep_gap_ticks on the MIDI grid.
func (c Config) AssemblerConfig() audio.AssemblerConfig {
	return audio.AssemblerConfig{
		RepeatGap:        c.MIDITiming().Duration(uint32(c.Timing.RepGapTicks)),
		PostGap:          time.Duration(c.Assembly.PostGapMS) * time.Millisecond,
		EndGap:           time.Duration(c.Assembly.EndGapMS) * time.Millisecond,
		MissingNarration: time.Duration(c.Assembly.MissingNarrationMS) * time.Millisecond,
		NarrationGainDB:  c.Assembly.NarrationGainDB,
	}
}

// Format is the PCM format every rendered buffer is converted to.
func (c Config) Format() audio.Format {
	return audio.Format{SampleRate: c.Synth.SampleRate, Channels: c.Synth.Channels}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Narrator.CacheTTLSeconds) * time.Second
}
