package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chordear/audio"
	"chordear/config"
	"chordear/session"
	"chordear/storage"
	"chordear/synth"
	"chordear/voice"
)

func newInterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func main() {
	ctx, cancel := newInterruptContext(context.Background())
	defer cancel()

	path := "config.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(ctx, path); err != nil {
		logrus.WithError(err).Errorln("chordear failed")
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level; %w", err)
	}
	logrus.SetLevel(level)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logrus.WithField("seed", seed).Debugln("random source ready")

	workdir := cfg.WorkDir
	if workdir == "" {
		workdir, err = os.MkdirTemp("", "chordear-")
		if err != nil {
			return fmt.Errorf("failed to create work dir; %w", err)
		}
		defer os.RemoveAll(workdir)
	} else if err := os.MkdirAll(workdir, 0755); err != nil {
		return fmt.Errorf("failed to create work dir; %w", err)
	}

	renderer, err := synth.NewFluidSynth(cfg.Synth.Command, cfg.Synth.SoundFont, cfg.Format(), workdir)
	if err != nil {
		return err
	}
	if err := renderer.Check(); err != nil {
		return err
	}

	narrator, closeNarrator := newNarrator(cfg, workdir)
	defer closeNarrator()

	params, err := cfg.GeneratorParams()
	if err != nil {
		return err
	}
	s := &session.Session{
		Params:    params,
		MinLength: cfg.Generator.MinLength,
		MaxLength: cfg.Generator.MaxLength,
		Timing:    cfg.MIDITiming(),
		Rand:      rand.New(rand.NewSource(seed)),
		Renderer:  renderer,
		Narrator:  narrator,
		Assembler: audio.NewAssembler(cfg.Format(), cfg.AssemblerConfig()),
	}

	exercises, err := s.Run(ctx, cfg.Generator.NumProgressions)
	if err != nil {
		return err
	}
	if len(exercises) == 0 {
		return errors.New("no progression satisfied the span constraint")
	}

	if err := writeOutput(cfg.Output, s.Assembler); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"output":    cfg.Output,
		"exercises": len(exercises),
		"duration":  s.Assembler.Buffer().Duration().String(),
	}).Infoln("wrote exercises")

	runID := uuid.NewString()
	if cfg.Answers.Path != "" {
		if err := saveAnswers(cfg, runID, seed, exercises); err != nil {
			return err
		}
	}

	if cfg.Upload.Enabled {
		bucket, err := storage.NewS3FromEnv()
		if err != nil {
			return fmt.Errorf("upload enabled; %w", err)
		}
		key := cfg.Upload.Prefix + runID + filepath.Ext(cfg.Output)
		if err := bucket.UploadFile(ctx, cfg.Output, key); err != nil {
			return err
		}
		logrus.WithField("url", bucket.URL(key)).Infoln("uploaded exercises")
	}

	return nil
}

// newNarrator builds the configured narrator. Narration is optional: when
// the engine cannot be set up the run continues with silence.
func newNarrator(cfg config.Config, workdir string) (voice.Narrator, func()) {
	outdir := cfg.Narrator.CacheDir
	if outdir == "" {
		outdir = filepath.Join(workdir, "narration")
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		logrus.WithError(err).Warnln("narration disabled")
		return nil, func() {}
	}

	var next voice.Narrator
	switch cfg.Narrator.Mode {
	case config.NarratorNone:
		return nil, func() {}
	case config.NarratorGoogle:
		next = voice.NewGoogle(cfg.Narrator.Language, outdir, cfg.Format())
	case config.NarratorElevenLabs:
		if cfg.Narrator.APIKey == "" {
			logrus.Warnln("narration disabled: ELEVENLABS_APIKEY not set")
			return nil, func() {}
		}
		next = voice.NewElevenLabs(cfg.Narrator.APIKey, cfg.Narrator.VoiceID, cfg.Narrator.Model, outdir, cfg.Format(), cfg.Narrator.RequestsPerSecond)
	default:
		cmd, err := voice.NewCommand(cfg.Narrator.Command, cfg.Narrator.Extension, outdir, cfg.Format())
		if err == nil {
			err = cmd.Check()
		}
		if err != nil {
			logrus.WithError(err).Warnln("narration disabled")
			return nil, func() {}
		}
		next = cmd
	}

	cached := voice.NewCached(next, cfg.CacheTTL())
	return cached, cached.Close
}

func writeOutput(filename string, asm *audio.Assembler) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir; %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output; %w", err)
	}
	if err := asm.WriteWAV(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output; %w", err)
	}
	return file.Close()
}

func saveAnswers(cfg config.Config, runID string, seed int64, exercises []session.Exercise) error {
	disk, err := storage.NewDisk(cfg.Answers.Path)
	if err != nil {
		return err
	}
	entry := storage.Run{
		Created: time.Now().UTC().Format(time.RFC3339),
		Output:  cfg.Output,
		Seed:    seed,
	}
	for _, ex := range exercises {
		entry.Answers = append(entry.Answers, storage.NewAnswer(ex.Number, ex.Progression, ex.Spoken))
	}
	if err := disk.SaveRun(runID, entry); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"path": cfg.Answers.Path,
		"run":  runID,
	}).Infoln("saved answer sheet")
	return nil
}
