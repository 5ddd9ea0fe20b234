package voice

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/haguro/elevenlabs-go"
	"golang.org/x/time/rate"

	"chordear/audio"
)

const (
	DefaultElevenLabsModel = "eleven_monolingual_v1"
	elevenLabsTimeout      = 30 * time.Second
)

type ElevenLabs struct {
	ApiKey  string
	VoiceID string
	ModelID string
	Outdir  string
	Format  audio.Format

	limiter *rate.Limiter
	decode  decodeFunc
}

// NewElevenLabs throttles requests to perSecond (burst 1).
func NewElevenLabs(apiKey, voiceID, modelID, outdir string, f audio.Format, perSecond float64) *ElevenLabs {
	if modelID == "" {
		modelID = DefaultElevenLabsModel
	}
	return &ElevenLabs{
		ApiKey:  apiKey,
		VoiceID: voiceID,
		ModelID: modelID,
		Outdir:  outdir,
		Format:  f,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		decode:  audio.DecodeFile,
	}
}

// convert text to speech & keep the mp3 in the out directory
func (api *ElevenLabs) Narrate(ctx context.Context, text string) (*audio.Buffer, error) {
	if err := os.MkdirAll(api.Outdir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create out dir; %w", err)
	}

	file := path.Join(api.Outdir, hashString(api.VoiceID+text)+".mp3")
	if _, err := os.Stat(file); err != nil {
		if err := api.synthesize(ctx, text, file); err != nil {
			return nil, unavailable(err)
		}
	}

	buf, err := api.decode(ctx, file, api.Format)
	if err != nil {
		return nil, unavailable(err)
	}
	return buf, nil
}

func (api *ElevenLabs) synthesize(ctx context.Context, text, file string) error {
	if api.ApiKey == "" {
		return fmt.Errorf("no elevenlabs api key")
	}
	if err := api.limiter.Wait(ctx); err != nil {
		return err
	}

	client := elevenlabs.NewClient(ctx, api.ApiKey, elevenLabsTimeout)
	ttsReq := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: api.ModelID,
	}
	mp3, err := client.TextToSpeech(api.VoiceID, ttsReq)
	if err != nil {
		return fmt.Errorf("failed tts; %w", err)
	}

	if err := os.WriteFile(file, mp3, 0644); err != nil {
		return fmt.Errorf("failed to write file to disk; %w", err)
	}
	return nil
}
