package voice

import (
	"context"
	"errors"
	"os"

	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/sirupsen/logrus"

	"chordear/audio"
)

// htgotts writes this exact size when Google rejects the request
const badMP3Size = 1685

// Google narrates through the Google Translate speech endpoint.
type Google struct {
	Language string
	Outdir   string
	Format   audio.Format

	decode decodeFunc
}

func NewGoogle(language, outdir string, f audio.Format) *Google {
	return &Google{Language: language, Outdir: outdir, Format: f, decode: audio.DecodeFile}
}

func (api *Google) Narrate(ctx context.Context, text string) (*audio.Buffer, error) {
	speech := htgotts.Speech{Folder: api.Outdir, Language: api.Language}
	path, err := speech.CreateSpeechFile(text, hashString(text))
	if err != nil {
		return nil, unavailable(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, unavailable(err)
	}
	if info.Size() == badMP3Size {
		logrus.WithField("line", text).Infoln("htgotts returned bad MP3file")
		_ = os.Remove(path)
		return nil, unavailable(errors.New("failed to gen speech"))
	}

	buf, err := api.decode(ctx, path, api.Format)
	if err != nil {
		return nil, unavailable(err)
	}
	return buf, nil
}
