package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"chordear/audio"
)

const (
	placeholderOutput = "{output}"
	placeholderText   = "{text}"
)

// DefaultCommand is the macOS speech engine.
const DefaultCommand = "say -o {output} {text}"

// Command narrates with a local speech program such as `say` or
// `espeak -w {output} {text}`. The program must write an audio file to
// {output}; text is appended when {text} is absent.
type Command struct {
	args   []string
	ext    string
	outdir string
	format audio.Format
	decode decodeFunc
}

func NewCommand(command, ext, outdir string, f audio.Format) (*Command, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse speech command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("speech command empty")
	}
	if !strings.Contains(command, placeholderOutput) {
		return nil, fmt.Errorf("speech command %q has no %s", command, placeholderOutput)
	}
	if !strings.Contains(command, placeholderText) {
		args = append(args, placeholderText)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Command{args: args, ext: ext, outdir: outdir, format: f, decode: audio.DecodeFile}, nil
}

// Check reports whether the speech program and the decoder are installed.
func (c *Command) Check() error {
	for _, bin := range []string{c.args[0], audio.FFmpeg} {
		if _, err := exec.LookPath(bin); err != nil {
			return unavailable(fmt.Errorf("%s not found", bin))
		}
	}
	return nil
}

func (c *Command) Narrate(ctx context.Context, text string) (*audio.Buffer, error) {
	if err := os.MkdirAll(c.outdir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create out dir; %w", err)
	}

	file := filepath.Join(c.outdir, hashString(text)+c.ext)
	if _, err := os.Stat(file); err != nil {
		// not spoken yet
		args := c.expand(file, text)
		run := exec.CommandContext(ctx, args[0], args[1:]...)
		if out, err := run.CombinedOutput(); err != nil {
			_ = os.Remove(file)
			return nil, unavailable(fmt.Errorf("%s failed: %s; %w", args[0], strings.TrimSpace(string(out)), err))
		}
	}

	buf, err := c.decode(ctx, file, c.format)
	if err != nil {
		return nil, unavailable(err)
	}
	return buf, nil
}

// expand substitutes the placeholders in every argument.
func (c *Command) expand(output, text string) []string {
	replacer := strings.NewReplacer(placeholderOutput, output, placeholderText, text)
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = replacer.Replace(a)
	}
	return args
}
