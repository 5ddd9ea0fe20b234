package storage

import (
	"fmt"

	"chordear/theory"
)

// Answer is the answer-sheet entry for one exercise.
type Answer struct {
	Number    int      `yaml:"number"`
	Key       string   `yaml:"key"`
	Degrees   []string `yaml:"degrees"`
	Narration string   `yaml:"narration"`
	Voicings  [][]int  `yaml:"voicings"`
	Spoken    bool     `yaml:"spoken"`
}

// Run is everything written for one invocation.
type Run struct {
	Created string   `yaml:"created"` // RFC 3339
	Output  string   `yaml:"output"`
	Seed    int64    `yaml:"seed"`
	Answers []Answer `yaml:"answers"`
}

// NewAnswer describes a generated progression.
func NewAnswer(number int, p theory.Progression, spoken bool) Answer {
	a := Answer{
		Number:    number,
		Key:       p.Key.String(),
		Narration: theory.Narration(p),
		Spoken:    spoken,
	}
	for _, c := range p.Chords {
		a.Degrees = append(a.Degrees, c.Degree.String())
		n := c.Voicing.Notes
		a.Voicings = append(a.Voicings, []int{n[0], n[1], n[2]})
	}
	return a
}

// SaveRun records the run under its id.
func (d *Disk) SaveRun(id string, run Run) error {
	if err := d.Set(id, run); err != nil {
		return fmt.Errorf("failed to save answers; %w", err)
	}
	return nil
}
