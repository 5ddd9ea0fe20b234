package theory

import (
	"fmt"
	"strings"
)

// Degree is the scale degree a triad is built on.
type Degree int

const (
	I Degree = iota + 1
	II
	III
	IV
	V
	VI
	VII
	// SharpII is the chromatic major triad a minor third above the tonic.
	SharpII
)

type degreeInfo struct {
	label   string
	word    string
	formula [3]int // semitones above the tonic
}

// static tables; degree qualities follow the major scale
var degrees = map[Degree]degreeInfo{
	I:       {label: "I", word: "one", formula: [3]int{0, 4, 7}},
	II:      {label: "II", word: "two", formula: [3]int{2, 5, 9}},
	III:     {label: "III", word: "three", formula: [3]int{4, 7, 11}},
	IV:      {label: "IV", word: "four", formula: [3]int{5, 9, 12}},
	V:       {label: "V", word: "five", formula: [3]int{7, 11, 14}},
	VI:      {label: "VI", word: "six", formula: [3]int{9, 12, 16}},
	VII:     {label: "VII", word: "seven", formula: [3]int{11, 14, 17}},
	SharpII: {label: "#II", word: "sharp two", formula: [3]int{3, 7, 10}},
}

// DiatonicDegrees returns I through VII.
func DiatonicDegrees() []Degree {
	return []Degree{I, II, III, IV, V, VI, VII}
}

func (d Degree) Valid() bool {
	_, ok := degrees[d]
	return ok
}

func (d Degree) String() string {
	info, ok := degrees[d]
	if !ok {
		return fmt.Sprintf("Degree(%d)", int(d))
	}
	return info.label
}

// Word is the spoken form used in narration.
func (d Degree) Word() string {
	return degrees[d].word
}

// Formula returns the triad's semitone offsets from the tonic.
func (d Degree) Formula() [3]int {
	return degrees[d].formula
}

// ParseDegree accepts roman numerals in either case, with or without the
// diminished sign ("vii°"), the "#II" chromatic degree, and digits 1-7.
func ParseDegree(label string) (Degree, error) {
	s := strings.TrimSpace(label)
	s = strings.TrimSuffix(s, "°")
	s = strings.TrimSuffix(s, "o")
	s = strings.ToUpper(s)
	for d, info := range degrees {
		if info.label == s {
			return d, nil
		}
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '7' {
		return Degree(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("unknown degree %q; %w", label, ErrInvalidConfiguration)
}

// ParseDegrees parses every label, failing on the first bad one.
func ParseDegrees(labels []string) ([]Degree, error) {
	out := make([]Degree, 0, len(labels))
	for _, l := range labels {
		d, err := ParseDegree(l)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
