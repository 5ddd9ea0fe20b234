package theory

import (
	"fmt"
	"strings"
)

// Key is a chromatic pitch class, 0 (C) through 11 (B)
type Key int

const (
	C Key = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// middle C; every key's tonic sits in this octave
const baseTonic = 60

var keyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// flats accepted by ParseKey, mapped onto the sharp spelling
var flatNames = map[string]Key{
	"DB": CSharp,
	"EB": DSharp,
	"GB": FSharp,
	"AB": GSharp,
	"BB": ASharp,
}

// AllKeys returns the twelve chromatic keys in order.
func AllKeys() []Key {
	keys := make([]Key, 0, len(keyNames))
	for k := C; k <= B; k++ {
		keys = append(keys, k)
	}
	return keys
}

func (k Key) Valid() bool {
	return k >= C && k <= B
}

// Tonic returns the MIDI note of the key's tonic in the base octave.
func (k Key) Tonic() int {
	return baseTonic + int(k)
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey reads a key name such as "C", "f#" or "Bb".
func ParseKey(name string) (Key, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range keyNames {
		if n == upper {
			return Key(i), nil
		}
	}
	if k, ok := flatNames[upper]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown key %q; %w", name, ErrInvalidConfiguration)
}

// ParseKeys parses every name, failing on the first bad one.
func ParseKeys(names []string) ([]Key, error) {
	keys := make([]Key, 0, len(names))
	for _, n := range names {
		k, err := ParseKey(n)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
