package aytracker

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoteName is the pitch class of a note. The two first values are reserved:
// NoteNone holds the previous state of the channel and NoteOff silences it.
type NoteName int

const (
	NoteNone NoteName = iota
	NoteOff
	NoteC
	NoteCSharp
	NoteD
	NoteDSharp
	NoteE
	NoteF
	NoteFSharp
	NoteG
	NoteGSharp
	NoteA
	NoteASharp
	NoteB
)

// Note is a pitch class and an octave. Octaves start from 1.
type Note struct {
	Name   NoteName
	Octave int
}

var noteNameStrings = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var noteNameLookup = map[string]NoteName{
	"C": NoteC, "C#": NoteCSharp, "D": NoteD, "D#": NoteDSharp, "E": NoteE, "F": NoteF,
	"F#": NoteFSharp, "G": NoteG, "G#": NoteGSharp, "A": NoteA, "A#": NoteASharp, "B": NoteB,
}

// Pitched reports whether the note maps through the tuning table.
func (n Note) Pitched() bool {
	return n.Name >= NoteC && n.Name <= NoteB
}

// Semitone returns the index of the note in a chromatic table starting at
// C-1. The result is only meaningful for pitched notes.
func (n Note) Semitone() int {
	return int(n.Name-NoteC) + (n.Octave-1)*12
}

// NoteFromSemitone is the inverse of Semitone.
func NoteFromSemitone(index int) Note {
	if index < 0 {
		return Note{}
	}
	return Note{Name: NoteC + NoteName(index%12), Octave: index/12 + 1}
}

// String formats the note the way trackers print it: "C-4", "C#4", "OFF" or
// "---".
func (n Note) String() string {
	switch {
	case n.Name == NoteOff:
		return "OFF"
	case n.Pitched():
		s := noteNameStrings[n.Name-NoteC]
		if len(s) == 1 {
			s += "-"
		}
		return s + strconv.Itoa(n.Octave)
	default:
		return "---"
	}
}

// ParseNote parses a note token. "---", "R--", "..." and the empty string
// are no note. Otherwise the first one or two characters are the note name,
// with a following '#' marking a sharp, and the rest is the octave. A single
// character with no octave defaults to octave 4. ok is false if the token
// could not be mapped; the returned note is then NoteNone.
func ParseNote(token string) (note Note, ok bool) {
	token = strings.TrimSpace(token)
	switch token {
	case "", "---", "R--", "...":
		return Note{}, true
	case "OFF":
		return Note{Name: NoteOff}, true
	}
	var name, rest string
	switch {
	case len(token) == 1:
		name, rest = token, "4"
	case token[1] == '#':
		name, rest = token[:2], token[2:]
	case token[1] == '-':
		name, rest = token[:1], token[2:]
	default:
		name, rest = token[:1], token[1:]
	}
	nn, found := noteNameLookup[strings.ToUpper(name)]
	if !found {
		return Note{}, false
	}
	octave, err := strconv.Atoi(rest)
	if err != nil || octave < 0 {
		return Note{}, false
	}
	return Note{Name: nn, Octave: octave}, true
}

// MarshalYAML writes the note in its string form.
func (n Note) MarshalYAML() (any, error) {
	return n.String(), nil
}

// UnmarshalYAML reads the string form of a note.
func (n *Note) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, ok := ParseNote(s)
	if !ok {
		return fmt.Errorf("line %d: invalid note %q", value.Line, s)
	}
	*n = parsed
	return nil
}

// MarshalText and UnmarshalText make JSON use the same string form.
func (n Note) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Note) UnmarshalText(text []byte) error {
	parsed, ok := ParseNote(string(text))
	if !ok {
		return fmt.Errorf("invalid note %q", text)
	}
	*n = parsed
	return nil
}
