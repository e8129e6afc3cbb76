package aytracker_test

import (
	"testing"

	"github.com/aytracker/aytracker"
	"gopkg.in/yaml.v3"
)

func TestParseNote(t *testing.T) {
	cases := []struct {
		token string
		want  aytracker.Note
		ok    bool
	}{
		{"C-4", aytracker.Note{Name: aytracker.NoteC, Octave: 4}, true},
		{"C#4", aytracker.Note{Name: aytracker.NoteCSharp, Octave: 4}, true},
		{"A#1", aytracker.Note{Name: aytracker.NoteASharp, Octave: 1}, true},
		{"G5", aytracker.Note{Name: aytracker.NoteG, Octave: 5}, true},
		{"F", aytracker.Note{Name: aytracker.NoteF, Octave: 4}, true},
		{"---", aytracker.Note{}, true},
		{"R--", aytracker.Note{}, true},
		{"...", aytracker.Note{}, true},
		{"", aytracker.Note{}, true},
		{"OFF", aytracker.Note{Name: aytracker.NoteOff}, true},
		{"H-4", aytracker.Note{}, false},
		{"C-x", aytracker.Note{}, false},
	}
	for _, c := range cases {
		got, ok := aytracker.ParseNote(c.token)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseNote(%q) = %v, %v; expected %v, %v", c.token, got, ok, c.want, c.ok)
		}
	}
}

func TestNoteStringRoundTrip(t *testing.T) {
	for i := 0; i < aytracker.NumTuningEntries; i++ {
		n := aytracker.NoteFromSemitone(i)
		if n.Semitone() != i {
			t.Fatalf("NoteFromSemitone(%d).Semitone() = %d", i, n.Semitone())
		}
		parsed, ok := aytracker.ParseNote(n.String())
		if !ok || parsed != n {
			t.Fatalf("ParseNote(%q) = %v, %v; expected %v", n.String(), parsed, ok, n)
		}
	}
}

func TestNoteYAML(t *testing.T) {
	type cell struct {
		Note aytracker.Note
	}
	out, err := yaml.Marshal(cell{Note: aytracker.Note{Name: aytracker.NoteDSharp, Octave: 3}})
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if string(out) != "note: D#3\n" {
		t.Errorf("unexpected yaml %q", out)
	}
	var c cell
	if err := yaml.Unmarshal([]byte("note: OFF\n"), &c); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if c.Note.Name != aytracker.NoteOff {
		t.Errorf("expected OFF, got %v", c.Note)
	}
	if err := yaml.Unmarshal([]byte("note: X-9\n"), &c); err == nil {
		t.Errorf("expected an error for an invalid note")
	}
}

func TestParseEffect(t *testing.T) {
	cases := []struct {
		code string
		want *aytracker.Effect
		ok   bool
	}{
		{"....", nil, true},
		{"", nil, true},
		{"1234", &aytracker.Effect{Kind: aytracker.EffectGlissando, Delay: 2, Parameter: 0x34}, true},
		{"P.1F", &aytracker.Effect{Kind: aytracker.EffectPortamento, Parameter: 0x1F}, true},
		{"V3..", &aytracker.Effect{Kind: aytracker.EffectVibrato, Delay: 3}, true},
		{"S0a0", &aytracker.Effect{Kind: aytracker.EffectEnvelopeSlide, Parameter: 0xA0}, true},
		{"K047", &aytracker.Effect{Kind: aytracker.EffectArpeggio, Parameter: 0x47}, true},
		{"Z123", nil, false},
		{"12", nil, false},
	}
	for _, c := range cases {
		got, ok := aytracker.ParseEffect(c.code)
		if ok != c.ok {
			t.Errorf("ParseEffect(%q) ok = %v, expected %v", c.code, ok, c.ok)
		}
		switch {
		case got == nil && c.want == nil:
		case got == nil || c.want == nil || *got != *c.want:
			t.Errorf("ParseEffect(%q) = %+v, expected %+v", c.code, got, c.want)
		}
	}
}

func TestEffectCode(t *testing.T) {
	for _, code := range []string{"1234", "3012", "4F00", "5A5A", "A047"} {
		e, _ := aytracker.ParseEffect(code)
		if got := e.Code(); got != code {
			t.Errorf("Code() = %q, expected %q", got, code)
		}
	}
	var e *aytracker.Effect
	if e.Code() != "...." {
		t.Errorf("nil effect should format as ....")
	}
}
