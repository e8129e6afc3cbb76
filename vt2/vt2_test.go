package vt2_test

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/vt2"
	"golang.org/x/text/encoding/charmap"
)

const testModule = `[Module]
VortexTrackerII=1
Version=3.6
Title=Test Song
Author=Nobody
NoteTable=1
ChipFreq=1750000
IntFreq=48828
Speed=4
PlayOrder=0,L1,0

[Ornament1]
L0,12,-12

[Sample1]
Tne +001_ +00_ F_
TNE -010_ -02_ A_ L

[Pattern1]
....|..|D-5 .... ....|--- .... ....|--- .... ....
....|..|OFF .... ....|--- .... ....|--- .... ....

[Pattern0]
1234|1F|C-4 1247 ....|C#3 .F.2 1234|--- ...1 ....
....|..|--- ...3 P.1F|R-- .... ....|H-9 .... Z123
bad row
....|..|--- .... ....|--- .... ....|--- .... ....
`

func decode(t *testing.T, src string) (*aytracker.Song, []vt2.Warning) {
	t.Helper()
	var warnings []vt2.Warning
	song, err := vt2.DecodeString(src, vt2.CollectWarnings(&warnings))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return song, warnings
}

func TestDecodeModule(t *testing.T) {
	song, _ := decode(t, testModule)
	if song.Title != "Test Song" || song.Author != "Nobody" {
		t.Errorf("unexpected title/author %q %q", song.Title, song.Author)
	}
	if song.InitialSpeed != 4 || song.ChipClock != 1750000 || song.TicksPerSecond != 49 {
		t.Errorf("unexpected speed/clock/rate %d %d %d", song.InitialSpeed, song.ChipClock, song.TicksPerSecond)
	}
	if !reflect.DeepEqual(song.PatternOrder, aytracker.Order{0, 1, 0}) || song.LoopPoint != 1 {
		t.Errorf("unexpected order %v loop %d", song.PatternOrder, song.LoopPoint)
	}
	if !reflect.DeepEqual(song.TuningTable, aytracker.ReferenceTable(1)) {
		t.Errorf("expected tuning table 1")
	}
	if song.ChipType != aytracker.ChipAY {
		t.Errorf("expected AY chip, got %v", song.ChipType)
	}
	if err := song.Validate(); err != nil {
		t.Errorf("decoded song is invalid: %v", err)
	}
}

func TestDecodePatterns(t *testing.T) {
	song, warnings := decode(t, testModule)
	if len(song.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(song.Patterns))
	}
	p0, p1 := song.Patterns[0], song.Patterns[1]
	if p0.ID != 0 || p0.Length != 3 || p1.ID != 1 || p1.Length != 2 {
		t.Fatalf("unexpected patterns %d/%d %d/%d", p0.ID, p0.Length, p1.ID, p1.Length)
	}
	want := aytracker.Row{Note: aytracker.Note{Name: aytracker.NoteC, Octave: 4}, Instrument: 1, EnvelopeShape: 2, Ornament: 4, Volume: 7}
	if got := p0.Row(0, 0); got != want {
		t.Errorf("\"C-4 1247 ....\" = %+v, expected %+v", got, want)
	}
	if got := p0.Row(1, 0); got.Note != (aytracker.Note{Name: aytracker.NoteCSharp, Octave: 3}) || got.EnvelopeShape != 15 || got.Volume != 2 {
		t.Errorf("channel B row 0 = %+v", got)
	}
	if e := p0.Row(1, 0).Effect; e == nil || *e != (aytracker.Effect{Kind: aytracker.EffectGlissando, Delay: 2, Parameter: 0x34}) {
		t.Errorf("channel B row 0 effect = %+v", e)
	}
	if got := p0.Row(0, 1); got.Volume != 3 || got.Effect == nil || got.Effect.Kind != aytracker.EffectPortamento || got.Effect.Parameter != 0x1f {
		t.Errorf("channel A row 1 = %+v", got)
	}
	if got := p0.Row(2, 1); got.Note.Name != aytracker.NoteNone || got.Effect != nil {
		t.Errorf("unmapped tokens should give no note and no effect, got %+v", got)
	}
	if p0.PatternRows[0].EnvelopeValue != 0x1234 || p0.PatternRows[0].NoiseValue != 0x1f {
		t.Errorf("unexpected pattern row %+v", p0.PatternRows[0])
	}
	if got := p1.Row(0, 1); got.Note.Name != aytracker.NoteOff {
		t.Errorf("OFF should decode as a note off, got %+v", got)
	}
	var bad, unmapped int
	for _, w := range warnings {
		switch {
		case strings.Contains(w.Message, "fields skipped"):
			bad++
			if w.Line != 26 {
				t.Errorf("bad row reported at line %d, expected 26", w.Line)
			}
		case strings.Contains(w.Message, "unmapped note"), strings.Contains(w.Message, "unrecognized effect"):
			unmapped++
		}
	}
	if bad != 1 || unmapped != 2 {
		t.Errorf("expected 1 skipped row and 2 unmapped tokens, got %d and %d (%v)", bad, unmapped, warnings)
	}
}

func TestDecodeSamplesAndOrnaments(t *testing.T) {
	song, _ := decode(t, testModule)
	if len(song.Samples) != 1 || len(song.Ornaments) != 1 {
		t.Fatalf("expected 1 sample and 1 ornament")
	}
	s := song.Samples[0]
	want := []aytracker.SampleLine{
		{Tone: true, ToneAdd: 1, Volume: 15},
		{Tone: true, Noise: true, Envelope: true, ToneAdd: -16, NoiseAdd: -2, Volume: 10},
	}
	if s.ID != 1 || s.Loop != 1 || !reflect.DeepEqual(s.Lines, want) {
		t.Errorf("unexpected sample %+v", s)
	}
	o := song.Ornaments[0]
	if o.ID != 1 || o.Loop != 0 || !reflect.DeepEqual(o.Offsets, []int{0, 12, -12}) {
		t.Errorf("unexpected ornament %+v", o)
	}
}

func TestSpeedDefaults(t *testing.T) {
	cases := []struct {
		line string
		want int
	}{
		{"", 3},
		{"Speed=0\n", 6},
		{"Speed=fast\n", 6},
		{"Speed=9\n", 9},
	}
	for _, c := range cases {
		song, _ := decode(t, "[Module]\n"+c.line+"PlayOrder=L0\n")
		if song.InitialSpeed != c.want {
			t.Errorf("%q: speed %d, expected %d", c.line, song.InitialSpeed, c.want)
		}
	}
}

func TestChipTypeGuess(t *testing.T) {
	song, _ := decode(t, "[Module]\nTitle=My YM tune\nPlayOrder=0\n")
	if song.ChipType != aytracker.ChipYM {
		t.Errorf("expected YM chip for %q", song.Title)
	}
}

func TestMissingModule(t *testing.T) {
	_, err := vt2.DecodeString("[Pattern0]\n....|..|C-4 .... ....|--- .... ....|--- .... ....\n")
	var formatErr *aytracker.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("expected a FormatError, got %v", err)
	}
}

func TestPatternIndexLimit(t *testing.T) {
	src := "[Module]\nPlayOrder=L0,200000,1\n\n[Pattern99999]\n....|..|C-4 .... ....|--- .... ....|--- .... ....\n" +
		"[Pattern99999999999999999999]\n....|..|C-4 .... ....|--- .... ....|--- .... ....\n"
	song, warnings := decode(t, src)
	if !reflect.DeepEqual(song.PatternOrder, aytracker.Order{0, 1}) {
		t.Errorf("order = %v, want [0 1]", song.PatternOrder)
	}
	if len(song.Patterns) != 2 {
		t.Errorf("got %d patterns, want 2", len(song.Patterns))
	}
	limits := 0
	for _, w := range warnings {
		if strings.Contains(w.Message, "limit") {
			limits++
		}
	}
	if limits != 3 {
		t.Errorf("expected 3 limit warnings, got %d (%v)", limits, warnings)
	}
}

func TestSEOVColumns(t *testing.T) {
	song, _ := decode(t, "[Module]\nPlayOrder=0\n\n[Pattern0]\n....|..|C-4 VVVV ....|C-4 AGHZ ....|--- .... ....\n")
	want := aytracker.Row{Note: aytracker.Note{Name: aytracker.NoteC, Octave: 4}, Instrument: 31}
	if got := song.Patterns[0].Row(0, 0); got != want {
		t.Errorf("\"C-4 VVVV ....\" = %+v, want %+v", got, want)
	}
	want.Instrument = 10
	if got := song.Patterns[0].Row(1, 0); got != want {
		t.Errorf("\"C-4 AGHZ ....\" = %+v, want %+v", got, want)
	}
}

func TestWindows1251(t *testing.T) {
	src, err := charmap.Windows1251.NewEncoder().String("[Module]\nTitle=Привет\nPlayOrder=0\n")
	if err != nil {
		t.Fatalf("encoding fixture failed: %v", err)
	}
	song, _ := decode(t, src)
	if song.Title != "Привет" {
		t.Errorf("expected the title to be decoded from Windows-1251, got %q", song.Title)
	}
}

func TestWarningsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	_, err := vt2.DecodeString(testModule, vt2.WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !strings.Contains(logs.String(), "line 26") {
		t.Errorf("expected the skipped row in the log, got %q", logs.String())
	}
}

func TestRoundTrip(t *testing.T) {
	first, _ := decode(t, testModule)
	var buf bytes.Buffer
	if err := vt2.Encode(&buf, first); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, warnings := decode(t, buf.String())
	if len(warnings) != 0 {
		t.Errorf("re-decoding produced warnings: %v", warnings)
	}
	if !reflect.DeepEqual(first.Patterns, second.Patterns) {
		t.Errorf("patterns changed in a round trip:\n%s", buf.String())
	}
	if !reflect.DeepEqual(first.PatternOrder, second.PatternOrder) || first.LoopPoint != second.LoopPoint {
		t.Errorf("order changed in a round trip")
	}
	if !reflect.DeepEqual(first.Samples, second.Samples) || !reflect.DeepEqual(first.Ornaments, second.Ornaments) {
		t.Errorf("samples or ornaments changed in a round trip:\n%s", buf.String())
	}
	if first.InitialSpeed != second.InitialSpeed || first.ChipClock != second.ChipClock || first.TicksPerSecond != second.TicksPerSecond {
		t.Errorf("module settings changed in a round trip")
	}
	// the second row of pattern 0 keeps the previous volume on channel B
	if v := second.Patterns[0].Row(1, 1).Volume; v != 0 {
		t.Errorf("sticky volume should stay 0 after a round trip, got %d", v)
	}
}

func TestEncodeGeneratedSong(t *testing.T) {
	song := aytracker.GenerateTestSong()
	var buf bytes.Buffer
	if err := vt2.Encode(&buf, song); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, _ := decode(t, buf.String())
	for i, p := range song.Patterns {
		for c := 0; c < aytracker.NumChannels; c++ {
			for r := 0; r < p.Length; r++ {
				a, b := p.Row(c, r), back.Patterns[i].Row(c, r)
				if a.Note != b.Note || a.Volume != b.Volume {
					t.Fatalf("pattern %d channel %d row %d: %+v became %+v", i, c, r, a, b)
				}
			}
		}
	}
}
