package aytracker_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aytracker/aytracker"
	"gopkg.in/yaml.v3"
)

func TestLowerPattern(t *testing.T) {
	ip := aytracker.ImportPattern{
		ID: 3,
		Rows: [][aytracker.NumChannels]aytracker.ImportRow{
			{
				{Note: "C-4", Instrument: 1, EnvelopeShape: 2, Ornament: 4, Volume: 7, Effect: "...."},
				{Note: "X-1", Effect: "Q123"},
				{Note: "---", Volume: 0x1F, Effect: "B012"},
			},
			{},
		},
		EnvelopeValues: []int{0x1234, 0},
		NoiseValues:    []int{0x1F},
	}
	var warnings int
	p := ip.Lower(func(row, channel int, format string, args ...any) { warnings++ })
	if err := p.Validate(); err != nil {
		t.Fatalf("lowered pattern is invalid: %v", err)
	}
	if p.ID != 3 || p.Length != 2 {
		t.Fatalf("unexpected id/length %d/%d", p.ID, p.Length)
	}
	want := aytracker.Row{Note: aytracker.Note{Name: aytracker.NoteC, Octave: 4}, Instrument: 1, EnvelopeShape: 2, Ornament: 4, Volume: 7}
	if got := p.Row(0, 0); !reflect.DeepEqual(got, want) {
		t.Errorf("channel A row 0 = %+v, expected %+v", got, want)
	}
	if got := p.Row(1, 0); got.Note.Name != aytracker.NoteNone || got.Effect != nil {
		t.Errorf("unmapped tokens should lower to no note and no effect, got %+v", got)
	}
	if got := p.Row(2, 0); got.Volume != 0xF || got.Effect == nil || got.Effect.Kind != aytracker.EffectArpeggio {
		t.Errorf("channel C row 0 = %+v", got)
	}
	if warnings != 2 {
		t.Errorf("expected 2 warnings, got %d", warnings)
	}
	if p.PatternRows[0].EnvelopeValue != 0x1234 || p.PatternRows[0].NoiseValue != 0x1F || p.PatternRows[1].NoiseValue != 0 {
		t.Errorf("unexpected pattern rows %+v", p.PatternRows)
	}
}

func TestSongValidate(t *testing.T) {
	song := aytracker.GenerateTestSong()
	if err := song.Validate(); err != nil {
		t.Fatalf("test song should be valid: %v", err)
	}
	song.PatternOrder = append(song.PatternOrder, 17)
	var rangeErr *aytracker.RangeError
	if err := song.Validate(); !errors.As(err, &rangeErr) || rangeErr.Index != 17 {
		t.Errorf("expected a RangeError for pattern 17, got %v", err)
	}
	song.PatternOrder = aytracker.Order{0}
	song.LoopPoint = 1
	if err := song.Validate(); !errors.As(err, &rangeErr) {
		t.Errorf("expected a RangeError for the loop point, got %v", err)
	}
	song.LoopPoint = 0
	song.Patterns[0].Channels[1].Rows = song.Patterns[0].Channels[1].Rows[:3]
	if err := song.Validate(); err == nil {
		t.Errorf("expected an error for mismatched channel lengths")
	}
}

func TestSongCopyIsDeep(t *testing.T) {
	song := aytracker.GenerateTestSong()
	c := song.Copy()
	c.Patterns[0].Channels[0].Rows[0].Volume = 1
	c.PatternOrder[0] = 5
	c.TuningTable[0] = 1
	if song.Patterns[0].Channels[0].Rows[0].Volume == 1 || song.PatternOrder[0] == 5 || song.TuningTable[0] == 1 {
		t.Errorf("Copy shares memory with the original")
	}
}

func TestSongYAMLRoundTrip(t *testing.T) {
	song := aytracker.GenerateTestSong()
	out, err := yaml.Marshal(song)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	var back aytracker.Song
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(song.Patterns, back.Patterns) {
		t.Errorf("patterns changed in a yaml round trip")
	}
	if !reflect.DeepEqual(song.PatternOrder, back.PatternOrder) || back.LoopPoint != song.LoopPoint {
		t.Errorf("order changed in a yaml round trip")
	}
}

func TestGenerateTestSong(t *testing.T) {
	song := aytracker.GenerateTestSong()
	if len(song.Patterns) != 6 {
		t.Fatalf("expected 6 patterns, got %d", len(song.Patterns))
	}
	if song.LoopPoint != 1 {
		t.Errorf("expected loop point 1, got %d", song.LoopPoint)
	}
	intro := song.Patterns[0]
	if r := intro.Row(0, 0); r.Note != (aytracker.Note{Name: aytracker.NoteC, Octave: 4}) || r.Volume != 0xa {
		t.Errorf("intro lead row 0 = %+v", r)
	}
	if r := intro.Row(0, 12); r.Note.Name != aytracker.NoteOff {
		t.Errorf("intro lead row 12 should be a note off, got %+v", r)
	}
	if intro.PatternRows[16].EnvelopeValue != 0x3e || intro.PatternRows[32].EnvelopeEffect == nil {
		t.Errorf("intro pattern rows missing envelope data")
	}
}
