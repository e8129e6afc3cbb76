package tracker_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/tracker"
)

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]tracker.Format{
		"a.pt3":      tracker.FormatPT3,
		"b.PT3":      tracker.FormatPT3,
		"c.txt":      tracker.FormatVT2,
		"d.vt2":      tracker.FormatVT2,
		"dir/e.yaml": tracker.FormatYAML,
		"f.yml":      tracker.FormatYAML,
		"g.json":     tracker.FormatJSON,
	} {
		got, err := tracker.FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	_, err := tracker.FormatFromPath("song.mod")
	if ftag.Get(err) != ftag.InvalidArgument {
		t.Errorf("FormatFromPath(song.mod) error = %v, want an InvalidArgument", err)
	}
}

func TestSaveAndLoadSong(t *testing.T) {
	song := aytracker.GenerateTestSong()
	for _, tc := range []struct {
		name string
		// VT2 has no envelope effects in its pattern rows
		lossless bool
	}{
		{"song.yml", true},
		{"song.json", true},
		{"song.vt2", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			if err := tracker.SaveSong(path, song); err != nil {
				t.Fatalf("SaveSong failed: %v", err)
			}
			got, err := tracker.LoadSong(path, tracker.LoadOptions{})
			if err != nil {
				t.Fatalf("LoadSong failed: %v", err)
			}
			if !reflect.DeepEqual(got.PatternOrder, song.PatternOrder) {
				t.Errorf("order = %v, want %v", got.PatternOrder, song.PatternOrder)
			}
			if got.LoopPoint != song.LoopPoint || got.Title != song.Title {
				t.Errorf("loop point %d title %q, want %d %q", got.LoopPoint, got.Title, song.LoopPoint, song.Title)
			}
			if tc.lossless && !reflect.DeepEqual(got.Patterns, song.Patterns) {
				t.Error("patterns differ after a round trip")
			}
			for i, p := range song.Patterns {
				for c := 0; c < aytracker.NumChannels; c++ {
					for r := 0; r < p.Length; r++ {
						if a, b := p.Row(c, r), got.Patterns[i].Row(c, r); a.Note != b.Note || a.Volume != b.Volume {
							t.Fatalf("pattern %d channel %d row %d: %+v became %+v", i, c, r, a, b)
						}
					}
				}
			}
		})
	}
}

func TestLoadSongErrors(t *testing.T) {
	_, err := tracker.LoadSong(filepath.Join(t.TempDir(), "missing.yml"), tracker.LoadOptions{})
	if ftag.Get(err) != ftag.NotFound {
		t.Errorf("missing file error = %v, want NotFound", err)
	}
	_, err = tracker.ReadSong(strings.NewReader("not a module"), tracker.FormatPT3, tracker.LoadOptions{})
	var formatErr *aytracker.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("ReadSong(garbage) error = %v, want a FormatError", err)
	}
	if ftag.Get(err) != ftag.InvalidArgument {
		t.Errorf("ReadSong(garbage) tag = %v, want InvalidArgument", ftag.Get(err))
	}
	_, err = tracker.ReadSong(strings.NewReader("patternorder: [3]\n"), tracker.FormatYAML, tracker.LoadOptions{})
	var rangeErr *aytracker.RangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("ReadSong(bad order) error = %v, want a RangeError", err)
	}
}

func TestWriteSongPT3Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := tracker.WriteSong(&buf, tracker.FormatPT3, aytracker.NewSong()); err == nil {
		t.Error("WriteSong wrote a PT3 file")
	}
}
