package tracker_test

import (
	"math"
	"testing"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/ay"
	"github.com/aytracker/aytracker/tracker"
)

func TestRenderStopsWhenOrderWraps(t *testing.T) {
	song := twoPatternSong()
	rec := &recorder{}
	cfg := tracker.DefaultConfig()
	cfg.SampleRate = 500
	buf, err := tracker.Render(song, rec, cfg, 0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// 2 patterns * 2 rows * 3 ticks * 10 samples
	if len(buf) != 120 {
		t.Errorf("rendered %d samples, want 120", len(buf))
	}
	if rec.clock != aytracker.DefaultChipClock || rec.rate != 500 {
		t.Errorf("device configured with %d Hz / %d Hz", rec.clock, rec.rate)
	}
}

func TestRenderMaxSeconds(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.SampleRate = 500
	buf, err := tracker.Render(aytracker.GenerateTestSong(), &recorder{}, cfg, 0.5)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(buf) != 250 {
		t.Errorf("rendered %d samples, want 250", len(buf))
	}
}

func TestRenderProducesSound(t *testing.T) {
	cfg := tracker.DefaultConfig()
	buf, err := tracker.Render(aytracker.GenerateTestSong(), ay.New(aytracker.ChipAY), cfg, 1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var meter tracker.LevelMeter
	level := meter.Update(buf)
	for chn, rms := range level.RMS {
		if rms <= tracker.Silence || math.IsNaN(float64(rms)) {
			t.Errorf("channel %d is silent: %v dB", chn, rms)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	song := twoPatternSong()
	if _, err := tracker.Render(song, nil, tracker.DefaultConfig(), 1); err == nil {
		t.Error("Render accepted a nil device")
	}
	song.PatternOrder = nil
	if _, err := tracker.Render(song, &recorder{}, tracker.DefaultConfig(), 1); err == nil {
		t.Error("Render accepted an empty order")
	}
}
