package ay_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/ay"
)

const sampleRate = 44100

func newChip(t *testing.T, ct aytracker.ChipType) *ay.Chip {
	t.Helper()
	c := ay.New(ct)
	if err := c.Configure(aytracker.DefaultChipClock, sampleRate); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return c
}

func TestUnconfiguredIsSilent(t *testing.T) {
	var c ay.Chip
	c.SetTone(0, 100)
	c.SetMixer(0, false, true, false)
	c.SetVolume(0, 15)
	for i := 0; i < 1000; i++ {
		c.Process()
		c.RemoveDC()
		if l, r := c.Output(); l != 0 || r != 0 {
			t.Fatalf("sample %d: unconfigured chip produced %v %v", i, l, r)
		}
	}
}

func TestConfigureRejectsBadRates(t *testing.T) {
	c := ay.New(aytracker.ChipAY)
	var devErr *aytracker.DeviceError
	if err := c.Configure(0, sampleRate); !errors.As(err, &devErr) {
		t.Errorf("expected a DeviceError for a zero clock, got %v", err)
	}
	if err := c.Configure(1000, sampleRate); !errors.As(err, &devErr) {
		t.Errorf("expected a DeviceError for a too low clock, got %v", err)
	}
}

func TestToneFrequency(t *testing.T) {
	c := newChip(t, aytracker.ChipAY)
	c.SetPan(0, 0.5, false)
	c.SetTone(0, 252) // 1773400 / (16 * 252) = 439.8 Hz
	c.SetMixer(0, false, true, false)
	c.SetVolume(0, 15)
	high := false
	rising := 0
	for i := 0; i < sampleRate; i++ {
		c.Process()
		l, _ := c.Output()
		if !high && l > 0.25 {
			rising++
		}
		high = l > 0.25
	}
	if rising < 436 || rising > 444 {
		t.Errorf("expected about 440 cycles per second, got %d", rising)
	}
}

func TestMixerOffGivesConstantLevel(t *testing.T) {
	c := newChip(t, aytracker.ChipAY)
	c.SetPan(1, 0, false)
	c.SetMixer(1, true, true, false)
	c.SetVolume(1, 15)
	for i := 0; i < 100; i++ {
		c.Process()
	}
	l, r := c.Output()
	if math.Abs(l-1) > 1e-9 || r != 0 {
		t.Errorf("expected full level on the left only, got %v %v", l, r)
	}
}

func TestVolumeZeroIsSilent(t *testing.T) {
	c := newChip(t, aytracker.ChipYM)
	c.SetMixer(2, true, true, false)
	c.SetVolume(2, 0)
	c.Process()
	if l, r := c.Output(); l != 0 || r != 0 {
		t.Errorf("volume 0 should be silent, got %v %v", l, r)
	}
}

func TestEnvelopeHolds(t *testing.T) {
	cases := []struct {
		shape int
		want  float64
	}{
		{9, 0},  // decay, then hold at the bottom
		{13, 1}, // attack, then hold at the top
	}
	for _, tc := range cases {
		c := newChip(t, aytracker.ChipAY)
		c.SetPan(0, 0, false)
		c.SetMixer(0, true, true, true)
		c.SetEnvelope(1)
		c.SetEnvelopeShape(tc.shape)
		for i := 0; i < 1000; i++ {
			c.Process()
		}
		if l, _ := c.Output(); math.Abs(l-tc.want) > 1e-9 {
			t.Errorf("shape %d: expected level %v after the envelope finished, got %v", tc.shape, tc.want, l)
		}
	}
}

func TestNoiseToggles(t *testing.T) {
	c := newChip(t, aytracker.ChipAY)
	c.SetMixer(0, true, false, false)
	c.SetVolume(0, 15)
	c.SetNoise(1)
	seen := map[bool]bool{}
	for i := 0; i < 2000; i++ {
		c.Process()
		l, _ := c.Output()
		seen[l > 0.25] = true
	}
	if !seen[true] || !seen[false] {
		t.Errorf("noise output should alternate between levels")
	}
}

func TestRemoveDC(t *testing.T) {
	c := newChip(t, aytracker.ChipAY)
	c.SetMixer(0, true, true, false)
	c.SetVolume(0, 15)
	var l float64
	for i := 0; i < sampleRate; i++ {
		c.Process()
		c.RemoveDC()
		l, _ = c.Output()
	}
	if math.Abs(l) > 1e-3 {
		t.Errorf("constant output should decay to zero after DC removal, got %v", l)
	}
}
