package aytracker

import (
	"fmt"
	"strings"
)

type (
	// ChipDevice is the register-level interface of a three channel AY/YM
	// sound chip. The sequencer drives the chip only through these calls and
	// knows nothing about how it synthesizes sound. Channels are 0 (A), 1 (B)
	// and 2 (C).
	ChipDevice interface {
		// Configure sets the chip clock and the output sample rate and resets
		// the chip.
		Configure(clockHz, sampleRate int) error
		// SetPan places a channel in the stereo field, 0 = left, 1 = right.
		// With equalPower the constant power law is used instead of the
		// linear one.
		SetPan(channel int, pan float64, equalPower bool)
		SetTone(channel int, period int)
		SetMixer(channel int, toneOff, noiseOff, envelope bool)
		SetVolume(channel int, level int)
		SetNoise(period int)
		SetEnvelope(period int)
		SetEnvelopeShape(shape int)
		// Process advances the chip by one output sample.
		Process()
		// RemoveDC filters the DC offset out of the last output sample.
		RemoveDC()
		// Output returns the last output sample.
		Output() (left, right float64)
	}

	// ChipType selects the DAC curve of the chip.
	ChipType int

	// StereoLayout places the three channels in the stereo field.
	StereoLayout [NumChannels]float64
)

const (
	ChipAY ChipType = iota
	ChipYM
)

var (
	// StereoABC is the usual ZX Spectrum layout: A left, B center, C right.
	StereoABC  = StereoLayout{0.1, 0.5, 0.9}
	StereoACB  = StereoLayout{0.1, 0.9, 0.5}
	StereoMono = StereoLayout{0.5, 0.5, 0.5}
)

// ParseStereoLayout parses "ABC", "ACB" or "mono".
func ParseStereoLayout(s string) (StereoLayout, error) {
	switch strings.ToLower(s) {
	case "", "abc":
		return StereoABC, nil
	case "acb":
		return StereoACB, nil
	case "mono":
		return StereoMono, nil
	}
	return StereoLayout{}, fmt.Errorf("unknown stereo layout %q (want ABC, ACB or mono)", s)
}

// Apply pans every channel of the device according to the layout.
func (l StereoLayout) Apply(dev ChipDevice, equalPower bool) {
	for c, pan := range l {
		dev.SetPan(c, pan, equalPower)
	}
}

func (t ChipType) String() string {
	if t == ChipYM {
		return "YM"
	}
	return "AY"
}

// ParseChipType accepts "AY" and "YM" in any case.
func ParseChipType(s string) (ChipType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AY":
		return ChipAY, nil
	case "YM":
		return ChipYM, nil
	}
	return ChipAY, fmt.Errorf("unknown chip type %q", s)
}

// GuessChipType looks for "ym" in the title or author of a module. This is a
// heuristic: nothing in the module formats records the chip type.
func GuessChipType(title, author string) ChipType {
	if strings.Contains(strings.ToLower(title), "ym") || strings.Contains(strings.ToLower(author), "ym") {
		return ChipYM
	}
	return ChipAY
}

func (t ChipType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ChipType) UnmarshalText(text []byte) error {
	v, err := ParseChipType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
