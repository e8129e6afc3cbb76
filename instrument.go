package aytracker

type (
	// Sample is a per-tick envelope of tone, noise and volume data, selected
	// by the Instrument field of a Row. The sequencer does not play samples;
	// they are carried so that modules can be converted without loss.
	Sample struct {
		ID    int
		Lines []SampleLine `yaml:",flow"`
		// Loop is the line index where the sample restarts after its last
		// line, or -1 if the sample does not loop.
		Loop int
	}

	// SampleLine is one tick of a Sample.
	SampleLine struct {
		Tone     bool `yaml:",omitempty"`
		Noise    bool `yaml:",omitempty"`
		Envelope bool `yaml:",omitempty"`
		ToneAdd  int  `yaml:",omitempty"`
		NoiseAdd int  `yaml:",omitempty"`
		Volume   int  `yaml:",omitempty"`
	}

	// Ornament is a per-tick sequence of semitone offsets applied while a
	// note plays.
	Ornament struct {
		ID      int
		Offsets []int `yaml:",flow"`
		// Loop is the offset index where the ornament restarts, or -1.
		Loop int
	}
)

// Copy makes a deep copy of a Sample.
func (s Sample) Copy() Sample {
	s.Lines = append([]SampleLine(nil), s.Lines...)
	return s
}

// Copy makes a deep copy of an Ornament.
func (o Ornament) Copy() Ornament {
	o.Offsets = append([]int(nil), o.Offsets...)
	return o
}

// Looped reports whether the sample restarts after its last line.
func (s Sample) Looped() bool {
	return s.Loop >= 0 && s.Loop < len(s.Lines)
}

// Looped reports whether the ornament restarts after its last offset.
func (o Ornament) Looped() bool {
	return o.Loop >= 0 && o.Loop < len(o.Offsets)
}
