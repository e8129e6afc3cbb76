package aytracker

import (
	"errors"
	"fmt"
)

type (
	// Song is a complete tracker module: the patterns, the order in which they
	// are played, the tuning table used to convert notes into tone periods and
	// the metadata needed to configure the chip. A Song is produced once by a
	// decoder (or by GenerateTestSong) and is only ever read by the sequencer.
	Song struct {
		Title  string `yaml:",omitempty"`
		Author string `yaml:",omitempty"`

		// ChipType tells whether the song was written for the AY-3-8910 or the
		// YM2149; they differ in their volume curves.
		ChipType ChipType `yaml:",omitempty"`

		// ChipClock is the chip clock in Hz. Zero means DefaultChipClock.
		ChipClock int `yaml:",omitempty"`

		// TicksPerSecond is the interrupt rate that advances the song. Zero
		// means DefaultTicksPerSecond.
		TicksPerSecond int `yaml:",omitempty"`

		// InitialSpeed is the number of ticks per row when playback starts.
		InitialSpeed int

		// LoopPoint is the index in PatternOrder where playback resumes after
		// the order wraps (when the player honors it).
		LoopPoint int `yaml:",omitempty"`

		PatternOrder Order       `yaml:",flow"`
		TuningTable  TuningTable `yaml:",flow,omitempty"`
		Patterns     []*Pattern
		Samples      []Sample   `yaml:",omitempty"`
		Ornaments    []Ornament `yaml:",omitempty"`
	}

	// Pattern is a block of rows for the three chip channels. All channels and
	// the PatternRows slice have exactly Length entries.
	Pattern struct {
		ID          int
		Length      int
		Channels    [NumChannels]Channel
		PatternRows []PatternRow `yaml:",omitempty"`
	}

	// Channel is the sequence of rows for one chip channel (A, B or C).
	Channel struct {
		Rows []Row
	}

	// Row is the event of a single channel on a single row. A zero Volume
	// means "keep the previous volume of the channel"; silencing a channel is
	// done with a NoteOff note.
	Row struct {
		Note          Note    `yaml:",omitempty"`
		Instrument    int     `yaml:",omitempty"`
		Volume        int     `yaml:",omitempty"`
		Ornament      int     `yaml:",omitempty"`
		EnvelopeShape int     `yaml:",omitempty"`
		Effect        *Effect `yaml:",omitempty"`
	}

	// PatternRow holds the per-row fields shared by all three channels: the
	// hardware envelope period and the noise period.
	PatternRow struct {
		EnvelopeValue  int     `yaml:",omitempty"`
		EnvelopeEffect *Effect `yaml:",omitempty"`
		NoiseValue     int     `yaml:",omitempty"`
	}

	// Order is the pattern order of a song, in practice just a slice of
	// integers, but provides convenience functions that return -1 values for
	// indices out of bounds of the array, and functions to increase the size
	// of the slice only by necessary amount when a new item is added, filling
	// the unused slots with -1s.
	Order []int

	// SongPos represents a position in a song, in terms of the index in the
	// pattern order and the row inside that pattern.
	SongPos struct {
		OrderIndex int
		Row        int
	}
)

const (
	NumChannels           = 3
	DefaultPatternLength  = 64
	MaxPatternLength      = 256
	MaxPatterns           = 256
	DefaultSpeed          = 6
	DefaultChipClock      = 1773400
	DefaultTicksPerSecond = 50
)

var channelLabels = [NumChannels]string{"A", "B", "C"}

// ChannelLabel returns the conventional name of a chip channel: A, B or C.
func ChannelLabel(channel int) string {
	if channel < 0 || channel >= NumChannels {
		return "?"
	}
	return channelLabels[channel]
}

// NewSong returns a song with a single empty pattern of DefaultPatternLength
// rows.
func NewSong() *Song {
	return &Song{
		Title:        "New Song",
		InitialSpeed: DefaultSpeed,
		PatternOrder: Order{0},
		TuningTable:  DefaultTuningTable(),
		Patterns:     []*Pattern{NewPattern(0, DefaultPatternLength)},
	}
}

// NewPattern allocates a pattern with all channels and pattern rows set to
// the given length.
func NewPattern(id, length int) *Pattern {
	if length < 0 {
		length = 0
	}
	p := &Pattern{ID: id, Length: length, PatternRows: make([]PatternRow, length)}
	for i := range p.Channels {
		p.Channels[i].Rows = make([]Row, length)
	}
	return p
}

// Get returns the value at index; or -1 is the index is out of range
func (s Order) Get(index int) int {
	if index < 0 || index >= len(s) {
		return -1
	}
	return s[index]
}

// Set sets the value at index; appending -1s until the slice is long enough.
func (s *Order) Set(index, value int) {
	for len(*s) <= index {
		*s = append(*s, -1)
	}
	(*s)[index] = value
}

// Copy returns a copy of the order that shares no memory with the original.
func (s Order) Copy() Order {
	if s == nil {
		return nil
	}
	return append(Order{}, s...)
}

// Row returns the row of a channel, or a zero row if the index is out of
// range.
func (p *Pattern) Row(channel, row int) Row {
	if p == nil || channel < 0 || channel >= NumChannels || row < 0 || row >= len(p.Channels[channel].Rows) {
		return Row{}
	}
	return p.Channels[channel].Rows[row]
}

// Copy makes a deep copy of a Pattern.
func (p *Pattern) Copy() *Pattern {
	if p == nil {
		return nil
	}
	ret := &Pattern{ID: p.ID, Length: p.Length, PatternRows: make([]PatternRow, len(p.PatternRows))}
	for i, pr := range p.PatternRows {
		pr.EnvelopeEffect = pr.EnvelopeEffect.Copy()
		ret.PatternRows[i] = pr
	}
	for c := range p.Channels {
		rows := make([]Row, len(p.Channels[c].Rows))
		for i, r := range p.Channels[c].Rows {
			r.Effect = r.Effect.Copy()
			rows[i] = r
		}
		ret.Channels[c].Rows = rows
	}
	return ret
}

// Validate checks that the three channels and the pattern rows all have
// Length entries.
func (p *Pattern) Validate() error {
	if p == nil {
		return errors.New("pattern is nil")
	}
	if p.Length < 0 || p.Length > MaxPatternLength {
		return fmt.Errorf("pattern %d: length %d out of range 0..%d", p.ID, p.Length, MaxPatternLength)
	}
	if len(p.PatternRows) != p.Length {
		return fmt.Errorf("pattern %d: %d pattern rows, expected %d", p.ID, len(p.PatternRows), p.Length)
	}
	for c := range p.Channels {
		if l := len(p.Channels[c].Rows); l != p.Length {
			return fmt.Errorf("pattern %d: channel %s has %d rows, expected %d", p.ID, ChannelLabel(c), l, p.Length)
		}
		for i, r := range p.Channels[c].Rows {
			if r.Volume < 0 || r.Volume > 15 {
				return fmt.Errorf("pattern %d: channel %s row %d: volume %d out of range 0..15", p.ID, ChannelLabel(c), i, r.Volume)
			}
		}
	}
	return nil
}

// PatternAt returns the pattern played at the given order index, or nil if
// the order index or the pattern index is out of range.
func (s *Song) PatternAt(orderIndex int) *Pattern {
	idx := s.PatternOrder.Get(orderIndex)
	if idx < 0 || idx >= len(s.Patterns) {
		return nil
	}
	return s.Patterns[idx]
}

// Speed returns InitialSpeed, or DefaultSpeed if it is not positive.
func (s *Song) Speed() int {
	if s.InitialSpeed <= 0 {
		return DefaultSpeed
	}
	return s.InitialSpeed
}

// Clock returns ChipClock, or DefaultChipClock if it is not set.
func (s *Song) Clock() int {
	if s.ChipClock <= 0 {
		return DefaultChipClock
	}
	return s.ChipClock
}

// TickRate returns TicksPerSecond, or DefaultTicksPerSecond if it is not set.
func (s *Song) TickRate() int {
	if s.TicksPerSecond <= 0 {
		return DefaultTicksPerSecond
	}
	return s.TicksPerSecond
}

// Copy makes a deep copy of a Song.
func (s *Song) Copy() *Song {
	ret := *s
	ret.PatternOrder = s.PatternOrder.Copy()
	ret.TuningTable = s.TuningTable.Copy()
	ret.Patterns = make([]*Pattern, len(s.Patterns))
	for i, p := range s.Patterns {
		ret.Patterns[i] = p.Copy()
	}
	ret.Samples = make([]Sample, len(s.Samples))
	for i, smp := range s.Samples {
		ret.Samples[i] = smp.Copy()
	}
	ret.Ornaments = make([]Ornament, len(s.Ornaments))
	for i, o := range s.Ornaments {
		ret.Ornaments[i] = o.Copy()
	}
	return &ret
}

// Validate checks if the Song looks like a valid song: every entry of the
// pattern order points to an existing pattern, the loop point is inside the
// order and every pattern has consistent lengths.
func (s *Song) Validate() error {
	if len(s.PatternOrder) == 0 {
		return errors.New("pattern order is empty")
	}
	for i, idx := range s.PatternOrder {
		if idx < 0 || idx >= len(s.Patterns) || s.Patterns[idx] == nil {
			return &RangeError{What: fmt.Sprintf("pattern order entry %d", i), Index: idx, Len: len(s.Patterns)}
		}
	}
	if s.LoopPoint < 0 || s.LoopPoint >= len(s.PatternOrder) {
		return &RangeError{What: "loop point", Index: s.LoopPoint, Len: len(s.PatternOrder)}
	}
	for _, p := range s.Patterns {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
