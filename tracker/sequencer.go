package tracker

import (
	"github.com/aytracker/aytracker"
)

type (
	// SequencerState is the complete playback position of a Sequencer.
	// SampleCounter counts the samples rendered in the current tick; a tick
	// runs whenever it is zero at the start of a sample.
	SequencerState struct {
		Playing       bool
		OrderIndex    int
		Row           int
		Tick          int
		Speed         int
		SampleCounter int
		// Loops counts how many times the pattern order has wrapped.
		Loops int

		Volumes  [aytracker.NumChannels]int
		Muted    [aytracker.NumChannels]bool
		Envelope [aytracker.NumChannels]bool
	}

	// Snapshot is the part of a song the sequencer reads. It is never
	// modified by the sequencer; the owner replaces whole fields instead.
	// A nil entry in Patterns is a pattern that has not been streamed yet.
	Snapshot struct {
		Patterns       []*aytracker.Pattern
		Order          aytracker.Order
		Tuning         aytracker.TuningTable
		InitialSpeed   int
		LoopPoint      int
		TicksPerSecond int
		ChipClock      int
	}

	// SequencerListener receives the events of a Sequencer while it renders.
	// The calls happen inside the render loop, so they must not block.
	SequencerListener interface {
		// RowStarted is called once per row, after the row has been applied.
		RowStarted(pos aytracker.SongPos, speed int)
		// PatternNeeded is called when the order points to a pattern that is
		// not in the snapshot.
		PatternNeeded(pattern int)
		// StopRequested is polled before every sample while playing.
		StopRequested() bool
	}

	// Sequencer advances musical time sample by sample and writes the
	// registers of a chip device on every tick. It is not safe for
	// concurrent use; the player owns it on the audio goroutine.
	Sequencer struct {
		State SequencerState

		snapshot           Snapshot
		sampleRate         int
		samplesPerTick     int
		restartAtLoopPoint bool
		fallback           *aytracker.Pattern
		requested          []bool
	}
)

// NewSequencer returns an idle sequencer rendering at sampleRate.
func NewSequencer(sampleRate int, restartAtLoopPoint bool) *Sequencer {
	s := &Sequencer{
		sampleRate:         sampleRate,
		restartAtLoopPoint: restartAtLoopPoint,
		fallback:           aytracker.NewPattern(-1, aytracker.DefaultPatternLength),
	}
	s.updateTiming()
	return s
}

// SnapshotFromSong builds a snapshot that shares the song's data. Callers
// that keep editing the song must pass a copy.
func SnapshotFromSong(song *aytracker.Song) Snapshot {
	return Snapshot{
		Patterns:       song.Patterns,
		Order:          song.PatternOrder,
		Tuning:         song.TuningTable,
		InitialSpeed:   song.InitialSpeed,
		LoopPoint:      song.LoopPoint,
		TicksPerSecond: song.TicksPerSecond,
		ChipClock:      song.ChipClock,
	}
}

// SamplesPerTick returns the number of samples rendered per tick.
func (s *Sequencer) SamplesPerTick() int {
	return s.samplesPerTick
}

// Snapshot returns the snapshot being played.
func (s *Sequencer) Snapshot() Snapshot {
	return s.snapshot
}

// SetSnapshot replaces the whole snapshot and forgets earlier pattern
// requests.
func (s *Sequencer) SetSnapshot(snap Snapshot) {
	s.snapshot = snap
	s.updateTiming()
	s.resetRequests()
}

// SetOrder replaces the pattern order.
func (s *Sequencer) SetOrder(order aytracker.Order) {
	s.snapshot.Order = order
	s.resetRequests()
}

// SetPatterns replaces the pattern slice; nil entries are requested again.
func (s *Sequencer) SetPatterns(patterns []*aytracker.Pattern) {
	s.snapshot.Patterns = patterns
	s.resetRequests()
}

// SetTuning replaces the tuning table used for new notes.
func (s *Sequencer) SetTuning(table aytracker.TuningTable) {
	s.snapshot.Tuning = table
}

// Play starts playback at startOrder (0 if out of range) with startSpeed
// ticks per row (the snapshot's initial speed if not positive). The mixer
// of every channel is opened for tone.
func (s *Sequencer) Play(dev aytracker.ChipDevice, startOrder, startSpeed int) {
	if startOrder < 0 || startOrder >= len(s.snapshot.Order) {
		startOrder = 0
	}
	speed := startSpeed
	if speed <= 0 {
		speed = s.snapshot.InitialSpeed
	}
	if speed <= 0 {
		speed = aytracker.DefaultSpeed
	}
	s.State = SequencerState{
		Playing:    true,
		OrderIndex: startOrder,
		Speed:      speed,
	}
	if dev == nil {
		return
	}
	for c := 0; c < aytracker.NumChannels; c++ {
		dev.SetMixer(c, false, true, false)
		dev.SetVolume(c, 0)
	}
}

// Stop mutes every channel and returns to idle.
func (s *Sequencer) Stop(dev aytracker.ChipDevice) {
	s.State.Playing = false
	s.State.Volumes = [aytracker.NumChannels]int{}
	if dev == nil {
		return
	}
	for c := 0; c < aytracker.NumChannels; c++ {
		s.State.Muted[c] = true
		s.State.Envelope[c] = false
		dev.SetMixer(c, true, true, false)
		dev.SetVolume(c, 0)
	}
}

// Render fills buf sample by sample. Tick boundaries depend only on the
// number of samples rendered since Play, never on the size of buf. With a
// nil device the buffer is filled with silence and time does not advance.
func (s *Sequencer) Render(dev aytracker.ChipDevice, buf aytracker.AudioBuffer, l SequencerListener) {
	if dev == nil {
		buf.Fill([2]float32{})
		return
	}
	for i := range buf {
		if s.State.Playing && l != nil && l.StopRequested() {
			s.Stop(dev)
		}
		if s.State.Playing {
			if s.State.SampleCounter == 0 {
				s.tick(dev, l)
			}
			s.State.SampleCounter++
			if s.State.SampleCounter >= s.samplesPerTick {
				s.State.SampleCounter = 0
			}
		}
		dev.Process()
		dev.RemoveDC()
		left, right := dev.Output()
		buf[i] = [2]float32{float32(left), float32(right)}
	}
}

func (s *Sequencer) tick(dev aytracker.ChipDevice, l SequencerListener) {
	st := &s.State
	p := s.pattern(st.OrderIndex, l)
	if st.Tick == 0 && st.Row == 0 {
		// ask for the next pattern a whole pattern ahead
		s.pattern(s.nextOrder(st.OrderIndex), l)
	}
	if st.Tick == 0 {
		s.applyRow(dev, p, st.Row)
		if l != nil {
			l.RowStarted(aytracker.SongPos{OrderIndex: st.OrderIndex, Row: st.Row}, st.Speed)
		}
	}
	st.Tick++
	if st.Tick >= st.Speed {
		st.Tick = 0
		st.Row++
	}
	if st.Row >= p.Length {
		st.Row = 0
		if st.OrderIndex+1 >= len(s.snapshot.Order) {
			st.Loops++
		}
		st.OrderIndex = s.nextOrder(st.OrderIndex)
	}
}

// nextOrder returns the order index played after orderIndex.
func (s *Sequencer) nextOrder(orderIndex int) int {
	next := orderIndex + 1
	if next < len(s.snapshot.Order) {
		return next
	}
	if s.restartAtLoopPoint && s.snapshot.LoopPoint > 0 && s.snapshot.LoopPoint < len(s.snapshot.Order) {
		return s.snapshot.LoopPoint
	}
	return 0
}

func (s *Sequencer) applyRow(dev aytracker.ChipDevice, p *aytracker.Pattern, row int) {
	st := &s.State
	for c := 0; c < aytracker.NumChannels; c++ {
		r := p.Row(c, row)
		mixer := false
		switch {
		case r.Note.Name == aytracker.NoteOff:
			st.Muted[c], st.Envelope[c] = true, false
			mixer = true
		case r.Note.Pitched():
			if period, ok := s.snapshot.Tuning.Lookup(r.Note); ok {
				dev.SetTone(c, period)
			}
			st.Muted[c] = false
			mixer = true
		}
		switch {
		case r.EnvelopeShape >= 1 && r.EnvelopeShape <= 14:
			dev.SetEnvelopeShape(r.EnvelopeShape)
			st.Envelope[c] = true
			mixer = true
		case r.EnvelopeShape == 15:
			st.Envelope[c] = false
			mixer = true
		}
		if mixer {
			dev.SetMixer(c, st.Muted[c], true, st.Envelope[c])
		}
		if r.Volume > 0 {
			st.Volumes[c] = r.Volume
		}
		dev.SetVolume(c, st.Volumes[c])
		if r.Effect != nil && r.Effect.Kind == aytracker.EffectSpeed && r.Effect.Parameter > 0 {
			st.Speed = int(r.Effect.Parameter)
		}
	}
	if row < len(p.PatternRows) {
		pr := p.PatternRows[row]
		if pr.EnvelopeValue > 0 {
			dev.SetEnvelope(pr.EnvelopeValue)
		}
		if pr.NoiseValue > 0 {
			dev.SetNoise(pr.NoiseValue)
		}
	}
}

// pattern returns the pattern at an order index, or an empty fallback
// pattern if it is not available. Missing patterns are requested from the
// listener once.
func (s *Sequencer) pattern(orderIndex int, l SequencerListener) *aytracker.Pattern {
	idx := s.snapshot.Order.Get(orderIndex)
	if idx >= 0 && idx < len(s.snapshot.Patterns) && s.snapshot.Patterns[idx] != nil {
		return s.snapshot.Patterns[idx]
	}
	if idx >= 0 && idx < len(s.requested) && !s.requested[idx] {
		s.requested[idx] = true
		if l != nil {
			l.PatternNeeded(idx)
		}
	}
	return s.fallback
}

func (s *Sequencer) updateTiming() {
	rate := s.snapshot.TicksPerSecond
	if rate <= 0 {
		rate = aytracker.DefaultTicksPerSecond
	}
	s.samplesPerTick = max(s.sampleRate/rate, 1)
}

func (s *Sequencer) resetRequests() {
	n := 0
	for _, idx := range s.snapshot.Order {
		n = max(n, idx+1)
	}
	if cap(s.requested) < n {
		s.requested = make([]bool, n)
	}
	s.requested = s.requested[:n]
	clear(s.requested)
}
