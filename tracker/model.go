package tracker

import (
	"errors"
	"fmt"

	"github.com/aytracker/aytracker"
)

type (
	// Model is the transport controller. It runs on the controlling
	// goroutine, owns the song being played and talks to the Player only
	// through the Broker. Model is not safe for concurrent use.
	Model struct {
		broker *Broker
		config Config

		song     *aytracker.Song
		sent     []*aytracker.Pattern // the pattern slice the player has
		lazy     bool
		playing  bool
		position aytracker.SongPos
		loops    int
		speed    int
		level    Level
		alerts   []Alert
	}

	// PlayOptions selects where playback starts. Zero values start from the
	// first order entry at the song's initial speed.
	PlayOptions struct {
		StartOrder int
		StartSpeed int
		// Lazy sends only the patterns of the first two order entries with
		// the play message; the rest are sent when the player asks for them.
		Lazy bool
	}
)

func NewModel(broker *Broker, config Config) *Model {
	return &Model{broker: broker, config: config}
}

// Init configures the chip device and hands it over to the player. The
// caller must not use the device afterwards.
func (m *Model) Init(dev aytracker.ChipDevice, sampleRate int) error {
	if dev == nil {
		return &aytracker.DeviceError{Op: "init", Err: errors.New("no chip device")}
	}
	clock := m.config.ChipClock
	if clock <= 0 {
		clock = aytracker.DefaultChipClock
	}
	if err := dev.Configure(clock, sampleRate); err != nil {
		return err
	}
	stereo := m.config.StereoLayout()
	stereo.Apply(dev, m.config.EqualPowerPan)
	m.broker.ToPlayer <- InitMsg{
		Device:     dev,
		SampleRate: sampleRate,
		ChipClock:  clock,
		Stereo:     stereo,
		EqualPower: m.config.EqualPowerPan,
	}
	return nil
}

// Play starts playing a copy of song. Later changes to song do not affect
// playback; use SetPattern, SetPatternOrder and SetTuningTable for that.
func (m *Model) Play(song *aytracker.Song, opts PlayOptions) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("cannot play song: %w", err)
	}
	m.song = song.Copy()
	m.lazy = opts.Lazy
	snap := SnapshotFromSong(m.song)
	if m.config.ChipClock > 0 {
		snap.ChipClock = m.config.ChipClock
	} else if snap.ChipClock <= 0 {
		snap.ChipClock = aytracker.DefaultChipClock
	}
	if m.config.TicksPerSecond > 0 {
		snap.TicksPerSecond = m.config.TicksPerSecond
	}
	if m.lazy {
		m.sent = make([]*aytracker.Pattern, len(m.song.Patterns))
		start := opts.StartOrder
		if start < 0 || start >= len(m.song.PatternOrder) {
			start = 0
		}
		// requests are answered one buffer late, so the pattern after the
		// start pattern goes with the play message
		for _, i := range []int{start, m.nextOrder(start)} {
			idx := m.song.PatternOrder[i]
			m.sent[idx] = m.song.Patterns[idx]
		}
		snap.Patterns = m.sent
	} else {
		m.sent = m.song.Patterns
	}
	m.playing = true
	m.position = aytracker.SongPos{OrderIndex: max(opts.StartOrder, 0)}
	m.loops = 0
	m.broker.ToPlayer <- PlayMsg{
		Snapshot:   snap,
		StartOrder: opts.StartOrder,
		StartSpeed: opts.StartSpeed,
		StopSeq:    m.broker.StopSeq(),
	}
	return nil
}

func (m *Model) nextOrder(orderIndex int) int {
	order, loop := m.song.PatternOrder, m.song.LoopPoint
	if orderIndex+1 < len(order) {
		return orderIndex + 1
	}
	if m.config.RestartAtLoopPoint && loop > 0 && loop < len(order) {
		return loop
	}
	return 0
}

// Stop stops the player at the next sample boundary.
func (m *Model) Stop() {
	m.broker.RequestStop()
	m.playing = false
}

// SetPatternOrder replaces the order of the playing song.
func (m *Model) SetPatternOrder(order aytracker.Order) error {
	if m.song == nil {
		return errors.New("nothing is playing")
	}
	for i, idx := range order {
		if idx < 0 || idx >= len(m.song.Patterns) {
			return &aytracker.RangeError{What: fmt.Sprintf("pattern order entry %d", i), Index: idx, Len: len(m.song.Patterns)}
		}
	}
	m.song.PatternOrder = order.Copy()
	m.broker.ToPlayer <- PatternOrderMsg{Order: order.Copy()}
	return nil
}

// SetPattern replaces one pattern of the playing song. The player gets a
// new pattern slice; the one it is reading is never modified.
func (m *Model) SetPattern(index int, p *aytracker.Pattern) error {
	if m.song == nil {
		return errors.New("nothing is playing")
	}
	if index < 0 || index >= len(m.song.Patterns) {
		return &aytracker.RangeError{What: "pattern", Index: index, Len: len(m.song.Patterns)}
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.Copy()
	m.song.Patterns = append([]*aytracker.Pattern(nil), m.song.Patterns...)
	m.song.Patterns[index] = p
	m.sendPattern(index, p)
	return nil
}

// SetTuningTable replaces the tuning table of the playing song.
func (m *Model) SetTuningTable(table aytracker.TuningTable) error {
	if m.song == nil {
		return errors.New("nothing is playing")
	}
	m.song.TuningTable = table.Copy()
	m.broker.ToPlayer <- TuningTableMsg{Table: table.Copy()}
	return nil
}

func (m *Model) sendPattern(index int, p *aytracker.Pattern) {
	sent := append([]*aytracker.Pattern(nil), m.sent...)
	sent[index] = p
	m.sent = sent
	m.broker.ToPlayer <- PatternsMsg{Patterns: sent}
}

// ProcessMsg handles a message from the player.
func (m *Model) ProcessMsg(msg MsgToModel) {
	m.playing = msg.Playing
	if msg.HasPosition {
		m.position = msg.Position
		m.speed = msg.Speed
		m.loops = msg.Loops
	}
	if msg.HasLevel {
		m.level = msg.Level
	}
	if msg.HasPatternRequest {
		m.answerPatternRequest(msg.PatternRequest)
	}
	if alert, ok := msg.Data.(Alert); ok {
		m.addAlert(alert)
	}
}

func (m *Model) answerPatternRequest(index int) {
	if m.song == nil || index < 0 || index >= len(m.song.Patterns) {
		m.addAlert(Alert{Name: "PatternRequest", Priority: Warning, Message: fmt.Sprintf("player requested unknown pattern %d", index), Duration: defaultAlertDuration})
		return
	}
	if m.sent[index] == m.song.Patterns[index] {
		return
	}
	m.sendPattern(index, m.song.Patterns[index])
}

func (m *Model) addAlert(a Alert) {
	for i := range m.alerts {
		if m.alerts[i].Name == a.Name {
			m.alerts[i] = a
			return
		}
	}
	m.alerts = append(m.alerts, a)
}

func (m *Model) Playing() bool               { return m.playing }
func (m *Model) Position() aytracker.SongPos { return m.position }
func (m *Model) Speed() int                  { return m.speed }
func (m *Model) Loops() int                  { return m.loops }
func (m *Model) Level() Level                { return m.level }
func (m *Model) Config() Config              { return m.config }

// Alerts returns the alerts received so far and clears them.
func (m *Model) Alerts() []Alert {
	ret := m.alerts
	m.alerts = nil
	return ret
}
