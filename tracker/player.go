package tracker

import (
	"fmt"

	"github.com/aytracker/aytracker"
)

type (
	// Player is the audio player for the tracker, run in a separate thread. It
	// is controlled by messages from the model through the broker, and sends
	// position updates, pattern requests and alerts back to the model. The
	// player never blocks and never allocates while rendering.
	Player struct {
		broker      *Broker
		seq         *Sequencer
		device      aytracker.ChipDevice
		sampleRate  int
		chipClock   int
		stereo      aytracker.StereoLayout
		equalPower  bool
		handledStop uint64
		meter       LevelMeter
	}
)

// NewPlayer returns a player that answers messages from the broker. The
// player renders silence until it receives an InitMsg.
func NewPlayer(broker *Broker, restartAtLoopPoint bool) *Player {
	return &Player{
		broker: broker,
		seq:    NewSequencer(0, restartAtLoopPoint),
	}
}

// Process renders audio to the given buffer. Messages from the model are
// handled at the start of the buffer; stops are handled at the exact sample
// where they are noticed.
func (p *Player) Process(buffer aytracker.AudioBuffer) {
	p.processMessages()
	p.seq.Render(p.device, buffer, p)
	level := p.meter.Update(buffer)
	p.send(MsgToModel{Playing: p.seq.State.Playing, HasLevel: true, Level: level})
}

// Playing reports whether the sequencer is playing. Only safe to call on
// the audio goroutine.
func (p *Player) Playing() bool {
	return p.seq.State.Playing
}

func (p *Player) RowStarted(pos aytracker.SongPos, speed int) {
	TrySend(p.broker.ToModel, MsgToModel{HasPosition: true, Position: pos, Speed: speed, Loops: p.seq.State.Loops, Playing: true})
}

func (p *Player) PatternNeeded(pattern int) {
	TrySend(p.broker.ToModel, MsgToModel{HasPatternRequest: true, PatternRequest: pattern, Playing: p.seq.State.Playing})
}

func (p *Player) StopRequested() bool {
	return p.broker.StopSeq() != p.handledStop
}

func (p *Player) processMessages() {
loop:
	for { // process new message
		select {
		case msg := <-p.broker.ToPlayer:
			switch m := msg.(type) {
			case InitMsg:
				p.device = m.Device
				p.sampleRate = m.SampleRate
				p.chipClock = m.ChipClock
				p.stereo = m.Stereo
				p.equalPower = m.EqualPower
				snap := p.seq.Snapshot()
				restart := p.seq.restartAtLoopPoint
				p.seq = NewSequencer(m.SampleRate, restart)
				p.seq.SetSnapshot(snap)
			case PlayMsg:
				p.handledStop = m.StopSeq
				p.seq.SetSnapshot(m.Snapshot)
				if p.device == nil {
					p.SendAlert("PlayerInit", "play requested before a chip device was set", Error)
					continue
				}
				if clock := m.Snapshot.ChipClock; clock > 0 && clock != p.chipClock {
					if err := p.device.Configure(clock, p.sampleRate); err != nil {
						p.SendAlert("ChipConfigure", fmt.Sprintf("chip.Configure: %v", err), Error)
						continue
					}
					p.chipClock = clock
					p.stereo.Apply(p.device, p.equalPower)
				}
				p.seq.Play(p.device, m.StartOrder, m.StartSpeed)
			case PatternOrderMsg:
				p.seq.SetOrder(m.Order)
			case PatternsMsg:
				p.seq.SetPatterns(m.Patterns)
			case TuningTableMsg:
				p.seq.SetTuning(m.Table)
			default:
				// ignore unknown messages
			}
		default:
			break loop
		}
	}
}

func (p *Player) SendAlert(name, message string, priority AlertPriority) {
	p.send(MsgToModel{Playing: p.seq.State.Playing, Data: Alert{
		Name:     name,
		Priority: priority,
		Message:  message,
		Duration: defaultAlertDuration,
	}})
}

// all sends from the player are non-blocking, so that the audio thread can
// not end up in a dead-lock
func (p *Player) send(msg MsgToModel) {
	TrySend(p.broker.ToModel, msg)
}
