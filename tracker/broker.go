package tracker

import (
	"sync/atomic"
	"time"

	"github.com/aytracker/aytracker"
)

type (
	// Broker is the centralized message broker between the Model and the
	// Player. The Model runs on the controlling goroutine and the Player on
	// the audio goroutine; they only talk through the two channels here and
	// the stop counter.
	//
	// Stop requests do not go through ToPlayer: Model.Stop increments the
	// stop counter and the player checks it at every sample, so a stop takes
	// effect at the next sample boundary even when ToPlayer is backed up.
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any

		stopSeq atomic.Uint64
	}

	// MsgToModel is a message sent to the model. Position updates and level
	// readings are sent often, so they are not boxed to avoid allocations.
	// All the infrequently passed messages (Alert) go in Data.
	MsgToModel struct {
		HasPosition bool
		Position    aytracker.SongPos
		Speed       int
		Loops       int
		Playing     bool

		HasLevel bool
		Level    Level

		HasPatternRequest bool
		PatternRequest    int

		Data any
	}

	// InitMsg hands a configured chip device over to the player. After
	// sending it, the sender must not touch the device.
	InitMsg struct {
		Device     aytracker.ChipDevice
		SampleRate int
		ChipClock  int
		Stereo     aytracker.StereoLayout
		EqualPower bool
	}

	// PlayMsg starts playback of a snapshot. StopSeq is the value of the
	// stop counter when the message was sent; stops requested before that
	// do not cancel this playback.
	PlayMsg struct {
		Snapshot   Snapshot
		StartOrder int
		StartSpeed int
		StopSeq    uint64
	}

	// PatternOrderMsg replaces the pattern order of the playing snapshot.
	PatternOrderMsg struct {
		Order aytracker.Order
	}

	// PatternsMsg replaces the pattern slice of the playing snapshot. The
	// slice must not be modified after sending; send a new slice instead.
	PatternsMsg struct {
		Patterns []*aytracker.Pattern
	}

	// TuningTableMsg replaces the tuning table of the playing snapshot.
	TuningTableMsg struct {
		Table aytracker.TuningTable
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToPlayer: make(chan any, 1024),
		ToModel:  make(chan MsgToModel, 1024),
	}
}

// RequestStop asks the player to stop at the next sample boundary and
// returns the new value of the stop counter.
func (b *Broker) RequestStop() uint64 {
	return b.stopSeq.Add(1)
}

// StopSeq returns the number of stops requested so far.
func (b *Broker) StopSeq() uint64 {
	return b.stopSeq.Load()
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
