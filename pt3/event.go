package pt3

import "fmt"

type (
	// EventKind is the class of a byte in a PT3 channel stream.
	EventKind int

	// Event is the classification of one byte of a channel stream. Value
	// holds the data encoded in the byte itself; operand bytes that follow
	// some events are read separately by the stream reader.
	Event struct {
		Kind  EventKind
		Value int
	}
)

const (
	EventUnknown EventKind = iota
	EventEndOfStream
	EventCommand
	EventEnvelopeOff
	EventEnvelope
	EventNoise
	EventOrnament
	EventNote
	EventJump
	EventNoteOff
	EventVolume
	EventEndOfPattern
	EventSample
	EventOrnamentSample
)

var eventKindNames = [...]string{
	"unknown", "end-of-stream", "command", "envelope-off", "envelope", "noise", "ornament",
	"note", "jump", "note-off", "volume", "end-of-pattern", "sample", "ornament-sample",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Operands returns the number of bytes that follow an event of this kind in
// the stream.
func (k EventKind) Operands() int {
	switch k {
	case EventEnvelopeOff, EventJump, EventOrnamentSample:
		return 1
	}
	return 0
}

// Ends reports whether the event terminates the channel stream.
func (k EventKind) Ends() bool {
	return k == EventEndOfStream || k == EventEndOfPattern
}

// Steps reports whether the event completes a row of the channel.
func (k EventKind) Steps() bool {
	return k == EventNote || k == EventNoteOff
}

// Classify maps a stream byte to its event. Every byte value belongs to
// exactly one kind.
func Classify(b byte) Event {
	switch {
	case b == 0x00:
		return Event{Kind: EventEndOfStream}
	case b <= 0x09:
		return Event{Kind: EventCommand, Value: int(b)}
	case b == 0x10:
		return Event{Kind: EventEnvelopeOff}
	case b >= 0x11 && b <= 0x1f:
		return Event{Kind: EventEnvelope, Value: int(b - 0x10)}
	case b >= 0x20 && b <= 0x3f:
		return Event{Kind: EventNoise, Value: int(b - 0x20)}
	case b >= 0x40 && b <= 0x4f:
		return Event{Kind: EventOrnament, Value: int(b - 0x40)}
	case b >= 0x50 && b <= 0xaf:
		return Event{Kind: EventNote, Value: int(b - 0x50)}
	case b == 0xb1:
		return Event{Kind: EventJump}
	case b == 0xc0:
		return Event{Kind: EventNoteOff}
	case b >= 0xc1 && b <= 0xcf:
		return Event{Kind: EventVolume, Value: int(b & 0x0f)}
	case b == 0xd0:
		return Event{Kind: EventEndOfPattern}
	case b >= 0xd1 && b <= 0xef:
		return Event{Kind: EventSample, Value: int(b - 0xd0)}
	case b >= 0xf0:
		return Event{Kind: EventOrnamentSample, Value: int(b & 0x0f)}
	}
	return Event{Kind: EventUnknown, Value: int(b)}
}

// NoteNames is the chromatic table indexed by note events, C-1 to B-8.
var NoteNames = func() [96]string {
	names := [...]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}
	var ret [96]string
	for i := range ret {
		ret[i] = fmt.Sprintf("%s%d", names[i%12], i/12+1)
	}
	return ret
}()
