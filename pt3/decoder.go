// Package pt3 decodes Pro Tracker 3 binary modules into aytracker songs.
package pt3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aytracker/aytracker"
	"golang.org/x/text/encoding/charmap"
)

type (
	// Header holds the fixed-offset fields at the start of a PT3 module.
	Header struct {
		Magic            string
		Version          int
		Title            string
		Author           string
		TableSelector    int
		Speed            int
		Length           int
		LoopPoint        int
		PatternPointer   int
		SamplePointers   [NumSamples]int
		OrnamentPointers [NumOrnaments]int
		Order            []int
	}

	// Option configures the decoder.
	Option func(*decoder)

	decoder struct {
		data          []byte
		header        Header
		logger        *log.Logger
		relativeJumps bool
	}

	channelStream struct {
		pos   int
		ended bool
	}
)

const (
	NumSamples   = 32
	NumOrnaments = 16

	offsetVersion   = 0x0d
	offsetTitle     = 0x1e
	offsetAuthor    = 0x42
	offsetSelector  = 0x63
	offsetSpeed     = 0x64
	offsetLength    = 0x65
	offsetLoop      = 0x66
	offsetPatterns  = 0x67
	offsetSamples   = 0x69
	offsetOrnaments = 0xa9
	offsetOrder     = 0xc9

	titleLength  = 0x20
	recordLength = 6
	orderEnd     = 0xff

	// maxEventsPerRow bounds the events read for one row so that a jump
	// cannot loop forever.
	maxEventsPerRow = 1024
)

var (
	magicProTracker = []byte("ProTracker 3.")
	magicVortex     = []byte("Vortex Tracker II")
)

// WithLogger sets the logger that receives decoding warnings. A nil logger
// discards them.
func WithLogger(l *log.Logger) Option {
	return func(d *decoder) { d.logger = l }
}

// WithRelativeJumps enables the 0xB1 cursor jump for modules of version 6 or
// later. When disabled, the jump operand is skipped and a warning is logged.
func WithRelativeJumps(enabled bool) Option {
	return func(d *decoder) { d.relativeJumps = enabled }
}

// DecodeHeader reads the header, the pointer tables and the order list.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	switch {
	case bytes.HasPrefix(data, magicVortex):
		h.Magic = string(magicVortex)
		h.Version = 6
	case bytes.HasPrefix(data, magicProTracker):
		h.Magic = string(magicProTracker)
	default:
		return h, formatErr(0, "not a PT3 module")
	}
	if len(data) < offsetOrder {
		return h, formatErr(len(data), "header truncated")
	}
	if h.Version == 0 {
		if v := data[offsetVersion]; v >= '0' && v <= '9' {
			h.Version = int(v - '0')
		}
	}
	h.Title = decodeString(data[offsetTitle : offsetTitle+titleLength])
	h.Author = decodeString(data[offsetAuthor : offsetAuthor+titleLength])
	h.TableSelector = int(data[offsetSelector])
	h.Speed = int(data[offsetSpeed])
	h.Length = int(data[offsetLength])
	h.LoopPoint = int(data[offsetLoop])
	h.PatternPointer = le16(data, offsetPatterns)
	for i := range h.SamplePointers {
		h.SamplePointers[i] = le16(data, offsetSamples+i*2)
	}
	for i := range h.OrnamentPointers {
		h.OrnamentPointers[i] = le16(data, offsetOrnaments+i*2)
	}
	for i := offsetOrder; ; i++ {
		if i >= len(data) {
			return h, formatErr(i, "order list is not terminated")
		}
		if data[i] == orderEnd {
			break
		}
		h.Order = append(h.Order, int(data[i])/3)
	}
	if len(h.Order) == 0 {
		return h, formatErr(offsetOrder, "order list is empty")
	}
	return h, nil
}

// Decode parses a complete PT3 module. A FormatError is returned if the
// module is malformed or truncated; no partial song is returned then.
func Decode(data []byte, opts ...Option) (*aytracker.Song, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	d := &decoder{data: data, header: h}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}
	song := &aytracker.Song{
		Title:        h.Title,
		Author:       h.Author,
		ChipType:     aytracker.ChipAY,
		InitialSpeed: h.Speed,
		PatternOrder: aytracker.Order(append([]int(nil), h.Order...)),
		TuningTable:  aytracker.ReferenceTable(h.TableSelector),
	}
	if h.Length != len(h.Order) {
		d.warnf(offsetLength, "order length byte %d differs from the %d order entries", h.Length, len(h.Order))
	}
	if h.LoopPoint < len(h.Order) {
		song.LoopPoint = h.LoopPoint
	} else {
		d.warnf(offsetLoop, "loop point %d outside the order, using 0", h.LoopPoint)
	}
	numPatterns := 0
	for _, p := range h.Order {
		numPatterns = max(numPatterns, p+1)
	}
	song.Patterns = make([]*aytracker.Pattern, numPatterns)
	for i := range song.Patterns {
		ip, err := d.decodePattern(i)
		if err != nil {
			return nil, err
		}
		song.Patterns[i] = ip.Lower(func(row, channel int, format string, args ...any) {
			d.logger.Printf("pattern %d row %d channel %s: %s", i, row, aytracker.ChannelLabel(channel), fmt.Sprintf(format, args...))
		})
	}
	for i, ptr := range h.SamplePointers {
		if ptr == 0 {
			continue
		}
		s, err := d.decodeSample(i, ptr)
		if err != nil {
			return nil, err
		}
		song.Samples = append(song.Samples, s)
	}
	for i, ptr := range h.OrnamentPointers {
		if ptr == 0 {
			continue
		}
		o, err := d.decodeOrnament(i, ptr)
		if err != nil {
			return nil, err
		}
		song.Ornaments = append(song.Ornaments, o)
	}
	return song, nil
}

func (d *decoder) decodePattern(index int) (*aytracker.ImportPattern, error) {
	record := d.header.PatternPointer + index*recordLength
	if record+recordLength > len(d.data) {
		return nil, formatErr(record, fmt.Sprintf("pattern %d pointer record past the end of data", index))
	}
	var streams [aytracker.NumChannels]channelStream
	for c := range streams {
		streams[c].pos = le16(d.data, record+c*2)
	}
	ip := &aytracker.ImportPattern{ID: index}
	for step := 0; ; step++ {
		var row [aytracker.NumChannels]aytracker.ImportRow
		noise := 0
		produced := false
		for c := range streams {
			if streams[c].ended {
				continue
			}
			ok, err := d.readRow(&streams[c], &row[c], &noise)
			if err != nil {
				return nil, err
			}
			produced = produced || ok
		}
		if !produced {
			break
		}
		if step == aytracker.MaxPatternLength {
			d.warnf(record, "pattern %d longer than %d rows, truncated", index, aytracker.MaxPatternLength)
			break
		}
		ip.Rows = append(ip.Rows, row)
		ip.EnvelopeValues = append(ip.EnvelopeValues, 0)
		ip.NoiseValues = append(ip.NoiseValues, noise)
	}
	return ip, nil
}

// readRow reads the events of one channel up to and including the next
// note or note off. It returns false if the stream ended first.
func (d *decoder) readRow(s *channelStream, row *aytracker.ImportRow, noise *int) (bool, error) {
	for n := 0; n < maxEventsPerRow; n++ {
		at := s.pos
		b, err := d.byteAt(s.pos)
		if err != nil {
			return false, err
		}
		s.pos++
		ev := Classify(b)
		var operand byte
		if ev.Kind.Operands() > 0 {
			if operand, err = d.byteAt(s.pos); err != nil {
				return false, err
			}
			s.pos++
		}
		switch ev.Kind {
		case EventEndOfStream, EventEndOfPattern:
			s.ended = true
			return false, nil
		case EventNote:
			row.Note = NoteNames[ev.Value]
			return true, nil
		case EventNoteOff:
			row.Note = "OFF"
			return true, nil
		case EventEnvelopeOff:
			row.EnvelopeShape = 15
			row.Instrument = int(operand >> 1)
		case EventEnvelope:
			row.EnvelopeShape = ev.Value
		case EventNoise:
			*noise = ev.Value
		case EventOrnament:
			row.Ornament = ev.Value
		case EventVolume:
			row.Volume = ev.Value
		case EventSample:
			row.Instrument = ev.Value
		case EventOrnamentSample:
			row.Ornament = ev.Value
			row.Instrument = int(operand >> 1)
		case EventJump:
			if !d.relativeJumps || d.header.Version < 6 {
				d.warnf(at, "relative jump ignored")
				continue
			}
			s.pos += int(int8(operand))
			if s.pos < 0 || s.pos >= len(d.data) {
				return false, formatErr(at, "relative jump outside the data")
			}
		case EventCommand:
		default:
			d.warnf(at, "unknown byte 0x%02X skipped", b)
		}
	}
	return false, formatErr(s.pos, "channel stream does not advance")
}

func (d *decoder) decodeSample(index, ptr int) (aytracker.Sample, error) {
	if ptr+2 > len(d.data) {
		return aytracker.Sample{}, formatErr(ptr, fmt.Sprintf("sample %d past the end of data", index))
	}
	loop, length := int(d.data[ptr]), int(d.data[ptr+1])
	start := ptr + 2
	if start+length*4 > len(d.data) {
		return aytracker.Sample{}, formatErr(start, fmt.Sprintf("sample %d truncated", index))
	}
	s := aytracker.Sample{ID: index, Lines: make([]aytracker.SampleLine, length), Loop: -1}
	if loop < length {
		s.Loop = loop
	}
	for i := range s.Lines {
		b := d.data[start+i*4 : start+i*4+4]
		offset := int(b[0]>>1) & 0x1f
		if offset&0x10 != 0 {
			offset -= 0x20
		}
		s.Lines[i] = aytracker.SampleLine{
			Tone:     b[1]&0x10 == 0,
			Noise:    b[1]&0x80 == 0,
			Envelope: b[0]&0x01 == 0,
			ToneAdd:  int(int16(binary.LittleEndian.Uint16(b[2:]))),
			NoiseAdd: offset,
			Volume:   int(b[1] & 0x0f),
		}
	}
	return s, nil
}

func (d *decoder) decodeOrnament(index, ptr int) (aytracker.Ornament, error) {
	if ptr+2 > len(d.data) {
		return aytracker.Ornament{}, formatErr(ptr, fmt.Sprintf("ornament %d past the end of data", index))
	}
	loop, length := int(d.data[ptr]), int(d.data[ptr+1])
	start := ptr + 2
	if start+length > len(d.data) {
		return aytracker.Ornament{}, formatErr(start, fmt.Sprintf("ornament %d truncated", index))
	}
	o := aytracker.Ornament{ID: index, Offsets: make([]int, length), Loop: -1}
	if loop < length {
		o.Loop = loop
	}
	for i := range o.Offsets {
		o.Offsets[i] = int(int8(d.data[start+i]))
	}
	return o, nil
}

func (d *decoder) byteAt(pos int) (byte, error) {
	if pos < 0 || pos >= len(d.data) {
		return 0, formatErr(pos, "unexpected end of data")
	}
	return d.data[pos], nil
}

func (d *decoder) warnf(offset int, format string, args ...any) {
	d.logger.Printf("PT3 offset %d: %s", offset, fmt.Sprintf(format, args...))
}

func le16(data []byte, offset int) int {
	return int(binary.LittleEndian.Uint16(data[offset:]))
}

func decodeString(b []byte) string {
	s, err := charmap.CodePage866.NewDecoder().Bytes(b)
	if err != nil {
		s = b
	}
	return strings.TrimSpace(strings.Trim(string(s), "\x00 "))
}

func formatErr(offset int, reason string) *aytracker.FormatError {
	return &aytracker.FormatError{Format: "PT3", Offset: offset, Reason: reason}
}
