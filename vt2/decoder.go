// Package vt2 reads and writes Vortex Tracker II text modules.
package vt2

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aytracker/aytracker"
	"golang.org/x/text/encoding/charmap"
)

type (
	// Warning is a recoverable problem found while decoding. Line is the
	// 1-based line number in the input.
	Warning struct {
		Line    int
		Message string
	}

	// Option configures Decode.
	Option func(*decoder)

	decoder struct {
		logger   *log.Logger
		collect  *[]Warning
		warnings []Warning
	}

	line struct {
		num  int
		text string
	}

	section struct {
		kind  string
		index int
		line  int
		lines []line
	}
)

const (
	// DefaultSpeed is used when the module has no Speed key.
	DefaultSpeed = 3
	// FallbackSpeed is used when the Speed key cannot be parsed or is zero.
	FallbackSpeed = 6
)

var sectionHeader = regexp.MustCompile(`^\[([A-Za-z]+)(\d*)\]$`)

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// WithLogger sets the logger that receives the warnings. A nil logger
// discards them.
func WithLogger(l *log.Logger) Option {
	return func(d *decoder) { d.logger = l }
}

// CollectWarnings appends the warnings of the decode to dst.
func CollectWarnings(dst *[]Warning) Option {
	return func(d *decoder) { d.collect = dst }
}

// DecodeString decodes a module held in a string.
func DecodeString(s string, opts ...Option) (*aytracker.Song, error) {
	return Decode(strings.NewReader(s), opts...)
}

// Decode reads a VT2 module. Input that is not valid UTF-8 is read as
// Windows-1251. Malformed rows and unknown tokens are skipped with a
// warning; only a module without a [Module] section is an error.
func Decode(r io.Reader, opts ...Option) (*aytracker.Song, error) {
	d := &decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading VT2 module: %w", err)
	}
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1251.NewDecoder().Bytes(data); err != nil {
			return nil, &aytracker.FormatError{Format: "VT2", Offset: -1, Reason: err.Error()}
		}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sections, err := d.split(data)
	if err != nil {
		return nil, err
	}
	song, err := d.decode(sections)
	if err != nil {
		return nil, err
	}
	if d.collect != nil {
		*d.collect = append(*d.collect, d.warnings...)
	}
	return song, nil
}

func (d *decoder) warnf(lineNum int, format string, args ...any) {
	w := Warning{Line: lineNum, Message: fmt.Sprintf(format, args...)}
	d.warnings = append(d.warnings, w)
	d.logger.Printf("VT2 %v", w)
}

func (d *decoder) split(data []byte) ([]section, error) {
	var sections []section
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if m := sectionHeader.FindStringSubmatch(text); m != nil {
			s := section{kind: strings.ToLower(m[1]), index: -1, line: num}
			if m[2] != "" {
				var err error
				if s.index, err = strconv.Atoi(m[2]); err != nil {
					s.index = aytracker.MaxPatterns
				}
			}
			sections = append(sections, s)
			continue
		}
		if strings.HasPrefix(text, "[") {
			d.warnf(num, "malformed section header %q", text)
			sections = append(sections, section{kind: "", line: num})
			continue
		}
		if len(sections) == 0 {
			d.warnf(num, "content before the first section ignored")
			continue
		}
		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, &aytracker.FormatError{Format: "VT2", Offset: num + 1, Reason: err.Error()}
	}
	return sections, nil
}

func (d *decoder) decode(sections []section) (*aytracker.Song, error) {
	song := &aytracker.Song{
		InitialSpeed: DefaultSpeed,
		TuningTable:  aytracker.DefaultTuningTable(),
	}
	foundModule := false
	var patterns []*aytracker.ImportPattern
	for _, s := range sections {
		switch s.kind {
		case "module":
			foundModule = true
			d.module(song, s)
		case "pattern":
			if s.index < 0 {
				d.warnf(s.line, "pattern section without an index ignored")
				continue
			}
			if s.index >= aytracker.MaxPatterns {
				d.warnf(s.line, "pattern %d ignored, the limit is %d patterns", s.index, aytracker.MaxPatterns)
				continue
			}
			patterns = append(patterns, d.pattern(s))
		case "sample":
			if s.index < 0 {
				d.warnf(s.line, "sample section without an index ignored")
				continue
			}
			song.Samples = append(song.Samples, d.sample(s))
		case "ornament":
			if s.index < 0 {
				d.warnf(s.line, "ornament section without an index ignored")
				continue
			}
			song.Ornaments = append(song.Ornaments, d.ornament(s))
		case "":
		default:
			d.warnf(s.line, "unknown section %q ignored", s.kind)
		}
	}
	if !foundModule {
		return nil, &aytracker.FormatError{Format: "VT2", Offset: -1, Reason: "missing [Module] section"}
	}
	sort.SliceStable(patterns, func(i, j int) bool { return patterns[i].ID < patterns[j].ID })
	size := 0
	for _, ip := range patterns {
		size = max(size, ip.ID+1)
	}
	for _, idx := range song.PatternOrder {
		size = max(size, idx+1)
	}
	if size == 0 {
		size = 1
	}
	song.Patterns = make([]*aytracker.Pattern, size)
	for _, ip := range patterns {
		if song.Patterns[ip.ID] != nil {
			d.warnf(0, "pattern %d defined twice, using the last one", ip.ID)
		}
		song.Patterns[ip.ID] = ip.Lower(func(row, channel int, format string, args ...any) {
			d.warnf(0, "pattern %d row %d channel %s: %s", ip.ID, row, aytracker.ChannelLabel(channel), fmt.Sprintf(format, args...))
		})
	}
	for i, p := range song.Patterns {
		if p == nil {
			if len(patterns) > 0 {
				d.warnf(0, "pattern %d missing, using an empty pattern", i)
			}
			song.Patterns[i] = aytracker.NewPattern(i, aytracker.DefaultPatternLength)
		}
	}
	if len(song.PatternOrder) == 0 {
		d.warnf(0, "empty play order, playing pattern 0")
		song.PatternOrder = aytracker.Order{0}
		song.LoopPoint = 0
	}
	sort.SliceStable(song.Samples, func(i, j int) bool { return song.Samples[i].ID < song.Samples[j].ID })
	sort.SliceStable(song.Ornaments, func(i, j int) bool { return song.Ornaments[i].ID < song.Ornaments[j].ID })
	song.ChipType = aytracker.GuessChipType(song.Title, song.Author)
	return song, nil
}

func (d *decoder) module(song *aytracker.Song, s section) {
	for _, l := range s.lines {
		key, value, found := strings.Cut(l.text, "=")
		if !found {
			d.warnf(l.num, "module line without '=' ignored")
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Title":
			song.Title = value
		case "Author":
			song.Author = value
		case "Speed":
			speed, err := strconv.Atoi(value)
			if err != nil || speed <= 0 {
				d.warnf(l.num, "invalid speed %q, using %d", value, FallbackSpeed)
				speed = FallbackSpeed
			}
			song.InitialSpeed = speed
		case "PlayOrder":
			song.PatternOrder, song.LoopPoint = d.playOrder(l.num, value)
		case "NoteTable":
			sel, err := strconv.Atoi(value)
			if err != nil {
				d.warnf(l.num, "invalid note table %q", value)
				continue
			}
			song.TuningTable = aytracker.ReferenceTable(sel)
		case "ChipFreq":
			if v, err := strconv.Atoi(value); err == nil && v > 0 {
				song.ChipClock = v
			} else {
				d.warnf(l.num, "invalid chip frequency %q", value)
			}
		case "IntFreq":
			if v, err := strconv.Atoi(value); err == nil && v >= 500 {
				song.TicksPerSecond = (v + 500) / 1000
			} else {
				d.warnf(l.num, "invalid interrupt frequency %q", value)
			}
		}
	}
}

func (d *decoder) playOrder(num int, value string) (aytracker.Order, int) {
	var order aytracker.Order
	loop := 0
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		isLoop := false
		if part[0] == 'L' || part[0] == 'l' {
			isLoop = true
			part = part[1:]
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			d.warnf(num, "invalid play order entry %q skipped", part)
			continue
		}
		if idx >= aytracker.MaxPatterns {
			d.warnf(num, "play order entry %d skipped, the limit is %d patterns", idx, aytracker.MaxPatterns)
			continue
		}
		if isLoop {
			loop = len(order)
		}
		order = append(order, idx)
	}
	return order, loop
}

func (d *decoder) pattern(s section) *aytracker.ImportPattern {
	ip := &aytracker.ImportPattern{ID: s.index}
	for _, l := range s.lines {
		fields := strings.Split(l.text, "|")
		if len(fields) < 4 {
			d.warnf(l.num, "pattern row with %d fields skipped", len(fields))
			continue
		}
		var row [aytracker.NumChannels]aytracker.ImportRow
		for c := 0; c < aytracker.NumChannels && c+2 < len(fields); c++ {
			row[c] = parseChannel(fields[c+2])
		}
		ip.Rows = append(ip.Rows, row)
		ip.EnvelopeValues = append(ip.EnvelopeValues, aytracker.ParseHexField(strings.TrimSpace(fields[0]), 4))
		ip.NoiseValues = append(ip.NoiseValues, aytracker.ParseHexField(strings.TrimSpace(fields[1]), 2))
	}
	return ip
}

// parseChannel parses "note SEOV effect", e.g. "C-4 1247 ....".
func parseChannel(field string) aytracker.ImportRow {
	parts := strings.Fields(field)
	var row aytracker.ImportRow
	if len(parts) > 0 {
		row.Note = parts[0]
	}
	if len(parts) > 1 && len(parts[1]) >= 4 {
		seov := parts[1]
		row.Instrument = digit(seov[0])
		row.EnvelopeShape = hexDigit(seov[1])
		row.Ornament = hexDigit(seov[2])
		row.Volume = hexDigit(seov[3])
	}
	if len(parts) > 2 {
		row.Effect = strings.Join(parts[2:], " ")
	}
	return row
}

func (d *decoder) sample(s section) aytracker.Sample {
	smp := aytracker.Sample{ID: s.index, Loop: -1}
	for _, l := range s.lines {
		parts := strings.Fields(l.text)
		if len(parts) < 4 {
			d.warnf(l.num, "sample line with %d fields skipped", len(parts))
			continue
		}
		flags := parts[0]
		for _, p := range parts[4:] {
			if p == "L" && smp.Loop < 0 {
				smp.Loop = len(smp.Lines)
			}
		}
		smp.Lines = append(smp.Lines, aytracker.SampleLine{
			Tone:     strings.Contains(flags, "T"),
			Noise:    strings.Contains(flags, "N"),
			Envelope: strings.Contains(flags, "E"),
			ToneAdd:  signedHex(parts[1]),
			NoiseAdd: signedHex(parts[2]),
			Volume:   leadingHex(strings.ReplaceAll(parts[3], "_", "")),
		})
	}
	return smp
}

func (d *decoder) ornament(s section) aytracker.Ornament {
	o := aytracker.Ornament{ID: s.index, Loop: -1}
	for _, l := range s.lines {
		for _, v := range strings.Split(l.text, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			loop := false
			if v[0] == 'L' || v[0] == 'l' {
				loop = true
				v = v[1:]
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				d.warnf(l.num, "invalid ornament value %q skipped", v)
				continue
			}
			if loop {
				o.Loop = len(o.Offsets)
			}
			o.Offsets = append(o.Offsets, n)
		}
	}
	return o
}

// digit parses the sample column of SEOV. Samples are numbered in base 32
// (1..V); '.' is zero.
func digit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'V':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'v':
		return int(c-'a') + 10
	}
	return 0
}

// hexDigit parses the envelope, ornament and volume columns of SEOV.
// Anything that is not a hex digit is zero.
func hexDigit(c byte) int {
	if v := digit(c); v < 16 {
		return v
	}
	return 0
}

func signedHex(s string) int {
	neg := strings.Contains(s, "-")
	v := leadingHex(strings.Map(func(r rune) rune {
		switch r {
		case '+', '-', '_', '^':
			return -1
		}
		return r
	}, s))
	if neg {
		return -v
	}
	return v
}

// leadingHex parses the hexadecimal digits at the start of s.
func leadingHex(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F' || c >= 'a' && c <= 'f') {
			break
		}
		v = v<<4 | digit(c)
	}
	return v
}
