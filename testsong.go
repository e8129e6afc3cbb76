package aytracker

type sectionStyle struct {
	name       string
	scale      []NoteName
	baseOctave int
	envelope   int
	noise      int
	lead       []int // scale degrees, -1 = rest
	leadStep   int
	leadVolume int
	leadShape  int
	breathe    bool // note off on row 12 of every 16
	harmony    int  // scale degree offset of the harmony line
	harmStep   int
	harmVolume int
	harmLift   int // extra octave for the harmony
	bass       []int
	bassStep   int
	bassVolume int
	bassShape  int
}

var (
	scaleMajor      = []NoteName{NoteC, NoteD, NoteE, NoteF, NoteG, NoteA, NoteB}
	scaleMinor      = []NoteName{NoteC, NoteD, NoteDSharp, NoteF, NoteG, NoteGSharp, NoteASharp}
	scalePentatonic = []NoteName{NoteC, NoteD, NoteE, NoteG, NoteA}
	scaleBlues      = []NoteName{NoteC, NoteDSharp, NoteF, NoteFSharp, NoteG, NoteASharp}
)

var testSongSections = []sectionStyle{
	{name: "intro", scale: scaleMajor, baseOctave: 4, envelope: 0x3e, noise: 0x08,
		lead: []int{0, 4, 2, 6, 1, 5, 3, 0}, leadStep: 8, leadVolume: 0xa, leadShape: 0x7, breathe: true,
		harmony: 4, harmStep: 8, harmVolume: 0xa,
		bass: []int{0, -1, 0, -1, 4, -1, 4, -1}, bassStep: 8, bassVolume: 0xc, bassShape: 0x4},
	{name: "verse", scale: scaleMinor, baseOctave: 4, envelope: 0x2a, noise: 0x06,
		lead: []int{0, 2, 4, 2, 1, 3, 5, 3}, leadStep: 4, leadVolume: 0xd, leadShape: 0x7, breathe: true,
		harmony: 4, harmStep: 8, harmVolume: 0xa,
		bass: []int{0, -1, 4, -1, 0, -1, 3, -1}, bassStep: 8, bassVolume: 0xc, bassShape: 0x4},
	{name: "chorus", scale: scaleMajor, baseOctave: 5, envelope: 0x4f, noise: 0x04,
		lead: []int{0, 4, 0, 4, 2, 6, 2, 6}, leadStep: 2, leadVolume: 0xf, leadShape: 0x7, breathe: true,
		harmony: 2, harmStep: 8, harmVolume: 0xd,
		bass: []int{0, 0, 4, 4, 0, 0, 3, 3}, bassStep: 4, bassVolume: 0xc, bassShape: 0x6},
	{name: "bridge", scale: scalePentatonic, baseOctave: 3, envelope: 0x1c, noise: 0x0a,
		lead: []int{4, 2, 0, 3, 1, 4, 2, 0}, leadStep: 4, leadVolume: 0xd, leadShape: 0x7, breathe: true,
		harmony: 4, harmStep: 8, harmVolume: 0xa, harmLift: 1,
		bass: []int{0, 2, 4, 2, 1, 3, 0, 4}, bassStep: 8, bassVolume: 0xc, bassShape: 0x4},
	{name: "outro", scale: scaleBlues, baseOctave: 4, envelope: 0x3e, noise: 0x08,
		lead: []int{0, 1, 2, 1, 0, -1, -1, -1}, leadStep: 4, leadVolume: 0xd, leadShape: 0x7, breathe: true,
		harmony: 4, harmStep: 8, harmVolume: 0xa,
		bass: []int{0, -1, -1, -1, 4, -1, -1, -1}, bassStep: 8, bassVolume: 0xc, bassShape: 0x4},
	{name: "breakdown", scale: scaleBlues, baseOctave: 3, envelope: 0x5a, noise: 0x02,
		lead: []int{0, 0, 4, 4, 2, 2, 6, 6}, leadStep: 4, leadVolume: 0xd, leadShape: 0x4,
		harmony: 4, harmStep: 4, harmVolume: 0xa,
		bass: []int{0, 0, 0, 4, 0, 0, 0, 4}, bassStep: 2, bassVolume: 0xf, bassShape: 0x4},
}

// GenerateTestSong builds a six pattern song (intro, verse, chorus, bridge,
// outro, breakdown) that exercises notes, note offs, volumes, ornaments,
// envelopes, noise and effects on all three channels.
func GenerateTestSong() *Song {
	song := &Song{
		Title:        "Extended Test Song",
		Author:       "Test Author",
		InitialSpeed: DefaultSpeed,
		TuningTable:  DefaultTuningTable(),
		PatternOrder: Order{0, 1, 2, 1, 2, 3, 1, 2, 5, 4},
		LoopPoint:    1,
	}
	for i, style := range testSongSections {
		song.Patterns = append(song.Patterns, style.pattern(i))
	}
	return song
}

func (s *sectionStyle) pattern(index int) *Pattern {
	p := NewPattern(index, DefaultPatternLength)
	for row := 0; row < p.Length; row++ {
		if row%16 == 0 {
			p.PatternRows[row].EnvelopeValue = s.envelope
			p.PatternRows[row].NoiseValue = s.noise
		}
		if row%32 == 0 && row > 0 {
			p.PatternRows[row].EnvelopeEffect = &Effect{Kind: EffectEnvelopeSlide, Parameter: byte(0x1f + index*0x05)}
		}
		s.leadRow(&p.Channels[0].Rows[row], row, index)
		s.harmonyRow(&p.Channels[1].Rows[row], row, index)
		s.bassRow(&p.Channels[2].Rows[row], row, index)
	}
	return p
}

func (s *sectionStyle) leadRow(r *Row, row, index int) {
	if row%s.leadStep == 0 {
		if degree := s.lead[(row/s.leadStep)%len(s.lead)]; degree >= 0 && degree < len(s.scale) {
			*r = Row{
				Note:          Note{Name: s.scale[degree], Octave: s.baseOctave},
				Instrument:    1 + index%3,
				Volume:        s.leadVolume,
				Ornament:      index % 4,
				EnvelopeShape: s.leadShape,
			}
		}
	}
	if s.breathe && row%16 == 12 {
		r.Note = Note{Name: NoteOff}
	}
	switch {
	case s.name == "chorus" && row%8 == 4:
		r.Effect = &Effect{Kind: EffectVibrato, Parameter: 0x45}
	case s.name == "bridge" && row%12 == 8:
		r.Effect = &Effect{Kind: EffectPortamento, Delay: 1, Parameter: 0x23}
	}
}

func (s *sectionStyle) harmonyRow(r *Row, row, index int) {
	if row%s.harmStep != 2 {
		return
	}
	degree := (row/s.harmStep + s.harmony) % len(s.scale)
	*r = Row{
		Note:       Note{Name: s.scale[degree], Octave: s.baseOctave - 1 + s.harmLift},
		Instrument: 2 + index%2,
		Volume:     s.harmVolume,
		Ornament:   (index + 1) % 3,
	}
	if s.name == "verse" && row%16 == 10 {
		r.Effect = &Effect{Kind: EffectVibrato, Parameter: 0x34}
	}
}

func (s *sectionStyle) bassRow(r *Row, row, index int) {
	if row%s.bassStep == 0 {
		if degree := s.bass[(row/s.bassStep)%len(s.bass)]; degree >= 0 && degree < len(s.scale) {
			*r = Row{
				Note:          Note{Name: s.scale[degree], Octave: s.baseOctave - 2},
				Instrument:    3 + index%2,
				Volume:        s.bassVolume,
				Ornament:      2,
				EnvelopeShape: s.bassShape,
			}
		}
	}
	switch {
	case s.name == "breakdown" && row%16 == 8:
		r.Effect = &Effect{Kind: EffectArpeggio, Parameter: 0x47}
	case s.name == "bridge" && row%24 == 16:
		r.Effect = &Effect{Kind: EffectGlissando, Delay: 1, Parameter: 0x15}
	}
}
