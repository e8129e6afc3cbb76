package aytracker

type (
	// ImportRow is a channel cell as read from a module file, before the
	// note and effect tokens have been interpreted.
	ImportRow struct {
		Note          string
		Instrument    int
		Volume        int
		Ornament      int
		EnvelopeShape int
		Effect        string
	}

	// ImportPattern is the format-independent representation that both the
	// PT3 and the VT2 decoders produce. Rows, EnvelopeValues and NoiseValues
	// have one entry per pattern row.
	ImportPattern struct {
		ID             int
		Rows           [][NumChannels]ImportRow
		EnvelopeValues []int
		NoiseValues    []int
	}

	// WarnFunc receives the problems found while lowering; the decoders route
	// them into their warning lists.
	WarnFunc func(row, channel int, format string, args ...any)
)

// Lower converts the pattern into the song model. Tokens that cannot be
// interpreted become "no note" or "no effect" and are reported to warn, which
// may be nil.
func (ip *ImportPattern) Lower(warn WarnFunc) *Pattern {
	if warn == nil {
		warn = func(int, int, string, ...any) {}
	}
	length := min(len(ip.Rows), MaxPatternLength)
	if length < len(ip.Rows) {
		warn(length, -1, "pattern %d truncated from %d to %d rows", ip.ID, len(ip.Rows), length)
	}
	p := NewPattern(ip.ID, length)
	for i := 0; i < length; i++ {
		if i < len(ip.EnvelopeValues) {
			p.PatternRows[i].EnvelopeValue = ip.EnvelopeValues[i]
		}
		if i < len(ip.NoiseValues) {
			p.PatternRows[i].NoiseValue = ip.NoiseValues[i]
		}
		for c := 0; c < NumChannels; c++ {
			src := ip.Rows[i][c]
			note, ok := ParseNote(src.Note)
			if !ok {
				warn(i, c, "unmapped note %q", src.Note)
			}
			effect, ok := ParseEffect(src.Effect)
			if !ok {
				warn(i, c, "unrecognized effect %q", src.Effect)
			}
			p.Channels[c].Rows[i] = Row{
				Note:          note,
				Instrument:    src.Instrument,
				Volume:        src.Volume & 15,
				Ornament:      src.Ornament,
				EnvelopeShape: src.EnvelopeShape,
				Effect:        effect,
			}
		}
	}
	return p
}
