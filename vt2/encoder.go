package vt2

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/aytracker/aytracker"
)

const moduleTemplate = `[Module]
VortexTrackerII=1
Version={{ .Version }}
Title={{ .Song.Title | trim }}
Author={{ .Song.Author | trim }}
NoteTable={{ .NoteTable }}
ChipFreq={{ .Song.Clock }}
IntFreq={{ mul .Song.TickRate 1000 }}
Speed={{ .Song.Speed }}
PlayOrder={{ playOrder .Song.PatternOrder .Song.LoopPoint }}
{{ range .Song.Ornaments }}
[Ornament{{ .ID }}]
{{ ornament . }}
{{ end }}{{ range $s := .Song.Samples }}
[Sample{{ $s.ID }}]
{{ range $i, $l := $s.Lines }}{{ sampleLine $l (eq $i $s.Loop) }}
{{ end }}{{ end }}{{ range $i, $p := .Song.Patterns }}
[Pattern{{ $i }}]
{{ range $r := until $p.Length }}{{ patternRow $p $r }}
{{ end }}{{ end }}`

var encodeTemplate = template.Must(template.New("vt2").Funcs(sprig.TxtFuncMap()).Funcs(template.FuncMap{
	"playOrder":  formatPlayOrder,
	"ornament":   formatOrnament,
	"sampleLine": formatSampleLine,
	"patternRow": formatPatternRow,
}).Parse(moduleTemplate))

type encodeData struct {
	Song      *aytracker.Song
	Version   string
	NoteTable int
}

// Encode writes the song as a VT2 text module. Patterns are numbered by
// their position in Song.Patterns. The speed effect has no VT2 symbol and
// is not written.
func Encode(w io.Writer, song *aytracker.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("encoding VT2 module: %w", err)
	}
	data := encodeData{Song: song, Version: "3.6"}
	for sel := 0; sel < aytracker.NumReferenceTables; sel++ {
		if slices.Equal(song.TuningTable, aytracker.ReferenceTable(sel)) {
			data.NoteTable = sel
			break
		}
	}
	var b strings.Builder
	if err := encodeTemplate.Execute(&b, data); err != nil {
		return fmt.Errorf("encoding VT2 module: %w", err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatPlayOrder(order aytracker.Order, loop int) string {
	parts := make([]string, len(order))
	for i, idx := range order {
		parts[i] = fmt.Sprint(idx)
		if i == loop {
			parts[i] = "L" + parts[i]
		}
	}
	return strings.Join(parts, ",")
}

func formatOrnament(o aytracker.Ornament) string {
	parts := make([]string, len(o.Offsets))
	for i, v := range o.Offsets {
		parts[i] = fmt.Sprint(v)
		if i == o.Loop {
			parts[i] = "L" + parts[i]
		}
	}
	return strings.Join(parts, ",")
}

func formatSampleLine(l aytracker.SampleLine, loop bool) string {
	flag := func(on bool, c string) string {
		if on {
			return strings.ToUpper(c)
		}
		return c
	}
	ret := fmt.Sprintf("%s%s%s %s_ %s_ %X_", flag(l.Tone, "t"), flag(l.Noise, "n"), flag(l.Envelope, "e"),
		signed(l.ToneAdd, 3), signed(l.NoiseAdd, 2), l.Volume&15)
	if loop {
		ret += " L"
	}
	return ret
}

func signed(v, width int) string {
	sign := "+"
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%0*X", sign, width, v)
}

const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUV"

func formatPatternRow(p *aytracker.Pattern, row int) string {
	var b strings.Builder
	pr := p.PatternRows[row]
	b.WriteString(hexOrDots(pr.EnvelopeValue, 4))
	b.WriteByte('|')
	b.WriteString(hexOrDots(pr.NoiseValue, 2))
	for c := 0; c < aytracker.NumChannels; c++ {
		r := p.Row(c, row)
		b.WriteByte('|')
		b.WriteString(r.Note.String())
		b.WriteByte(' ')
		for _, v := range []int{r.Instrument, r.EnvelopeShape, r.Ornament, r.Volume} {
			if v <= 0 || v >= len(digits) {
				b.WriteByte('.')
			} else {
				b.WriteByte(digits[v])
			}
		}
		b.WriteByte(' ')
		b.WriteString(r.Effect.Code())
	}
	return b.String()
}

func hexOrDots(v, width int) string {
	if v == 0 {
		return strings.Repeat(".", width)
	}
	return fmt.Sprintf("%0*X", width, v)
}
