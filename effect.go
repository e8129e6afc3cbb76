package aytracker

import "fmt"

// EffectKind identifies the effect stored in an effect slot.
type EffectKind int

const (
	EffectArpeggio EffectKind = iota
	EffectVibrato
	EffectPortamento
	EffectGlissando
	EffectEnvelopeSlide
	EffectSpeed
)

// Effect is a single effect command. Parameter packs two nibbles in trackers
// that use them (e.g. arpeggio offsets); Speed uses it as ticks per row.
type Effect struct {
	Kind      EffectKind
	Delay     int  `yaml:",omitempty"`
	Parameter byte `yaml:",omitempty"`
}

var effectKindNames = [...]string{"arpeggio", "vibrato", "portamento", "glissando", "envelope-slide", "speed"}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(effectKindNames) {
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
	return effectKindNames[k]
}

// effectSymbols maps the first character of a 4-character effect code to the
// effect kind.
var effectSymbols = map[byte]EffectKind{
	'1': EffectGlissando,
	'2': EffectPortamento, '3': EffectPortamento, 'P': EffectPortamento,
	'4': EffectVibrato, 'V': EffectVibrato,
	'5': EffectEnvelopeSlide, 'E': EffectEnvelopeSlide, 'S': EffectEnvelopeSlide,
	'A': EffectArpeggio, 'B': EffectArpeggio, 'C': EffectArpeggio, 'K': EffectArpeggio,
}

// canonicalSymbols is the inverse of effectSymbols used when writing codes.
var canonicalSymbols = map[EffectKind]byte{
	EffectGlissando:     '1',
	EffectPortamento:    '3',
	EffectVibrato:       '4',
	EffectEnvelopeSlide: '5',
	EffectArpeggio:      'A',
}

// ParseEffect parses a 4-character effect code {type, delay, param-hi,
// param-lo}; '.' marks an absent component. It returns nil when the slot is
// empty or the type character is not recognized; ok is false only in the
// latter case.
func ParseEffect(code string) (e *Effect, ok bool) {
	if len(code) != 4 {
		return nil, code == ""
	}
	if code[0] == '.' {
		return nil, true
	}
	kind, found := effectSymbols[upper(code[0])]
	if !found {
		return nil, false
	}
	return &Effect{
		Kind:      kind,
		Delay:     hexDigit(code[1]),
		Parameter: byte(hexDigit(code[2])<<4 | hexDigit(code[3])),
	}, true
}

// Code formats the effect as a 4-character code. A nil effect, and effects
// that have no symbol (Speed), format as "....".
func (e *Effect) Code() string {
	if e == nil {
		return "...."
	}
	sym, ok := canonicalSymbols[e.Kind]
	if !ok {
		return "...."
	}
	const digits = "0123456789ABCDEF"
	return string([]byte{sym, digits[e.Delay&15], digits[e.Parameter>>4], digits[e.Parameter&15]})
}

// Copy returns a copy of the effect, or nil for a nil effect.
func (e *Effect) Copy() *Effect {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// hexDigit returns the value of a hexadecimal digit; '.' and any other
// character are zero.
func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return 0
}

// ParseHexField parses a fixed-width hexadecimal field where '.' stands for
// zero. Fields shorter than width are zero.
func ParseHexField(s string, width int) int {
	if len(s) < width {
		return 0
	}
	v := 0
	for i := 0; i < width; i++ {
		v = v<<4 | hexDigit(s[i])
	}
	return v
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
