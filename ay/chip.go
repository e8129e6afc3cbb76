// Package ay is a register-level emulator of the AY-3-8910 and YM2149 sound
// chips. It implements aytracker.ChipDevice.
package ay

import (
	"errors"
	"math"

	"github.com/aytracker/aytracker"
)

type (
	// Chip is the state of one emulated sound chip. The zero value outputs
	// silence until Configure is called.
	Chip struct {
		dac        *[32]float64
		configured bool

		channels [aytracker.NumChannels]channel

		noisePeriod  int
		noiseCounter int
		noise        int

		envPeriod  int
		envCounter int
		envShape   int
		envSegment int
		envValue   int

		step  float64 // chip updates per output sample
		phase float64

		left, right float64
		dc          [2]dcBlocker
	}

	channel struct {
		period   int
		counter  int
		tone     int
		toneOff  bool
		noiseOff bool
		envOn    bool
		volume   int
		panLeft  float64
		panRight float64
	}

	dcBlocker struct {
		x1, y1 float64
	}

	segment int
)

const (
	slideDown segment = iota
	slideUp
	holdTop
	holdBottom
)

const dcPole = 0.995

var _ aytracker.ChipDevice = (*Chip)(nil)

// envelopeShapes gives the two alternating segments for each of the 16
// envelope shapes.
var envelopeShapes = [16][2]segment{
	{slideDown, holdBottom}, {slideDown, holdBottom}, {slideDown, holdBottom}, {slideDown, holdBottom},
	{slideUp, holdBottom}, {slideUp, holdBottom}, {slideUp, holdBottom}, {slideUp, holdBottom},
	{slideDown, slideDown}, {slideDown, holdBottom}, {slideDown, slideUp}, {slideDown, holdTop},
	{slideUp, slideUp}, {slideUp, holdTop}, {slideUp, slideDown}, {slideUp, holdBottom},
}

// DAC output levels for the 32 envelope steps. The AY only has 16 distinct
// levels, so its table repeats every value twice.
var (
	ayDAC = [32]float64{
		0.0, 0.0,
		0.00999465934234, 0.00999465934234,
		0.0144502937362, 0.0144502937362,
		0.0210574502174, 0.0210574502174,
		0.0307011520562, 0.0307011520562,
		0.0455481803616, 0.0455481803616,
		0.0644998855573, 0.0644998855573,
		0.107362478065, 0.107362478065,
		0.126588845655, 0.126588845655,
		0.20498970016, 0.20498970016,
		0.292210269322, 0.292210269322,
		0.372838941024, 0.372838941024,
		0.492530708782, 0.492530708782,
		0.635324635691, 0.635324635691,
		0.805584802014, 0.805584802014,
		1.0, 1.0,
	}
	ymDAC = [32]float64{
		0.0, 0.0, 0.00465400167849, 0.00772106507973,
		0.0109559777218, 0.0139620050355, 0.0169985503929, 0.0200198367285,
		0.024368657969, 0.029694056611, 0.0350652323186, 0.0403906309606,
		0.0485389486534, 0.0583352407111, 0.0680552376593, 0.0777752346075,
		0.0925154497597, 0.111085679408, 0.129747463188, 0.148485542077,
		0.17666895552, 0.211551079576, 0.246387426566, 0.281101701381,
		0.333730067903, 0.400427252613, 0.467383840696, 0.53443198291,
		0.635172045472, 0.75800717174, 0.879926756695, 1.0,
	}
)

// New returns a chip with the DAC curve of the given chip type. The chip
// must be configured before it produces sound.
func New(t aytracker.ChipType) *Chip {
	c := &Chip{dac: &ayDAC}
	if t == aytracker.ChipYM {
		c.dac = &ymDAC
	}
	for i := range c.channels {
		c.channels[i].panLeft, c.channels[i].panRight = 0.5, 0.5
	}
	return c
}

// Configure resets the chip and sets its clock and output rate. The chip
// runs its generators at clock/8 and averages them down to the sample rate,
// so the sample rate must not exceed clock/8.
func (c *Chip) Configure(clockHz, sampleRate int) error {
	if clockHz <= 0 || sampleRate <= 0 {
		c.configured = false
		return &aytracker.DeviceError{Op: "configure", Err: errors.New("clock and sample rate must be positive")}
	}
	if c.dac == nil {
		c.dac = &ayDAC
	}
	c.step = float64(clockHz) / 8 / float64(sampleRate)
	if c.step < 1 {
		c.configured = false
		return &aytracker.DeviceError{Op: "configure", Err: errors.New("sample rate higher than clock/8")}
	}
	c.phase = 0
	c.noise = 1
	c.noisePeriod, c.noiseCounter = 1, 0
	c.envPeriod, c.envCounter = 1, 0
	c.setShape(0)
	for i := range c.channels {
		ch := &c.channels[i]
		ch.period, ch.counter, ch.tone, ch.volume = 1, 0, 0, 0
		ch.toneOff, ch.noiseOff, ch.envOn = true, true, false
	}
	c.left, c.right = 0, 0
	c.dc = [2]dcBlocker{}
	c.configured = true
	return nil
}

func (c *Chip) SetPan(ch int, pan float64, equalPower bool) {
	if ch < 0 || ch >= len(c.channels) {
		return
	}
	pan = min(max(pan, 0), 1)
	if equalPower {
		c.channels[ch].panLeft, c.channels[ch].panRight = math.Sqrt(1-pan), math.Sqrt(pan)
	} else {
		c.channels[ch].panLeft, c.channels[ch].panRight = 1-pan, pan
	}
}

func (c *Chip) SetTone(ch int, period int) {
	if ch < 0 || ch >= len(c.channels) {
		return
	}
	c.channels[ch].period = atLeastOne(period & 0xfff)
}

func (c *Chip) SetMixer(ch int, toneOff, noiseOff, envelope bool) {
	if ch < 0 || ch >= len(c.channels) {
		return
	}
	c.channels[ch].toneOff, c.channels[ch].noiseOff, c.channels[ch].envOn = toneOff, noiseOff, envelope
}

func (c *Chip) SetVolume(ch int, level int) {
	if ch < 0 || ch >= len(c.channels) {
		return
	}
	c.channels[ch].volume = level & 0xf
}

func (c *Chip) SetNoise(period int) {
	c.noisePeriod = atLeastOne(period & 0x1f)
}

func (c *Chip) SetEnvelope(period int) {
	c.envPeriod = atLeastOne(period & 0xffff)
}

// SetEnvelopeShape writes the shape register, which restarts the envelope.
func (c *Chip) SetEnvelopeShape(shape int) {
	c.envCounter = 0
	c.setShape(shape & 0xf)
}

// Process runs the generators for one output sample and stores the averaged
// result.
func (c *Chip) Process() {
	if !c.configured {
		c.left, c.right = 0, 0
		return
	}
	c.phase += c.step
	var l, r float64
	n := 0
	for ; c.phase >= 1; c.phase-- {
		ll, rr := c.update()
		l += ll
		r += rr
		n++
	}
	if n > 0 {
		c.left, c.right = l/float64(n), r/float64(n)
	}
}

// RemoveDC passes the last output sample through a one-pole high-pass
// filter.
func (c *Chip) RemoveDC() {
	c.left = c.dc[0].filter(c.left)
	c.right = c.dc[1].filter(c.right)
}

func (c *Chip) Output() (left, right float64) {
	return c.left, c.right
}

func (c *Chip) update() (left, right float64) {
	noise := c.updateNoise()
	c.updateEnvelope()
	for i := range c.channels {
		ch := &c.channels[i]
		ch.counter++
		if ch.counter >= ch.period {
			ch.counter = 0
			ch.tone ^= 1
		}
		out := (ch.tone | b2i(ch.toneOff)) & (noise | b2i(ch.noiseOff))
		if out == 0 {
			continue
		}
		level := c.dac[ch.volume*2+1]
		if ch.envOn {
			level = c.dac[c.envValue]
		}
		left += level * ch.panLeft
		right += level * ch.panRight
	}
	return left, right
}

func (c *Chip) updateNoise() int {
	c.noiseCounter++
	if c.noiseCounter >= c.noisePeriod<<1 {
		c.noiseCounter = 0
		bit := (c.noise ^ (c.noise >> 3)) & 1
		c.noise = (c.noise >> 1) | (bit << 16)
	}
	return c.noise & 1
}

func (c *Chip) updateEnvelope() {
	c.envCounter++
	if c.envCounter < c.envPeriod {
		return
	}
	c.envCounter = 0
	switch envelopeShapes[c.envShape][c.envSegment] {
	case slideUp:
		c.envValue++
		if c.envValue > 31 {
			c.envSegment ^= 1
			c.resetSegment()
		}
	case slideDown:
		c.envValue--
		if c.envValue < 0 {
			c.envSegment ^= 1
			c.resetSegment()
		}
	}
}

func (c *Chip) setShape(shape int) {
	c.envShape = shape
	c.envSegment = 0
	c.resetSegment()
}

func (c *Chip) resetSegment() {
	switch envelopeShapes[c.envShape][c.envSegment] {
	case slideDown, holdTop:
		c.envValue = 31
	default:
		c.envValue = 0
	}
}

func (d *dcBlocker) filter(x float64) float64 {
	y := x - d.x1 + dcPole*d.y1
	d.x1, d.y1 = x, y
	return y
}

func atLeastOne(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
