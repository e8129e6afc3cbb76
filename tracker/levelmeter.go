package tracker

import (
	"math"

	"github.com/aytracker/aytracker"
	"github.com/viterin/vek/vek32"
)

type (
	// Level is the peak and RMS level of one audio buffer, per stereo
	// channel, in decibels relative to full scale.
	Level struct {
		Peak [2]Decibel
		RMS  [2]Decibel
	}

	Decibel float32

	// LevelMeter measures audio buffers. It keeps its scratch buffers
	// between calls, so it only allocates when a larger buffer than before
	// is measured.
	LevelMeter struct {
		tmp []float32
	}
)

// Silence is the level reported for a buffer of zeros.
const Silence Decibel = -120

func toDecibel(v float32) Decibel {
	if v <= 0 {
		return Silence
	}
	return max(Decibel(20*math.Log10(float64(v))), Silence)
}

// Update returns the level of buf.
func (m *LevelMeter) Update(buf aytracker.AudioBuffer) (ret Level) {
	if len(buf) == 0 {
		return Level{Peak: [2]Decibel{Silence, Silence}, RMS: [2]Decibel{Silence, Silence}}
	}
	if len(m.tmp) < len(buf) {
		m.tmp = append(m.tmp, make([]float32, len(buf)-len(m.tmp))...)
	}
	x := m.tmp[:len(buf)]
	for chn := 0; chn < 2; chn++ {
		// deinterleave the channels
		for i := range buf {
			x[i] = buf[i][chn]
		}
		power := vek32.Dot(x, x) / float32(len(x))
		ret.RMS[chn] = toDecibel(float32(math.Sqrt(float64(power))))
		vek32.Abs_Inplace(x)
		ret.Peak[chn] = toDecibel(vek32.Max(x))
	}
	return
}
