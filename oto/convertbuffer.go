package oto

import (
	"encoding/binary"
	"math"

	"github.com/aytracker/aytracker"
)

const bytesPerFrame = 8

// AudioBufferToFloat32LE appends the buffer to dst as interleaved 32-bit
// little-endian floats, the format the oto context is opened with. Samples
// are clamped to [-1, 1]. If dst has room for the whole buffer, no
// allocation takes place.
func AudioBufferToFloat32LE(buffer aytracker.AudioBuffer, dst []byte) []byte {
	for _, frame := range buffer {
		for _, v := range frame {
			v = min(max(v, -1), 1)
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	}
	return dst
}
