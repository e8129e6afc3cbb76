package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/oto"
)

func TestAudioBufferToFloat32LE(t *testing.T) {
	buf := aytracker.AudioBuffer{{0.5, -0.25}, {2, -3}}
	dst := make([]byte, 0, 16)
	out := oto.AudioBufferToFloat32LE(buf, dst)
	if len(out) != 16 {
		t.Fatalf("got %d bytes, want 16", len(out))
	}
	if &out[0] != &dst[:1][0] {
		t.Error("conversion allocated although dst had room")
	}
	want := []float32{0.5, -0.25, 1, -1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
		if got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}
