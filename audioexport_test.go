package aytracker_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/aytracker/aytracker"
)

func TestWavHeader(t *testing.T) {
	buffer := aytracker.AudioBuffer{{0.5, -0.5}, {1, 2}, {0, 0}}
	for _, tc := range []struct {
		pcm16      bool
		headerSize int
		format     uint16
		bytesPer   int
	}{
		{true, 44, 1, 2},
		{false, 58, 3, 4},
	} {
		data, err := buffer.Wav(tc.pcm16, 22050)
		if err != nil {
			t.Fatalf("Wav(%v) failed: %v", tc.pcm16, err)
		}
		if want := tc.headerSize + len(buffer)*2*tc.bytesPer; len(data) != want {
			t.Fatalf("Wav(%v) length = %d, want %d", tc.pcm16, len(data), want)
		}
		if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
			t.Fatalf("Wav(%v) has no RIFF/WAVE magic", tc.pcm16)
		}
		if got := int(binary.LittleEndian.Uint32(data[4:8])); got != len(data)-8 {
			t.Errorf("Wav(%v) chunk size = %d, want %d", tc.pcm16, got, len(data)-8)
		}
		if got := binary.LittleEndian.Uint16(data[20:22]); got != tc.format {
			t.Errorf("Wav(%v) format = %d, want %d", tc.pcm16, got, tc.format)
		}
		if got := binary.LittleEndian.Uint32(data[24:28]); got != 22050 {
			t.Errorf("Wav(%v) sample rate = %d, want 22050", tc.pcm16, got)
		}
		if string(data[tc.headerSize-8:tc.headerSize-4]) != "data" {
			t.Errorf("Wav(%v) data chunk not found at offset %d", tc.pcm16, tc.headerSize-8)
		}
	}
}

func TestRawClampsPCM16(t *testing.T) {
	buffer := aytracker.AudioBuffer{{0.5, -0.5}, {1, 2}, {-3, 0}}
	data, err := buffer.Raw(true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	want := []int16{math.MaxInt16 / 2, -math.MaxInt16 / 2, math.MaxInt16, math.MaxInt16, math.MinInt16, 0}
	if len(data) != len(want)*2 {
		t.Fatalf("Raw length = %d, want %d", len(data), len(want)*2)
	}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(data[i*2:])); got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}
