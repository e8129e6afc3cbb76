package tracker

import (
	"fmt"

	"github.com/aytracker/aytracker"
)

// Render plays a song offline from the first order entry until the order
// wraps for the first time, or until maxSeconds of audio have been rendered
// if maxSeconds is positive. The device is configured from cfg and the song.
func Render(song *aytracker.Song, dev aytracker.ChipDevice, cfg Config, maxSeconds float64) (aytracker.AudioBuffer, error) {
	if err := song.Validate(); err != nil {
		return nil, fmt.Errorf("cannot render song: %w", err)
	}
	if dev == nil {
		return nil, &aytracker.DeviceError{Op: "render", Err: fmt.Errorf("no chip device")}
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if err := dev.Configure(cfg.ClockFor(song), rate); err != nil {
		return nil, err
	}
	cfg.StereoLayout().Apply(dev, cfg.EqualPowerPan)
	seq := NewSequencer(rate, cfg.RestartAtLoopPoint)
	snap := SnapshotFromSong(song)
	snap.TicksPerSecond = cfg.TickRateFor(song)
	seq.SetSnapshot(snap)
	seq.Play(dev, 0, 0)

	maxSamples := -1
	if maxSeconds > 0 {
		maxSamples = int(maxSeconds * float64(rate))
	}
	chunk := seq.SamplesPerTick()
	var buffer aytracker.AudioBuffer
	for seq.State.Loops == 0 {
		n := chunk
		if maxSamples >= 0 {
			if len(buffer) >= maxSamples {
				break
			}
			n = min(n, maxSamples-len(buffer))
		}
		start := len(buffer)
		buffer = append(buffer, make(aytracker.AudioBuffer, n)...)
		seq.Render(dev, buffer[start:], nil)
	}
	return buffer, nil
}
