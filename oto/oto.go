package oto

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/aytracker/aytracker"
	"github.com/ebitengine/oto/v3"
)

type (
	// OtoContext implements aytracker.AudioContext on top of oto. Only one
	// OtoContext can exist in a process.
	OtoContext struct {
		context    *oto.Context
		sampleRate int
	}

	// OtoOutput pulls audio from an AudioSource whenever oto needs more and
	// converts it to 32-bit float samples.
	OtoOutput struct {
		player    *oto.Player
		source    aytracker.AudioSource
		tmpBuffer aytracker.AudioBuffer
		err       error
		done      atomic.Bool
	}
)

const waitInterval = 10 * time.Millisecond

var _ aytracker.AudioContext = (*OtoContext)(nil)

// NewContext opens the audio device. bufferFrames sets the latency of the
// device buffer; 0 lets oto choose.
func NewContext(sampleRate, bufferFrames int) (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	if bufferFrames > 0 {
		op.BufferSize = time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate)
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context, sampleRate: sampleRate}, nil
}

func (c *OtoContext) SampleRate() int {
	return c.sampleRate
}

// Play starts pulling audio from source. The source is called on a goroutine
// owned by oto.
func (c *OtoContext) Play(source aytracker.AudioSource) aytracker.CloserWaiter {
	o := &OtoOutput{source: source}
	o.player = c.context.NewPlayer(o)
	o.player.Play()
	return o
}

// Suspend pauses all output of the context.
func (c *OtoContext) Suspend() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Read implements io.Reader for the oto player.
func (o *OtoOutput) Read(p []byte) (int, error) {
	if o.done.Load() {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if cap(o.tmpBuffer) < frames {
		o.tmpBuffer = make(aytracker.AudioBuffer, frames)
	}
	buf := o.tmpBuffer[:frames]
	err := o.source(buf)
	n := len(AudioBufferToFloat32LE(buf, p[:0]))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			o.err = err
		}
		o.done.Store(true)
		return n, io.EOF
	}
	return n, nil
}

// Wait blocks until the source has ended and oto has played what it got.
func (o *OtoOutput) Wait() {
	for o.player.IsPlaying() {
		time.Sleep(waitInterval)
	}
}

// Err returns the error the source stopped with, if it was not io.EOF.
func (o *OtoOutput) Err() error {
	if o.done.Load() {
		return o.err
	}
	return nil
}

// Close stops the output.
func (o *OtoOutput) Close() error {
	o.done.Store(true)
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
