package aytracker

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length, each
	// sample represented by [2]float32. [0] is left channel, [1] is right
	AudioBuffer [][2]float32

	// AudioSource fills the buffer with audio. Returning io.EOF ends the
	// stream after the samples written in the current call.
	AudioSource func(buf AudioBuffer) error

	// AudioContext represents the low-level audio drivers. There should be
	// at most one AudioContext at a time. The interface is implemented at
	// least by oto.OtoContext.
	AudioContext interface {
		Play(r AudioSource) CloserWaiter
		SampleRate() int
	}

	// CloserWaiter is a handle to a playing stream: Close stops it and Wait
	// blocks until it has finished.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// Fill sets every frame of the buffer to v.
func (b AudioBuffer) Fill(v [2]float32) {
	for i := range b {
		b[i] = v
	}
}
