// Package audio plays decoded clips and streamed music through a beep mixer. Each Source
// owns at most one refill worker, which is cancelled and joined by Pause and Stop.
package audio

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output is the sink a Device mixes into. The default sends samples to the system
// speaker; tests pass their own output and pull samples by hand.
type Output interface {
	// Init prepares the sink for the given sample rate and buffer size in samples.
	Init(sampleRate beep.SampleRate, bufferSize int) error

	// Play starts pulling samples from s.
	Play(s beep.Streamer)

	// Lock blocks the sink from pulling samples. Streamers it plays must only be
	// changed while locked.
	Lock()

	// Unlock resumes pulling samples.
	Unlock()

	// Close releases the sink.
	Close()
}

// speakerOutput is the Output backed by the beep speaker package.
type speakerOutput struct{}

var _ Output = speakerOutput{}

func (speakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (speakerOutput) Lock() {
	speaker.Lock()
}

func (speakerOutput) Unlock() {
	speaker.Unlock()
}

func (speakerOutput) Close() {
	speaker.Clear()
	speaker.Close()
}
