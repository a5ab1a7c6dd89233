package audio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// device is the implementation of the Device interface.
type device struct {
	mu *sync.Mutex

	output         Output
	sampleRate     beep.SampleRate
	bufferDuration time.Duration
	mixer          *beep.Mixer

	sources []*source
	closed  bool
}

// Device is an initialized audio output with one mixer that every Source plays into.
type Device interface {
	// SampleRate returns the output sample rate. Clips and streams at other rates are resampled.
	SampleRate() beep.SampleRate

	// NewSource creates an idle source on the device.
	//
	// Returns:
	//   - Source: the new source
	NewSource() Source

	// Play creates a source and starts a clip on it.
	//
	// Parameters:
	//   - clip: the clip to play
	//   - loop: whether to loop until stopped
	//
	// Returns:
	//   - Source: the playing source
	//   - error: an error if playback could not start
	Play(clip Clip, loop bool) (Source, error)

	// PlayStream creates a source and starts streaming on it.
	PlayStream(stream Stream, loop bool) (Source, error)

	// Close stops every source and releases the output.
	Close()
}

var _ Device = &device{}

// NewDevice initializes the output and starts the mixer on it.
//
// Parameters:
//   - options: variadic list of DeviceBuilderOption functions to configure the device
//
// Returns:
//   - Device: the initialized device
//   - error: an error if the output could not be initialized
func NewDevice(options ...DeviceBuilderOption) (Device, error) {
	d := &device{
		mu:             &sync.Mutex{},
		output:         speakerOutput{},
		sampleRate:     beep.SampleRate(44100),
		bufferDuration: 100 * time.Millisecond,
		mixer:          &beep.Mixer{},
	}
	for _, opt := range options {
		opt(d)
	}

	if err := d.output.Init(d.sampleRate, d.sampleRate.N(d.bufferDuration)); err != nil {
		return nil, fmt.Errorf("audio: init output at %d Hz: %w", d.sampleRate, err)
	}
	d.output.Play(d.mixer)
	log.Printf("[Audio] device ready at %d Hz, %v buffer", d.sampleRate, d.bufferDuration)
	return d, nil
}

func (d *device) SampleRate() beep.SampleRate {
	return d.sampleRate
}

func (d *device) NewSource() Source {
	s := newSource(d)
	d.mu.Lock()
	d.sources = append(d.sources, s)
	d.mu.Unlock()
	return s
}

func (d *device) Play(clip Clip, loop bool) (Source, error) {
	s := d.NewSource()
	if err := s.Play(clip, loop); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *device) PlayStream(stream Stream, loop bool) (Source, error) {
	s := d.NewSource()
	if err := s.Stream(stream, loop); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	sources := d.sources
	d.sources = nil
	d.mu.Unlock()

	for _, s := range sources {
		s.Stop()
	}
	d.output.Lock()
	d.mixer.Clear()
	d.output.Unlock()
	d.output.Close()
}

// add puts a streamer on the mixer.
func (d *device) add(s beep.Streamer) {
	d.output.Lock()
	d.mixer.Add(s)
	d.output.Unlock()
}

// withLock runs fn while the output is not pulling samples.
func (d *device) withLock(fn func()) {
	d.output.Lock()
	defer d.output.Unlock()
	fn()
}

// forget drops a cleaned up source.
func (d *device) forget(s *source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, other := range d.sources {
		if other == s {
			d.sources = append(d.sources[:i], d.sources[i+1:]...)
			return
		}
	}
}

// adapt resamples a streamer to the device rate when needed.
func (d *device) adapt(s beep.Streamer, rate beep.SampleRate) beep.Streamer {
	if rate == d.sampleRate {
		return s
	}
	return beep.Resample(4, rate, d.sampleRate, s)
}
