package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// DeviceBuilderOption is a functional option for configuring a Device.
type DeviceBuilderOption func(*device)

// WithSampleRate sets the output sample rate.
//
// Parameters:
//   - rate: samples per second, default 44100
//
// Returns:
//   - DeviceBuilderOption: a function that sets the sample rate
func WithSampleRate(rate int) DeviceBuilderOption {
	return func(d *device) {
		d.sampleRate = beep.SampleRate(rate)
	}
}

// WithBufferDuration sets the output buffer length. Shorter buffers lower latency at the
// cost of more frequent refills.
//
// Parameters:
//   - duration: the buffer length, default 100ms
//
// Returns:
//   - DeviceBuilderOption: a function that sets the buffer duration
func WithBufferDuration(duration time.Duration) DeviceBuilderOption {
	return func(d *device) {
		d.bufferDuration = duration
	}
}

// WithOutput replaces the system speaker.
func WithOutput(o Output) DeviceBuilderOption {
	return func(d *device) {
		d.output = o
	}
}
