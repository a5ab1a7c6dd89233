package audio

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// ErrReleased is returned when playing on a source after Cleanup.
var ErrReleased = errors.New("audio source has been released")

// refillInterval is how often a streaming worker checks for played segments.
const refillInterval = 10 * time.Millisecond

// source is the implementation of the Source interface.
type source struct {
	mu *sync.Mutex
	d  *device

	ctrl   *beep.Ctrl
	volume *effects.Volume

	clip   Clip
	stream Stream
	queue  *segmentQueue
	length time.Duration

	playing  bool
	paused   bool
	looping  bool
	released bool

	// startedAt is when the current run of playback began; elapsed accumulates across pauses.
	startedAt time.Time
	elapsed   time.Duration

	finishTimer *time.Timer
	// generation invalidates timers that fire after a pause or stop.
	generation uint64
	onFinish   func()

	cancel context.CancelFunc
	worker *sync.WaitGroup
}

// Source plays one clip or stream at a time.
type Source interface {
	// Play starts a clip from the beginning, replacing whatever was playing.
	//
	// Parameters:
	//   - clip: the clip to play
	//   - loop: whether to loop until stopped
	//
	// Returns:
	//   - error: ErrReleased after Cleanup
	Play(clip Clip, loop bool) error

	// Stream starts a stream from its current position and runs the refill worker.
	//
	// Parameters:
	//   - stream: the stream to play
	//   - loop: whether to seek to the start at the end of the file
	//
	// Returns:
	//   - error: ErrReleased after Cleanup
	Stream(stream Stream, loop bool) error

	// Pause halts playback. The refill worker and the finish timer are stopped before
	// Pause returns.
	Pause()

	// Resume continues paused playback.
	Resume()

	// Stop ends playback and rewinds a stream. The refill worker is joined before Stop returns.
	Stop()

	// Cleanup stops the source and detaches it from the device.
	Cleanup()

	// Playing reports whether a clip or stream is loaded and not stopped.
	Playing() bool

	// Paused reports whether playback is paused.
	Paused() bool

	// Looping reports whether the current playback loops.
	Looping() bool

	// SetVolume sets the gain in powers of two: 0 is unchanged, -1 halves, 1 doubles.
	SetVolume(volume float64)

	// SetMuted silences the source without stopping it.
	SetMuted(muted bool)

	// OnFinish registers a callback run when non-looping playback reaches its end.
	// It runs on a timer goroutine.
	OnFinish(cb func())
}

var _ Source = &source{}

func newSource(d *device) *source {
	return &source{
		mu:     &sync.Mutex{},
		d:      d,
		volume: &effects.Volume{Base: 2},
		worker: &sync.WaitGroup{},
	}
}

func (s *source) Play(c Clip, loop bool) error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}

	var st beep.Streamer = c.Streamer()
	if loop {
		st = beep.Loop(-1, c.Streamer())
	}
	s.clip = c
	s.length = c.Length()
	s.start(s.d.adapt(st, c.Format().SampleRate), loop)
	return nil
}

func (s *source) Stream(str Stream, loop bool) error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}

	s.stream = str
	s.queue = newSegmentQueue(str)
	s.length = str.Length()
	s.start(s.d.adapt(s.queue, str.Format().SampleRate), loop)
	s.startWorker()
	return nil
}

// start puts a streamer on the mixer and arms the finish timer. Caller must hold the mutex.
func (s *source) start(st beep.Streamer, loop bool) {
	s.volume.Streamer = st
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	s.playing = true
	s.paused = false
	s.looping = loop
	s.elapsed = 0
	s.startedAt = time.Now()
	s.d.add(s.ctrl)
	s.armTimer()
}

// armTimer schedules the finish callback for the remaining play time. Caller must hold the mutex.
func (s *source) armTimer() {
	s.generation++
	if s.looping {
		return
	}
	gen := s.generation
	remaining := max(s.length-s.elapsed, 0)
	s.finishTimer = time.AfterFunc(remaining, func() { s.finish(gen) })
}

// disarmTimer cancels a pending finish callback. Caller must hold the mutex.
func (s *source) disarmTimer() {
	s.generation++
	if s.finishTimer != nil {
		s.finishTimer.Stop()
		s.finishTimer = nil
	}
}

func (s *source) finish(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.playing {
		s.mu.Unlock()
		return
	}
	cb := s.onFinish
	s.mu.Unlock()

	s.Stop()
	if cb != nil {
		cb()
	}
}

// startWorker runs the refill loop for the current stream. Caller must hold the mutex.
func (s *source) startWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.worker.Add(1)
	go s.refill(ctx, s.stream, s.queue, s.looping)
}

// stopWorker cancels the refill loop and waits for it to exit. Caller must not hold the
// mutex, the worker never takes it.
func (s *source) stopWorker(cancel context.CancelFunc) {
	if cancel != nil {
		cancel()
	}
	s.worker.Wait()
}

func (s *source) refill(ctx context.Context, str Stream, q *segmentQueue, loop bool) {
	defer s.worker.Done()
	ticker := time.NewTicker(refillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, index := range q.takeProcessed() {
			if ctx.Err() != nil {
				return
			}
			finished, err := str.FillBuffer(index)
			if err != nil {
				log.Printf("[Audio] refill segment %d: %v", index, err)
			}
			if finished && loop {
				if err := str.SeekToStart(); err != nil {
					log.Printf("[Audio] seek to start: %v", err)
				}
				finished, err = str.FillBuffer(index)
				if err != nil {
					log.Printf("[Audio] refill segment %d: %v", index, err)
				}
			}
			if finished {
				q.end()
				return
			}
			q.requeue(index)
		}
	}
}

func (s *source) Pause() {
	s.mu.Lock()
	if !s.playing || s.paused {
		s.mu.Unlock()
		return
	}
	s.d.withLock(func() { s.ctrl.Paused = true })
	s.paused = true
	s.elapsed += time.Since(s.startedAt)
	s.disarmTimer()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	s.stopWorker(cancel)
}

func (s *source) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || !s.paused {
		return
	}
	s.d.withLock(func() { s.ctrl.Paused = false })
	s.paused = false
	s.startedAt = time.Now()
	if s.stream != nil {
		s.startWorker()
	}
	s.armTimer()
}

func (s *source) Stop() {
	s.mu.Lock()
	if s.ctrl != nil {
		ctrl := s.ctrl
		// a nil streamer makes the mixer drop the ctrl
		s.d.withLock(func() { ctrl.Streamer = nil })
		s.ctrl = nil
	}
	s.disarmTimer()
	cancel := s.cancel
	s.cancel = nil
	str := s.stream
	s.playing = false
	s.paused = false
	s.looping = false
	s.elapsed = 0
	s.clip = nil
	s.stream = nil
	s.queue = nil
	s.mu.Unlock()

	s.stopWorker(cancel)
	if str != nil {
		if err := rewind(str); err != nil {
			log.Printf("[Audio] rewind stream: %v", err)
		}
	}
}

// rewind seeks a stream to its first sample and refills every segment from there.
func rewind(str Stream) error {
	if err := str.SeekToStart(); err != nil {
		return err
	}
	for i := 0; i < SegmentCount; i++ {
		if _, err := str.FillBuffer(i); err != nil {
			return err
		}
	}
	return nil
}

func (s *source) Cleanup() {
	s.Stop()
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	s.d.forget(s)
}

func (s *source) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *source) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *source) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

func (s *source) SetVolume(volume float64) {
	s.d.withLock(func() { s.volume.Volume = volume })
}

func (s *source) SetMuted(muted bool) {
	s.d.withLock(func() { s.volume.Silent = muted })
}

func (s *source) OnFinish(cb func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = cb
}
