package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const testRate = beep.SampleRate(8000)

// fakeOutput stands in for the speaker. pull drains samples from the mixer by hand.
type fakeOutput struct {
	mu     sync.Mutex
	s      beep.Streamer
	closed bool
	err    error
}

func (o *fakeOutput) Init(beep.SampleRate, int) error { return o.err }
func (o *fakeOutput) Play(s beep.Streamer)            { o.s = s }
func (o *fakeOutput) Lock()                           { o.mu.Lock() }
func (o *fakeOutput) Unlock()                         { o.mu.Unlock() }
func (o *fakeOutput) Close()                          { o.closed = true }

func (o *fakeOutput) pull(n int) [][2]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := make([][2]float64, n)
	o.s.Stream(buf)
	return buf
}

// constant yields n samples of value v.
type constant struct {
	n int
	v float64
}

func (c *constant) Stream(samples [][2]float64) (int, bool) {
	if c.n <= 0 {
		return 0, false
	}
	n := min(len(samples), c.n)
	for i := range samples[:n] {
		samples[i] = [2]float64{c.v, c.v}
	}
	c.n -= n
	return n, true
}

func (c *constant) Err() error { return nil }

func writeWAV(t *testing.T, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, &constant{n: samples, v: 0.5}, format); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestDevice(t *testing.T) (Device, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	d, err := NewDevice(WithOutput(out), WithSampleRate(int(testRate)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d, out
}

func TestNewDeviceFailure(t *testing.T) {
	out := &fakeOutput{err: errors.New("no device")}
	if _, err := NewDevice(WithOutput(out)); err == nil {
		t.Fatal("expected init error")
	}
}

func TestLoadClipLength(t *testing.T) {
	c, err := LoadClip(writeWAV(t, 4000))
	if err != nil {
		t.Fatal(err)
	}
	if c.Samples() != 4000 {
		t.Errorf("samples = %d", c.Samples())
	}
	if c.Length() != 500*time.Millisecond {
		t.Errorf("length = %v, want 500ms", c.Length())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	os.WriteFile(path, []byte("x"), 0o644)
	if _, err := LoadClip(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadClip: %v", err)
	}
	if _, err := OpenStream(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("OpenStream: %v", err)
	}
}

func TestClipPlaysAndFinishes(t *testing.T) {
	d, out := newTestDevice(t)
	c := NewClip(beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}, &constant{n: 400, v: 0.25})

	done := make(chan struct{})
	s := d.NewSource()
	s.OnFinish(func() { close(done) })
	if err := s.Play(c, false); err != nil {
		t.Fatal(err)
	}
	if got := out.pull(10); got[0][0] != 0.25 {
		t.Errorf("first sample = %v", got[0])
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("finish callback did not run")
	}
	if s.Playing() {
		t.Error("source still playing after finish")
	}
}

func TestPauseCancelsFinishAndResume(t *testing.T) {
	d, out := newTestDevice(t)
	c := NewClip(beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}, &constant{n: 800, v: 1})

	finished := make(chan struct{}, 1)
	s := d.NewSource()
	s.OnFinish(func() { finished <- struct{}{} })
	s.Play(c, false)
	s.Pause()
	if !s.Paused() {
		t.Fatal("not paused")
	}
	if got := out.pull(4); got[0][0] != 0 {
		t.Errorf("paused source produced %v", got[0])
	}

	select {
	case <-finished:
		t.Fatal("finish fired while paused")
	case <-time.After(200 * time.Millisecond):
	}

	s.Resume()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("finish did not fire after resume")
	}
}

func TestStreamSegments(t *testing.T) {
	// 250ms segments at 8kHz hold 2000 samples, so 5000 samples span 3 segments
	str, err := OpenStream(writeWAV(t, 5000))
	if err != nil {
		t.Fatal(err)
	}
	defer str.Close()

	lens := []int{len(str.Segment(0)), len(str.Segment(1)), len(str.Segment(2))}
	if lens[0] != 2000 || lens[1] != 2000 || lens[2] != 1000 {
		t.Errorf("segment lengths = %v", lens)
	}
	finished, err := str.FillBuffer(0)
	if err != nil || !finished {
		t.Errorf("FillBuffer at EOF = %v, %v", finished, err)
	}
	if err := str.SeekToStart(); err != nil {
		t.Fatal(err)
	}
	if finished, _ := str.FillBuffer(0); finished || len(str.Segment(0)) != 2000 {
		t.Error("FillBuffer after SeekToStart did not decode")
	}
	if str.Length() != 625*time.Millisecond {
		t.Errorf("length = %v", str.Length())
	}
}

func TestStopJoinsRefillWorker(t *testing.T) {
	d, out := newTestDevice(t)
	str, err := OpenStream(writeWAV(t, 12000))
	if err != nil {
		t.Fatal(err)
	}
	defer str.Close()

	s := d.NewSource()
	if err := s.Stream(str, true); err != nil {
		t.Fatal(err)
	}
	out.pull(4500)
	time.Sleep(3 * refillInterval)

	src := s.(*source)
	s.Pause()
	src.mu.Lock()
	if src.cancel != nil {
		t.Error("worker cancel func kept after Pause")
	}
	src.mu.Unlock()
	// Wait returns immediately once the worker has been joined
	src.worker.Wait()

	s.Resume()
	s.Stop()
	src.worker.Wait()
	if s.Playing() {
		t.Error("still playing after Stop")
	}
	if len(str.Segment(0)) != 2000 {
		t.Error("Stop did not rewind and refill the stream")
	}
}
