package profiler

import (
	"testing"
	"time"
)

func TestFrameReportsPerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithQuiet(), WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		p.Update()
		p.Update()
		now = now.Add(100 * time.Millisecond)
		if p.Frame(4) {
			t.Fatalf("frame %d reported early", i)
		}
	}
	now = now.Add(700 * time.Millisecond)
	p.Update()
	if !p.Frame(8) {
		t.Fatal("interval elapsed without a report")
	}

	s := p.Last()
	if s.FPS != 4 || s.UPS != 7 || s.DrawsPerFrame != 5 {
		t.Errorf("stats = %+v", s)
	}

	// counters reset for the next interval
	now = now.Add(time.Second)
	p.Frame(2)
	if s := p.Last(); s.FPS != 1 || s.UPS != 0 || s.DrawsPerFrame != 2 {
		t.Errorf("second interval = %+v", s)
	}
}
