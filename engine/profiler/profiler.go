package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting interval's worth of measurements.
type Stats struct {
	FPS           float64 // rendered frames per second
	UPS           float64 // fixed updates per second
	DrawsPerFrame float64 // mean renderer draw calls per frame
	HeapMB        float64 // live heap
	AllocRateMB   float64 // heap allocation rate in MB/s
	GCCount       uint32
	LastPauseUs   uint64
	MaxPauseUs    uint64
	SysMB         float64 // memory obtained from the OS
}

// Profiler tracks frame rate, update rate, draw calls and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	updateCount    int
	drawCalls      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	quiet          bool

	now func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Update records one fixed update.
func (p *Profiler) Update() {
	p.updateCount++
}

// Frame should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - drawCalls: the renderer draw calls issued by the frame
//
// Returns:
//   - bool: true if stats were computed this frame, false otherwise
func (p *Profiler) Frame(drawCalls int) bool {
	p.frameCount++
	p.drawCalls += drawCalls
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	secs := elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:           float64(p.frameCount) / secs,
		UPS:           float64(p.updateCount) / secs,
		DrawsPerFrame: float64(p.drawCalls) / float64(p.frameCount),
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs,
		GCCount:       p.memStats.NumGC,
	}

	if gcCount := s.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | UPS: %.2f | Draws/frame: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			s.FPS, s.UPS, s.DrawsPerFrame, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)
	}

	p.last = s
	p.frameCount = 0
	p.updateCount = 0
	p.drawCalls = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the stats of the most recent complete interval.
func (p *Profiler) Last() Stats {
	return p.last
}
