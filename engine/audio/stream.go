package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// SegmentCount is the number of segment buffers a Stream cycles through.
const SegmentCount = 3

// segmentDuration is how much audio one segment buffer holds.
const segmentDuration = 250 * time.Millisecond

// Stream decodes a long sound incrementally into SegmentCount fixed buffers. A source plays
// the filled segments in order while its worker refills the ones already played.
type Stream interface {
	// Format returns the sample format of the decoded data.
	Format() beep.Format

	// Length returns the total playback duration.
	Length() time.Duration

	// FillBuffer decodes the next chunk of the file into segment index.
	//
	// Parameters:
	//   - index: the segment, 0 <= index < SegmentCount
	//
	// Returns:
	//   - bool: true if the end of the file was reached and nothing was decoded
	//   - error: a decode error
	FillBuffer(index int) (bool, error)

	// Segment returns the samples decoded into segment index by the last FillBuffer.
	Segment(index int) [][2]float64

	// SeekToStart rewinds the decoder to the first sample.
	SeekToStart() error

	// Close releases the decoder and the file.
	Close() error
}

// stream is the implementation of the Stream interface.
type stream struct {
	mu *sync.Mutex

	decoder  beep.StreamSeekCloser
	format   beep.Format
	segments [SegmentCount][][2]float64
	filled   [SegmentCount]int
	closed   bool
}

var _ Stream = &stream{}

// OpenStream opens a WAV or Ogg Vorbis file for streaming and fills every segment.
//
// Parameters:
//   - path: the sound file
//
// Returns:
//   - Stream: the open stream
//   - error: ErrUnsupportedFormat, or an open or decode error
func OpenStream(path string) (Stream, error) {
	d, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return newStream(d, format)
}

// newStream wraps an open decoder and fills every segment.
func newStream(d beep.StreamSeekCloser, format beep.Format) (Stream, error) {
	s := &stream{
		mu:      &sync.Mutex{},
		decoder: d,
		format:  format,
	}
	size := format.SampleRate.N(segmentDuration)
	for i := range s.segments {
		s.segments[i] = make([][2]float64, size)
		if _, err := s.FillBuffer(i); err != nil {
			d.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *stream) Format() beep.Format {
	return s.format
}

func (s *stream) Length() time.Duration {
	return s.format.SampleRate.D(s.decoder.Len())
}

func (s *stream) FillBuffer(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true, nil
	}
	buf := s.segments[index]
	total := 0
	for total < len(buf) {
		n, ok := s.decoder.Stream(buf[total:])
		total += n
		if !ok {
			break
		}
	}
	s.filled[index] = total
	if err := s.decoder.Err(); err != nil {
		return total == 0, fmt.Errorf("audio: stream segment %d: %w", index, err)
	}
	return total == 0, nil
}

func (s *stream) Segment(index int) [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments[index][:s.filled[index]]
}

func (s *stream) SeekToStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.decoder.Seek(0)
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.decoder.Close()
}

// segmentQueue plays stream segments in the order they are queued and reports the ones
// it has finished so the refill worker can reuse them.
type segmentQueue struct {
	mu *sync.Mutex

	stream    Stream
	ready     []int
	processed []int
	pos       int
	ended     bool
}

func newSegmentQueue(s Stream) *segmentQueue {
	q := &segmentQueue{mu: &sync.Mutex{}, stream: s}
	for i := 0; i < SegmentCount; i++ {
		q.ready = append(q.ready, i)
	}
	return q
}

func (q *segmentQueue) Stream(samples [][2]float64) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(samples) && len(q.ready) > 0 {
		seg := q.stream.Segment(q.ready[0])
		copied := copy(samples[n:], seg[q.pos:])
		n += copied
		q.pos += copied
		if q.pos >= len(seg) {
			q.processed = append(q.processed, q.ready[0])
			q.ready = q.ready[1:]
			q.pos = 0
		}
	}
	if n == len(samples) {
		return n, true
	}
	if q.ended {
		return n, n > 0
	}
	// underrun while the worker catches up
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (q *segmentQueue) Err() error {
	return nil
}

// takeProcessed returns and clears the segments that finished playing.
func (q *segmentQueue) takeProcessed() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.processed
	q.processed = nil
	return out
}

// requeue appends a refilled segment.
func (q *segmentQueue) requeue(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ready = append(q.ready, index)
}

// end marks that no more segments will be queued.
func (q *segmentQueue) end() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ended = true
}
