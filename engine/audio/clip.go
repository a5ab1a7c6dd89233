package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for files that are neither WAV nor Ogg Vorbis.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Clip is a fully decoded sound held in memory.
type Clip interface {
	// Format returns the sample format of the decoded data.
	Format() beep.Format

	// Length returns the playback duration.
	Length() time.Duration

	// Samples returns the number of decoded samples.
	Samples() int

	// Streamer returns a new streamer over the whole clip.
	Streamer() beep.StreamSeeker
}

// clip is the implementation of the Clip interface.
type clip struct {
	buffer *beep.Buffer
}

var _ Clip = &clip{}

// LoadClip decodes a WAV or Ogg Vorbis file completely into memory.
//
// Parameters:
//   - path: the sound file
//
// Returns:
//   - Clip: the decoded clip
//   - error: ErrUnsupportedFormat, or an open or decode error
func LoadClip(path string) (Clip, error) {
	s, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	return &clip{buffer: buf}, nil
}

// NewClip wraps already decoded samples.
//
// Parameters:
//   - format: the sample format
//   - s: the source, read until it is drained
//
// Returns:
//   - Clip: the clip
func NewClip(format beep.Format, s beep.Streamer) Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &clip{buffer: buf}
}

func (c *clip) Format() beep.Format {
	return c.buffer.Format()
}

func (c *clip) Length() time.Duration {
	return c.buffer.Format().SampleRate.D(c.buffer.Len())
}

func (c *clip) Samples() int {
	return c.buffer.Len()
}

func (c *clip) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// decodeFile opens path and picks a decoder from its extension.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".ogg" {
		return nil, beep.Format{}, fmt.Errorf("audio: %s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("audio: %w", err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	if ext == ".wav" {
		s, format, err = wav.Decode(f)
	} else {
		s, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	return s, format, nil
}
