// Package config loads the application settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/audio"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/window"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for settings that parse but make no sense.
var ErrInvalid = errors.New("invalid config")

// Config is the application settings file.
//
//	window:
//	  title: My Game
//	  width: 1280
//	  height: 720
//	  resizable: true
//	  close_on_escape: false
//	renderer:
//	  vsync: true
//	  clear_color: [0.1, 0.1, 0.1, 1]
//	audio:
//	  sample_rate: 44100
//	  buffer_ms: 100
//	log:
//	  file: game.log
//	  flags: [date, time, shortfile]
//	  prefix: "game "
//	tick_rate: 60
//	profiling: false
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Audio     AudioConfig     `yaml:"audio"`
	Log       LogConfig       `yaml:"log"`
	Resources ResourcesConfig `yaml:"resources"`

	// TickRate is the number of fixed updates per second.
	TickRate float64 `yaml:"tick_rate"`

	// MaxFrameTime caps the time simulated after a stall, in seconds.
	MaxFrameTime float64 `yaml:"max_frame_time"`

	Profiling bool `yaml:"profiling"`
}

type WindowConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Resizable     *bool  `yaml:"resizable"`
	CloseOnEscape *bool  `yaml:"close_on_escape"`
	HiddenCursor  bool   `yaml:"hidden_cursor"`
}

type RendererConfig struct {
	VSync      *bool     `yaml:"vsync"`
	ClearColor []float32 `yaml:"clear_color"`
}

type AudioConfig struct {
	Disabled   bool `yaml:"disabled"`
	SampleRate int  `yaml:"sample_rate"`
	BufferMs   int  `yaml:"buffer_ms"`
}

type ResourcesConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the settings used for every field a file leaves out.
func Default() Config {
	yes := true
	return Config{
		Window: WindowConfig{
			Title:         "oxy2d",
			Width:         800,
			Height:        600,
			Resizable:     &yes,
			CloseOnEscape: &yes,
		},
		Renderer: RendererConfig{
			VSync:      &yes,
			ClearColor: []float32{0, 0, 0, 1},
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			BufferMs:   100,
		},
		Log: LogConfig{
			Flags: []string{"date", "time"},
		},
		Resources:    ResourcesConfig{Workers: 4},
		TickRate:     60,
		MaxFrameTime: 0.25,
	}
}

// Load reads and parses a settings file.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the settings with defaults filled in
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes settings from YAML. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the settings with defaults filled in
//   - error: a parse or validation error
func Parse(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// WithDefaults returns c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	d := Default()

	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)
	c.Window.Resizable = common.Coalesce(c.Window.Resizable, d.Window.Resizable)
	c.Window.CloseOnEscape = common.Coalesce(c.Window.CloseOnEscape, d.Window.CloseOnEscape)

	c.Renderer.VSync = common.Coalesce(c.Renderer.VSync, d.Renderer.VSync)
	if len(c.Renderer.ClearColor) == 0 {
		c.Renderer.ClearColor = d.Renderer.ClearColor
	}

	c.Audio.SampleRate = common.Coalesce(c.Audio.SampleRate, d.Audio.SampleRate)
	c.Audio.BufferMs = common.Coalesce(c.Audio.BufferMs, d.Audio.BufferMs)

	if c.Log.Flags == nil {
		c.Log.Flags = d.Log.Flags
	}
	c.Resources.Workers = common.Coalesce(c.Resources.Workers, d.Resources.Workers)
	c.TickRate = common.Coalesce(c.TickRate, d.TickRate)
	c.MaxFrameTime = common.Coalesce(c.MaxFrameTime, d.MaxFrameTime)
	return c
}

// Validate rejects negative sizes and rates and malformed colours.
func (c Config) Validate() error {
	switch {
	case c.Window.Width < 0 || c.Window.Height < 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.TickRate < 0:
		return fmt.Errorf("%w: tick_rate %g", ErrInvalid, c.TickRate)
	case c.MaxFrameTime < 0:
		return fmt.Errorf("%w: max_frame_time %g", ErrInvalid, c.MaxFrameTime)
	case c.Audio.SampleRate < 0 || c.Audio.BufferMs < 0:
		return fmt.Errorf("%w: audio sample_rate %d buffer_ms %d", ErrInvalid, c.Audio.SampleRate, c.Audio.BufferMs)
	case len(c.Renderer.ClearColor) != 3 && len(c.Renderer.ClearColor) != 4:
		return fmt.Errorf("%w: clear_color needs 3 or 4 components, got %d", ErrInvalid, len(c.Renderer.ClearColor))
	}
	if _, err := parseFlags(c.Log.Flags); err != nil {
		return err
	}
	return nil
}

// TickDuration returns the length of one fixed update.
func (c Config) TickDuration() time.Duration {
	return time.Duration(float64(time.Second) / common.Coalesce(c.TickRate, 60))
}

// ClearColor returns the renderer clear colour. A missing alpha is opaque.
func (c Config) ClearColor() common.Color {
	cc := c.Renderer.ClearColor
	col := common.Color{A: 1}
	if len(cc) >= 3 {
		col.R, col.G, col.B = cc[0], cc[1], cc[2]
	}
	if len(cc) == 4 {
		col.A = cc[3]
	}
	return col
}

// WindowOptions converts the window section to window builder options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	w := c.Window
	opts := []window.WindowBuilderOption{
		window.WithTitle(w.Title),
		window.WithSize(w.Width, w.Height),
	}
	if w.Resizable != nil {
		opts = append(opts, window.WithResizable(*w.Resizable))
	}
	if w.CloseOnEscape != nil {
		opts = append(opts, window.WithCloseOnEscape(*w.CloseOnEscape))
	}
	if w.HiddenCursor {
		opts = append(opts, window.WithHiddenCursor())
	}
	return opts
}

// RendererOptions converts the renderer section to renderer builder options.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode := renderer.PresentModeVSync
	if c.Renderer.VSync != nil && !*c.Renderer.VSync {
		mode = renderer.PresentModeUncapped
	}
	return []renderer.RendererBuilderOption{
		renderer.WithSize(c.Window.Width, c.Window.Height),
		renderer.WithPresentMode(mode),
		renderer.WithClearColor(c.ClearColor()),
	}
}

// AudioOptions converts the audio section to device builder options.
func (c Config) AudioOptions() []audio.DeviceBuilderOption {
	return []audio.DeviceBuilderOption{
		audio.WithSampleRate(c.Audio.SampleRate),
		audio.WithBufferDuration(time.Duration(c.Audio.BufferMs) * time.Millisecond),
	}
}
