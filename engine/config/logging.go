package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LogConfig is the log section of the settings file.
type LogConfig struct {
	// File receives log output; empty means stderr. The file is appended to.
	File string `yaml:"file"`

	// Flags are log package flags by name: date, time, microseconds, longfile,
	// shortfile, utc, msgprefix.
	Flags []string `yaml:"flags"`

	Prefix string `yaml:"prefix"`
}

var logFlags = map[string]int{
	"date":         log.Ldate,
	"time":         log.Ltime,
	"microseconds": log.Lmicroseconds,
	"longfile":     log.Llongfile,
	"shortfile":    log.Lshortfile,
	"utc":          log.LUTC,
	"msgprefix":    log.Lmsgprefix,
}

func parseFlags(names []string) (int, error) {
	flags := 0
	for _, n := range names {
		f, ok := logFlags[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("%w: unknown log flag %q", ErrInvalid, n)
		}
		flags |= f
	}
	return flags, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging points the standard logger at the configured destination.
//
// Parameters:
//   - c: the log section
//
// Returns:
//   - io.Closer: closes the log file, if one was opened
//   - error: an error for unknown flags or an unopenable file
func SetupLogging(c LogConfig) (io.Closer, error) {
	flags, err := parseFlags(c.Flags)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
			return nil, fmt.Errorf("log file %s: %w", c.File, err)
		}
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("log file %s: %w", c.File, err)
		}
		out, closer = f, f
	}

	log.SetOutput(out)
	log.SetFlags(flags)
	log.SetPrefix(c.Prefix)
	return closer, nil
}
