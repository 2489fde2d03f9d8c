// Package logger owns the process-wide zerolog logger. The serve command calls
// Init once; everything else receives the logger by injection or via Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level string
	// Pretty enables human-friendly console output on Output.
	// The file sink, when configured, always receives JSON.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// File, when set, adds a size-rotated JSON log file next to Output.
	File *FileOptions
}

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	instance    zerolog.Logger
	fileSink    *lumberjack.Logger
	once        sync.Once
	initialized bool
)

// Init builds the logger on first use and returns it. Later calls return the
// same logger and ignore their options.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		if opts.File != nil && opts.File.Path != "" {
			fileSink = &lumberjack.Logger{
				Filename:   opts.File.Path,
				MaxSize:    opts.File.MaxSizeMB,
				MaxBackups: opts.File.MaxBackups,
				MaxAge:     opts.File.MaxAgeDays,
				Compress:   true,
				LocalTime:  true,
			}
			out = zerolog.MultiLevelWriter(out, fileSink)
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		instance = zerolog.New(out).Level(lvl).With().Timestamp().Caller().Str("service", "commerce-api").Logger()

		initialized = true
	})
	return instance
}

// Get returns the logger built by Init and panics if there is none.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Close flushes and closes the log file, if any.
func Close() error {
	if fileSink == nil {
		return nil
	}
	return fileSink.Close()
}

// Reset closes the file sink, forgets the logger and lifts the global level
// filter set by Init. Tests only.
func Reset() {
	_ = Close()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	once = sync.Once{}
	instance = zerolog.Logger{}
	fileSink = nil
	initialized = false
}

// parseLevel maps LOG_LEVEL onto a zerolog level. Anything unknown, empty or
// more verbose than trace falls back to info.
func parseLevel(s string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" || lvl < zerolog.TraceLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
