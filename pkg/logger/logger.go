package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It writes to stdout until SetupLogger is called.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Options controls where and how log lines are written
type Options struct {
	Level      string
	Dir        string
	JSONOutput bool
	Output     io.Writer
}

// SetupLogger initialises the global logger. When Dir is set a daily log file
// is created inside it and every line is written to both the file and Output.
func SetupLogger(opts Options) error {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if !opts.JSONOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}

		logFileName := filepath.Join(opts.Dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}

		// the file always gets JSON so it can be shipped as-is
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// WithComponent returns a child logger tagged with a component name
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Info logs a formatted message at info level
func Info(format string, v ...interface{}) {
	Logger.Info().Msgf(format, v...)
}

// Warning logs a formatted message at warn level
func Warning(format string, v ...interface{}) {
	Logger.Warn().Msgf(format, v...)
}

// Error logs a formatted message at error level
func Error(format string, v ...interface{}) {
	Logger.Error().Msgf(format, v...)
}

// Debug logs a formatted message at debug level
func Debug(format string, v ...interface{}) {
	Logger.Debug().Msgf(format, v...)
}
