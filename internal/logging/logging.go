// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls Setup.
type Options struct {
	// Verbose lowers the level to debug. ZWISCHEN_DEBUG=1 does the same.
	Verbose bool
	// File, when set, receives the logs through a rotating writer instead
	// of stderr.
	File string
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// Setup installs the default logger and returns a cleanup func. The default
// level is warn so hooks stay quiet.
func Setup(opts Options) func() {
	level := Level(opts.Verbose)

	var out io.Writer = opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	cleanup := func() {}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			LocalTime:  true,
		}
		out = rotating
		cleanup = func() { _ = rotating.Close() }
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug && opts.File != "",
	})
	slog.SetDefault(slog.New(handler))
	slog.SetLogLoggerLevel(level)
	return cleanup
}

// Level resolves the log level from the verbose flag and ZWISCHEN_DEBUG.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch os.Getenv("ZWISCHEN_DEBUG") {
	case "1", "true", "all":
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
