package gnuplot

import (
	"context"
	"time"

	"plotpipe/internal/channel"
	"plotpipe/internal/logger"
)

// Engine is the command channel a Session drives. *channel.Channel is the
// production implementation.
type Engine interface {
	Send(ctx context.Context, command string, data []byte) ([]string, error)
	History() []string
	Close() error
}

// Option is a functional option for configuring Session instances.
type Option func(*settings)

type settings struct {
	channel       channel.Config
	binary        bool
	output        string
	outputOptions string
	diagnostics   func(command, text string)
	engine        Engine
}

func defaultSettings() *settings {
	return &settings{
		channel: channel.Config{
			Executable: channel.DefaultExecutable,
		},
		diagnostics: logger.EngineWarning,
	}
}

// WithExecutable overrides the engine command line, for example
// "/opt/gnuplot/bin/gnuplot" or "gnuplot -d".
func WithExecutable(executable string) Option {
	return func(s *settings) {
		if executable != "" {
			s.channel.Executable = executable
		}
	}
}

// WithPersist keeps plot windows open after the session is closed.
func WithPersist(persist bool) Option {
	return func(s *settings) {
		s.channel.Persist = persist
	}
}

// WithTimeout bounds how long each command may wait for its response.
// Zero waits forever.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.channel.Timeout = timeout
	}
}

// WithBinary sends numeric columns as binary records instead of text.
func WithBinary(binary bool) Option {
	return func(s *settings) {
		s.binary = binary
	}
}

// WithDiagnostics receives tolerated engine warnings instead of the
// default logger.
func WithDiagnostics(handler func(text string)) Option {
	return func(s *settings) {
		if handler != nil {
			s.diagnostics = func(_, text string) { handler(text) }
		}
	}
}

// WithOutput redirects plots to a file. The terminal is chosen from the
// file extension; extraOptions is appended to the terminal command.
func WithOutput(path, extraOptions string) Option {
	return func(s *settings) {
		s.output = path
		s.outputOptions = extraOptions
	}
}

// WithEngine uses an existing engine instead of starting gnuplot.
func WithEngine(engine Engine) Option {
	return func(s *settings) {
		s.engine = engine
	}
}

// WithDebug logs all engine traffic at debug level.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.channel.Debug = debug
	}
}
