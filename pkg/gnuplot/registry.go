package gnuplot

import (
	"sync"

	"plotpipe/internal/config"
)

// defaultSession holds the process-wide session returned by Default.
var defaultSession *Session

// defaultSessionMu protects access to the default session.
var defaultSessionMu sync.Mutex

// Default returns the process-wide session, starting it on first use from
// the PLOTPIPE_* configuration. A failed start is not cached.
func Default() (*Session, error) {
	defaultSessionMu.Lock()
	defer defaultSessionMu.Unlock()

	if defaultSession != nil {
		return defaultSession, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	s, err := New(FromConfig(cfg)...)
	if err != nil {
		return nil, err
	}
	defaultSession = s
	return s, nil
}

// SetDefault replaces the process-wide session without closing the old one.
func SetDefault(s *Session) {
	defaultSessionMu.Lock()
	defer defaultSessionMu.Unlock()
	defaultSession = s
}

// ResetDefault closes and forgets the process-wide session. The next
// Default call starts a new one.
func ResetDefault() error {
	defaultSessionMu.Lock()
	defer defaultSessionMu.Unlock()

	if defaultSession == nil {
		return nil
	}
	err := defaultSession.Close()
	defaultSession = nil
	return err
}

// FromConfig converts a resolved configuration into session options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithExecutable(cfg.Executable),
		WithPersist(cfg.Persist),
		WithTimeout(cfg.Timeout),
		WithBinary(cfg.Binary),
		WithDebug(cfg.Debug),
	}
	if cfg.Output != "" {
		opts = append(opts, WithOutput(cfg.Output, cfg.OutputOptions))
	}
	return opts
}
