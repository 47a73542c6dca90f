package internal

import "github.com/mizutama/koyomi/internal/datekey"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	clock  datekey.Clock
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithClock overrides the wall clock. Used by tests to pin "today".
func WithClock(c datekey.Clock) Option {
	return func(a *application) {
		a.clock = c
	}
}
