package engine

import (
	"time"

	"github.com/goliatone/go-softlimit/pkg/counter"
	"github.com/goliatone/go-softlimit/pkg/surface"
)

// Default tunables.
const (
	DefaultRetryDelay      = 300 * time.Millisecond
	DefaultMaxRetries      = 20
	DefaultMaxRetryElapsed = 10 * time.Second
)

// Config holds the engine tunables. Zero values fall back to the defaults.
type Config struct {
	Debounce        time.Duration
	RetryDelay      time.Duration
	MaxRetries      int
	MaxRetryElapsed time.Duration
	// PollFallback enables timed re-checks for every binding. Placeholders
	// can opt in individually with a poll interval attribute.
	PollFallback bool
	PollInterval time.Duration
	WarningRatio float64
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		Debounce:        surface.DefaultDebounce,
		RetryDelay:      DefaultRetryDelay,
		MaxRetries:      DefaultMaxRetries,
		MaxRetryElapsed: DefaultMaxRetryElapsed,
		PollInterval:    surface.DefaultPollInterval,
		WarningRatio:    counter.DefaultWarningRatio,
	}
}

// WithDefaults returns c with zero or out-of-range fields replaced by their
// defaults.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Debounce <= 0 {
		c.Debounce = def.Debounce
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.MaxRetryElapsed <= 0 {
		c.MaxRetryElapsed = def.MaxRetryElapsed
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.WarningRatio <= 0 || c.WarningRatio >= 1 {
		c.WarningRatio = def.WarningRatio
	}
	return c
}

func (c Config) thresholds() counter.Thresholds {
	return counter.Thresholds{Warning: c.WarningRatio}
}
