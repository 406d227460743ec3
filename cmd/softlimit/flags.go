package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-softlimit/internal/config"
)

// engineFlags overrides the engine section of the config for one run.
type engineFlags struct {
	debounce     time.Duration
	retryDelay   time.Duration
	maxRetries   int
	pollFallback bool
	pollInterval time.Duration
	warningRatio float64
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.DurationVar(&f.debounce, "debounce", 0, "Counter debounce for typed input")
	fs.DurationVar(&f.retryDelay, "retry-delay", 0, "Delay between input resolution attempts")
	fs.IntVar(&f.maxRetries, "max-retries", 0, "Resolution attempts before a placeholder is abandoned")
	fs.BoolVar(&f.pollFallback, "poll", false, "Poll every surface for changes")
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "Interval for polled surfaces")
	fs.Float64Var(&f.warningRatio, "warning-ratio", 0, "Fraction of the limit where the warning state starts")
}

// apply copies the flags the user set onto cfg.
func (f *engineFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	set := map[string]func(){
		"debounce":      func() { cfg.Engine.Debounce = config.Duration{Duration: f.debounce} },
		"retry-delay":   func() { cfg.Engine.RetryDelay = config.Duration{Duration: f.retryDelay} },
		"max-retries":   func() { cfg.Engine.MaxRetries = f.maxRetries },
		"poll":          func() { cfg.Engine.PollFallback = f.pollFallback },
		"poll-interval": func() { cfg.Engine.PollInterval = config.Duration{Duration: f.pollInterval} },
		"warning-ratio": func() { cfg.Engine.WarningRatio = f.warningRatio },
	}
	changed := false
	fs.Visit(func(flag *pflag.Flag) {
		if fn, ok := set[flag.Name]; ok {
			fn()
			changed = true
		}
	})
	if !changed {
		return nil
	}
	return cfg.Validate()
}
