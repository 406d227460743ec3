// Package config loads the application configuration shared by the command
// line tools: engine tunables, HTTP server settings, logging and the save
// validation carve-out.
package config

import (
	"time"

	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/render"
)

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the root configuration document.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	// Fields points at a file or directory of field definitions.
	Fields string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type EngineConfig struct {
	Debounce        Duration `json:"debounce" yaml:"debounce" validate:"gte=0s"`
	RetryDelay      Duration `json:"retryDelay" yaml:"retryDelay" validate:"gt=0s"`
	MaxRetries      int      `json:"maxRetries" yaml:"maxRetries" validate:"gte=1,lte=1000"`
	MaxRetryElapsed Duration `json:"maxRetryElapsed" yaml:"maxRetryElapsed" validate:"gt=0s"`
	PollFallback    bool     `json:"pollFallback" yaml:"pollFallback"`
	PollInterval    Duration `json:"pollInterval" yaml:"pollInterval" validate:"gte=10ms"`
	WarningRatio    float64  `json:"warningRatio" yaml:"warningRatio" validate:"gt=0,lt=1"`
}

type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr" validate:"required,hostname_port"`
	BasePath     string   `json:"basePath" yaml:"basePath" validate:"omitempty,startswith=/"`
	ReadTimeout  Duration `json:"readTimeout" yaml:"readTimeout" validate:"gte=0s"`
	WriteTimeout Duration `json:"writeTimeout" yaml:"writeTimeout" validate:"gte=0s"`
	MetricsPath  string   `json:"metricsPath" yaml:"metricsPath" validate:"omitempty,startswith=/"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// ValidationConfig holds the host version carve-out. Marker checks are skipped
// only when HostVersion has one of the SkipMajors.
type ValidationConfig struct {
	HostVersion string   `json:"hostVersion,omitempty" yaml:"hostVersion,omitempty"`
	SkipMajors  []string `json:"skipMajors,omitempty" yaml:"skipMajors,omitempty" validate:"dive,required"`
}

type RenderConfig struct {
	RuntimePath string `json:"runtimePath" yaml:"runtimePath" validate:"required,startswith=/"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	eng := engine.DefaultConfig()
	return Config{
		Engine: EngineConfig{
			Debounce:        Duration{eng.Debounce},
			RetryDelay:      Duration{eng.RetryDelay},
			MaxRetries:      eng.MaxRetries,
			MaxRetryElapsed: Duration{eng.MaxRetryElapsed},
			PollFallback:    eng.PollFallback,
			PollInterval:    Duration{eng.PollInterval},
			WarningRatio:    eng.WarningRatio,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{10 * time.Second},
			MetricsPath:  "/metrics",
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Render: RenderConfig{RuntimePath: render.DefaultRuntimePath},
	}
}

// EngineTunables converts the engine section to engine.Config.
func (c Config) EngineTunables() engine.Config {
	return engine.Config{
		Debounce:        c.Engine.Debounce.Duration,
		RetryDelay:      c.Engine.RetryDelay.Duration,
		MaxRetries:      c.Engine.MaxRetries,
		MaxRetryElapsed: c.Engine.MaxRetryElapsed.Duration,
		PollFallback:    c.Engine.PollFallback,
		PollInterval:    c.Engine.PollInterval.Duration,
		WarningRatio:    c.Engine.WarningRatio,
	}.WithDefaults()
}
