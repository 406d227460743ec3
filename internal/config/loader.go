package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOFTLIMIT_"

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads path (when not empty) over the defaults, applies SOFTLIMIT_*
// overrides from the process environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, filepath.Base(path), &cfg); err != nil {
			return Config{}, err
		}
	}
	if lookup != nil {
		if err := applyEnv(&cfg, lookup); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data into cfg based on the filename extension. Values not
// present in data keep what cfg already holds. $VAR references are expanded
// before decoding.
func Parse(data []byte, filename string, cfg *Config) error {
	expanded := []byte(os.ExpandEnv(string(data)))

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(expanded, cfg); err != nil {
			return fmt.Errorf("config: parse JSON %s: %w", filename, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return fmt.Errorf("config: parse YAML %s: %w", filename, err)
		}
	default:
		return fmt.Errorf("config: unsupported file type %q", filename)
	}
	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, target *string) {
		if value, ok := lookup(EnvPrefix + key); ok && value != "" {
			*target = value
		}
	}
	dur := func(key string, target *Duration) error {
		value, ok := lookup(EnvPrefix + key)
		if !ok || value == "" {
			return nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		target.Duration = parsed
		return nil
	}

	str("ADDR", &cfg.Server.Addr)
	str("BASE_PATH", &cfg.Server.BasePath)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("HOST_VERSION", &cfg.Validation.HostVersion)
	str("RUNTIME_PATH", &cfg.Render.RuntimePath)
	str("FIELDS", &cfg.Fields)

	for key, target := range map[string]*Duration{
		"DEBOUNCE":          &cfg.Engine.Debounce,
		"RETRY_DELAY":       &cfg.Engine.RetryDelay,
		"MAX_RETRY_ELAPSED": &cfg.Engine.MaxRetryElapsed,
		"POLL_INTERVAL":     &cfg.Engine.PollInterval,
	} {
		if err := dur(key, target); err != nil {
			return err
		}
	}

	if value, ok := lookup(EnvPrefix + "MAX_RETRIES"); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %sMAX_RETRIES: %w", EnvPrefix, err)
		}
		cfg.Engine.MaxRetries = parsed
	}
	if value, ok := lookup(EnvPrefix + "POLL_FALLBACK"); ok && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %sPOLL_FALLBACK: %w", EnvPrefix, err)
		}
		cfg.Engine.PollFallback = parsed
	}
	if value, ok := lookup(EnvPrefix + "WARNING_RATIO"); ok && value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("config: %sWARNING_RATIO: %w", EnvPrefix, err)
		}
		cfg.Engine.WarningRatio = parsed
	}
	if value, ok := lookup(EnvPrefix + "SKIP_MAJORS"); ok && value != "" {
		var majors []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				majors = append(majors, part)
			}
		}
		cfg.Validation.SkipMajors = majors
	}
	return nil
}
