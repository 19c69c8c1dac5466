package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"studyplan/internal/storage"
	logx "studyplan/pkg/logx"
)

// EnvPrefix prefixes every environment override, e.g. STUDYPLAN_LOG_LEVEL.
const EnvPrefix = "STUDYPLAN_"

// Load builds the effective config: defaults, then the file at path (if any),
// then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := Decode(path, b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode strictly decodes a JSON or YAML document into dst. Fields missing
// from the document keep the values already in dst.
func Decode(path string, data []byte, dst any) error {
	jb, _, err := CoerceToJSON(path, data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("invalid document: trailing data")
		}
		return err
	}
	return nil
}

// ApplyEnv overrides cfg from STUDYPLAN_* environment variables.
func ApplyEnv(cfg *Config) error {
	return ApplyEnvFrom(cfg, nil)
}

// ApplyEnvFrom is ApplyEnv reading from the given map instead of the process
// environment (nil means the process environment).
func ApplyEnvFrom(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if !logx.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "none", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q (use none, file or sqlite)", c.Storage.Driver)
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if _, err := c.WatchSettings(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File:    logx.FileConfig{Enabled: c.Logging.File.Enabled, Path: c.Logging.File.Path},
	}
}

// StorageSettings converts the storage section for storage.Open.
func (c *Config) StorageSettings() (storage.Config, error) {
	busy, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      strings.TrimSpace(c.Storage.Driver),
		Path:        strings.TrimSpace(c.Storage.Path),
		BusyTimeout: busy,
	}, nil
}

// Watch holds the parsed watch settings.
type Watch struct {
	Debounce         time.Duration
	MinInterval      time.Duration
	SnapshotSchedule string
}

func (c *Config) WatchSettings() (Watch, error) {
	debounce, err := ParseDurationOrDefault("watch.debounce", c.Watch.Debounce, 250*time.Millisecond)
	if err != nil {
		return Watch{}, err
	}
	minInterval, err := ParseDurationField("watch.min_interval", c.Watch.MinInterval)
	if err != nil {
		return Watch{}, err
	}
	return Watch{
		Debounce:         debounce,
		MinInterval:      minInterval,
		SnapshotSchedule: strings.TrimSpace(c.Watch.SnapshotSchedule),
	}, nil
}
