package config

// Config is the application configuration. Study documents are separate
// inputs (see internal/studyfile); this file only tunes the tool around them.
//
// Example (YAML):
//
//	logging: { level: debug, console: true }
//	storage: { driver: sqlite, path: ./studyplan.db }
//	watch:   { debounce: 250ms, min_interval: 1s, snapshot_schedule: "@every 1h" }
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Storage StorageConfig `json:"storage"`
	Watch   WatchConfig   `json:"watch"`
}

type LoggingConfig struct {
	Level   string      `json:"level" env:"LOG_LEVEL"`
	Console bool        `json:"console" env:"LOG_CONSOLE"`
	File    LoggingFile `json:"file" envPrefix:"LOG_FILE_"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled" env:"ENABLED"`
	Path    string `json:"path" env:"PATH"`
}

// StorageConfig controls the optional run history.
//
// Driver values:
//   - "none" or empty: disabled
//   - "file": JSON lines next to Path
//   - "sqlite": SQLite database file at Path
type StorageConfig struct {
	Driver      string `json:"driver" env:"STORAGE_DRIVER"`
	Path        string `json:"path" env:"STORAGE_PATH"`
	BusyTimeout string `json:"busy_timeout,omitempty" env:"STORAGE_BUSY_TIMEOUT"` // Go duration string (sqlite)
}

// WatchConfig tunes `studyplan watch`.
//
// All durations are Go duration strings (e.g. "250ms", "2s").
//
// Defaults (when fields are omitted/zero):
//   - debounce: "250ms"
//   - min_interval: "0s" (no limit between recomputes)
//   - snapshot_schedule: "" (no periodic snapshots)
type WatchConfig struct {
	Debounce    string `json:"debounce,omitempty" env:"WATCH_DEBOUNCE"`
	MinInterval string `json:"min_interval,omitempty" env:"WATCH_MIN_INTERVAL"`
	// SnapshotSchedule is a cron expression ("0 * * * *", "@hourly") or an
	// interval ("30m", "01:00") at which the current timeline is recorded
	// even if the study file did not change.
	SnapshotSchedule string `json:"snapshot_schedule,omitempty" env:"WATCH_SNAPSHOT_SCHEDULE"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Storage: StorageConfig{Driver: "none"},
		Watch:   WatchConfig{Debounce: "250ms"},
	}
}
