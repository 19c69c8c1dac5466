package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl + in-memory index)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Run sources.
const (
	SourceLoad     = "load"
	SourceChange   = "change"
	SourceSnapshot = "snapshot"
	SourceCLI      = "cli"
)

// RunRecord is one timeline computation.
// Keep it compact and schema-stable.
type RunRecord struct {
	At                 time.Time         `json:"at"`
	StudyID            string            `json:"studyId"`
	Source             string            `json:"source"`
	Hash               string            `json:"hash"`
	Sessions           int               `json:"sessions"`
	Items              int               `json:"items"`
	Invalid            int               `json:"invalid"`
	TotalNotifications int               `json:"totalNotifications"`
	TotalMinutes       int               `json:"totalMinutes"`
	TookMS             int64             `json:"tookMs"`
	Errors             map[string]string `json:"errors,omitempty"`
}
