package storage

import (
	"context"
	"errors"
	"strings"

	logx "studyplan/pkg/logx"
)

// Store is the minimal persistence API used by the watch service and CLI.
type Store interface {
	AppendRun(ctx context.Context, r RunRecord) error
	// LastRun returns the most recent run recorded for studyID.
	LastRun(ctx context.Context, studyID string) (r RunRecord, ok bool, err error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
