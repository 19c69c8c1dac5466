package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "studyplan/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("sqlite WAL not enabled", logx.Err(err))
	}
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendRun(ctx context.Context, r RunRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	var errs any
	if len(r.Errors) > 0 {
		b, err := json.Marshal(r.Errors)
		if err != nil {
			return err
		}
		errs = string(b)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(at, study_id, source, hash, sessions, items, invalid, total_notifications, total_minutes, took_ms, errors)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		r.At.UTC().Format(time.RFC3339Nano), r.StudyID, r.Source, r.Hash, r.Sessions, r.Items, r.Invalid,
		r.TotalNotifications, r.TotalMinutes, r.TookMS, errs,
	)
	return err
}

func (s *sqliteStore) LastRun(ctx context.Context, studyID string) (RunRecord, bool, error) {
	if s == nil || s.db == nil {
		return RunRecord{}, false, ErrDisabled
	}
	var (
		r    RunRecord
		at   string
		errs sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT at, study_id, source, hash, sessions, items, invalid, total_notifications, total_minutes, took_ms, errors
		 FROM runs WHERE study_id = ? ORDER BY id DESC LIMIT 1`, studyID,
	).Scan(&at, &r.StudyID, &r.Source, &r.Hash, &r.Sessions, &r.Items, &r.Invalid,
		&r.TotalNotifications, &r.TotalMinutes, &r.TookMS, &errs)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, err
	}
	if r.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return RunRecord{}, false, fmt.Errorf("runs.at: %w", err)
	}
	if errs.Valid && errs.String != "" {
		if err := json.Unmarshal([]byte(errs.String), &r.Errors); err != nil {
			return RunRecord{}, false, fmt.Errorf("runs.errors: %w", err)
		}
	}
	return r, true, nil
}
