package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

// SQLiteStore keeps registry state as JSON values in a key-value table and
// records the outcome of every authoritative discovery session.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens the database at dataSourceName and ensures the schema is set up.
func NewSQLiteStore(dataSourceName string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "SQLiteStore").Logger()
	logger.Debug().Str("db_path", dataSourceName).Msg("Initializing state database connection")

	if dataSourceName != memoryDSN {
		dbDir := filepath.Dir(dataSourceName)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create state database directory")
			return nil, fmt.Errorf("failed to create state database directory %s: %w", dbDir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open state database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// One connection keeps an in-memory database shared and serializes writers.
	dbInstance.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:     dbInstance,
		logger: logger,
	}

	if err := store.InitSchema(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Msg("Database initialized and schema verified")
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the kv_state and probe_history tables if they don't already exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS probe_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		host TEXT NOT NULL,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		target_count INTEGER NOT NULL DEFAULT 0,
		message TEXT,
		probed_at DATETIME NOT NULL,
		duration_seconds REAL
	);
	CREATE INDEX IF NOT EXISTS idx_probe_history_host ON probe_history (host, probed_at);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// Get returns the stored values for keys. Missing keys are absent from the result.
func (s *SQLiteStore) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv_state WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, common.NewPersistenceError("get", keys, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, common.NewPersistenceError("get", keys, err)
		}
		values[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("get", keys, err)
	}
	return values, nil
}

// Set upserts every value in one transaction. Values must be valid JSON.
func (s *SQLiteStore) Set(ctx context.Context, values map[string]json.RawMessage) error {
	keys := make([]string, 0, len(values))
	for key, value := range values {
		keys = append(keys, key)
		if !json.Valid(value) {
			return common.NewPersistenceError("set", []string{key}, common.NewValidationError("value", string(value), "value is not valid JSON"))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewPersistenceError("set", keys, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv_state (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now)
		if err != nil {
			return common.NewPersistenceError("set", keys, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewPersistenceError("set", keys, err)
	}
	s.logger.Debug().Strs("keys", keys).Msg("State saved")
	return nil
}

// RecordProbe appends a probe outcome to the history.
func (s *SQLiteStore) RecordProbe(ctx context.Context, record models.ProbeRecord) error {
	probedAt := record.Timestamp
	if probedAt.IsZero() {
		probedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO probe_history (session_id, host, url, status, target_count, message, probed_at, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID, record.Host, record.URL, record.Status, record.TargetCount,
		sql.NullString{String: record.Message, Valid: record.Message != ""},
		probedAt.UTC(), record.Duration)
	if err != nil {
		s.logger.Error().Err(err).Str("host", record.Host).Msg("Failed to record probe")
		return common.WrapError(err, "failed to insert probe record")
	}
	return nil
}

// History returns recorded probes, newest first.
func (s *SQLiteStore) History(ctx context.Context, query models.HistoryQuery) ([]models.ProbeRecord, error) {
	sqlQuery := `SELECT session_id, host, url, status, target_count, message, probed_at, duration_seconds FROM probe_history WHERE 1=1`
	var args []any
	if query.Host != "" {
		sqlQuery += ` AND host = ?`
		args = append(args, query.Host)
	}
	if !query.Since.IsZero() {
		sqlQuery += ` AND probed_at >= ?`
		args = append(args, query.Since.UTC())
	}
	sqlQuery += ` ORDER BY probed_at DESC, id DESC`
	if query.Limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, common.WrapError(err, "failed to query probe history")
	}
	defer rows.Close()

	var records []models.ProbeRecord
	for rows.Next() {
		var (
			record   models.ProbeRecord
			message  sql.NullString
			duration sql.NullFloat64
		)
		if err := rows.Scan(&record.SessionID, &record.Host, &record.URL, &record.Status, &record.TargetCount, &message, &record.Timestamp, &duration); err != nil {
			return nil, common.WrapError(err, "failed to scan probe history row")
		}
		record.Message = message.String
		record.Duration = duration.Float64
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to iterate probe history")
	}
	return records, nil
}
