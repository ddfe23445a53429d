// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/traindaily/internal/persistence/sqlite"
)

// SqliteFile is the database file name inside the data directory.
const SqliteFile = "traindaily.sqlite"

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		date_key TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
}

const metaFirstSessionDate = "first_session_date"

// SqliteStore implements RecordStore on an embedded SQLite file.
type SqliteStore struct {
	DB *sql.DB
	id *identity
}

// NewSqliteStore opens (and migrates) the database at dbPath. The device id
// file lives in idDir.
func NewSqliteStore(ctx context.Context, dbPath, idDir string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	if err := sqlite.Migrate(ctx, db, sqliteMigrations); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate sqlite", err)
	}
	return &SqliteStore{DB: db, id: newIdentity(idDir)}, nil
}

// Verify runs a quick integrity check and returns the diagnostic rows.
func (s *SqliteStore) Verify(ctx context.Context) ([]string, error) {
	issues, err := sqlite.CheckIntegrity(ctx, s.DB, false)
	if err != nil {
		return nil, unavailable("verify sqlite", err)
	}
	return issues, nil
}

func (s *SqliteStore) All(ctx context.Context) (map[string]Document, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT date_key, document FROM sessions`)
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	defer rows.Close()

	out := make(map[string]Document)
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, unavailable("scan session", err)
		}
		out[key] = Document(doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list sessions", err)
	}
	return out, nil
}

func (s *SqliteStore) Save(ctx context.Context, key string, doc Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	query := `
	INSERT INTO sessions (date_key, document, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(date_key) DO UPDATE SET
		document = excluded.document,
		updated_at = excluded.updated_at
	`
	if _, err := s.DB.ExecContext(ctx, query, key, string(doc), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return unavailable("save session", err)
	}
	return nil
}

func (s *SqliteStore) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE date_key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("lookup session", err)
	}
	return true, nil
}

func (s *SqliteStore) FirstSessionDate(ctx context.Context) (string, bool, error) {
	return s.lookup(ctx, "metadata", metaFirstSessionDate)
}

func (s *SqliteStore) SetFirstSessionDate(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)`, metaFirstSessionDate, key)
	if err != nil {
		return unavailable("set first session date", err)
	}
	return nil
}

func (s *SqliteStore) Setting(ctx context.Context, key string) (string, bool, error) {
	return s.lookup(ctx, "settings", key)
}

func (s *SqliteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return unavailable("set setting", err)
	}
	return nil
}

func (s *SqliteStore) lookup(ctx context.Context, table, key string) (string, bool, error) {
	var value string
	// table is one of two constants above, never caller input.
	err := s.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("read "+table, err)
	}
	return value, true, nil
}

func (s *SqliteStore) DeviceID(_ context.Context) (string, error) {
	return s.id.get()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
