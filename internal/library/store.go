package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clipper/internal/clip"
	"clipper/internal/config"
)

// Store persists recordings, takes, and clips in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the library database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.LibraryDB
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps foreign keys on
	// for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func newID() string {
	return uuid.NewString()
}

func requireName(operation, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", clip.Wrap(clip.ErrSerialization, operation, "name is empty", nil)
	}
	return name, nil
}

func notFound(operation, kind, id string) error {
	return clip.Wrap(clip.ErrNotFound, operation, fmt.Sprintf("%s %q", kind, id), nil)
}

// expectAffected converts a zero-row update into a not-found error.
func expectAffected(res sql.Result, operation, kind, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return clip.Wrap(clip.ErrIO, operation, "rows affected", err)
	}
	if affected == 0 {
		return notFound(operation, kind, id)
	}
	return nil
}

func nullableString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}
