package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/studytrack/internal/logger"
)

//go:embed schema.sql
var schema string

// SQLite is a KeyStore backed by a single table in a SQLite database
type SQLite struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLite opens (or creates) the database at dbPath
func NewSQLite(dbPath string, log *logger.Logger) (*SQLite, error) {
	if log == nil {
		log = logger.NewNop()
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, log: log.With("store", "sqlite")}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == nil {
		return value, true
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.log.Error("get key", "key", key, "error", err)
	}
	return "", false
}

func (s *SQLite) Set(key, value string) {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now(),
	)
	if err != nil {
		s.log.Error("set key", "key", key, "error", err)
	}
}

func (s *SQLite) Remove(key string) {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		s.log.Error("remove key", "key", key, "error", err)
	}
}
