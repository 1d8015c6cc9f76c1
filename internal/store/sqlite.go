// Package store provides storage backends for Lattia.
//
// This file implements an SQLite-backed store for profiles, session states,
// and conversation messages.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/lattia-ai/lattia/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateProfile(p models.Profile) error {
	_, err := s.db.Exec(`INSERT INTO profiles (id, name, is_done, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.IsDone, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateProfile failed", "error", err, "id", p.ID)
		return fmt.Errorf("failed to insert profile %s: %w", p.ID, err)
	}
	slog.Debug("SQLiteStore CreateProfile succeeded", "id", p.ID, "name", p.Name)
	return nil
}

func (s *SQLiteStore) GetProfile(id string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT id, name, is_done, created_at, updated_at FROM profiles WHERE id = ?`, id)
	return scanProfileRow(row, "id", id)
}

func (s *SQLiteStore) GetProfileByName(name string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT id, name, is_done, created_at, updated_at FROM profiles WHERE name = ?`, name)
	return scanProfileRow(row, "name", name)
}

func (s *SQLiteStore) ListProfiles() ([]models.Profile, error) {
	rows, err := s.db.Query(`SELECT id, name, is_done, created_at, updated_at FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListProfiles query failed", "error", err)
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (s *SQLiteStore) DeleteProfile(id string) error {
	_, err := s.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteProfile failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	slog.Debug("SQLiteStore DeleteProfile succeeded", "id", id)
	return nil
}

func (s *SQLiteStore) SetProfileDone(id string, done bool) error {
	_, err := s.db.Exec(`UPDATE profiles SET is_done = ?, updated_at = ? WHERE id = ?`, done, time.Now(), id)
	if err != nil {
		slog.Error("SQLiteStore SetProfileDone failed", "error", err, "id", id)
		return fmt.Errorf("failed to update profile %s status: %w", id, err)
	}
	slog.Debug("SQLiteStore SetProfileDone succeeded", "id", id, "done", done)
	return nil
}

// SaveSessionState replaces the committed session state for a profile.
func (s *SQLiteStore) SaveSessionState(profileID, stateJSON string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO session_states (profile_id, state, updated_at)
		VALUES (?, ?, ?)`, profileID, stateJSON, time.Now())
	if err != nil {
		slog.Error("SQLiteStore SaveSessionState failed", "error", err, "profileID", profileID)
		return fmt.Errorf("failed to save session state for %s: %w", profileID, err)
	}
	slog.Debug("SQLiteStore SaveSessionState succeeded", "profileID", profileID)
	return nil
}

// GetSessionState retrieves the last committed session state for a profile.
func (s *SQLiteStore) GetSessionState(profileID string) (string, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM session_states WHERE profile_id = ?`, profileID).Scan(&state)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSessionState not found", "profileID", profileID)
		return "", nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSessionState failed", "error", err, "profileID", profileID)
		return "", fmt.Errorf("failed to query session state for %s: %w", profileID, err)
	}
	return state, nil
}

func (s *SQLiteStore) AddMessage(m models.Message) (models.Message, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO messages (profile_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		m.ProfileID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "profileID", m.ProfileID)
		return m, fmt.Errorf("failed to insert message for %s: %w", m.ProfileID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = id
	}
	slog.Debug("SQLiteStore AddMessage succeeded", "profileID", m.ProfileID, "role", m.Role)
	return m, nil
}

func (s *SQLiteStore) GetMessages(profileID string) ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, profile_id, role, content, created_at FROM messages WHERE profile_id = ? ORDER BY created_at ASC, id ASC`, profileID)
	if err != nil {
		slog.Error("SQLiteStore GetMessages query failed", "error", err, "profileID", profileID)
		return nil, fmt.Errorf("failed to query messages for %s: %w", profileID, err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
