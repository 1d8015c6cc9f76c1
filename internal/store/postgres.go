// Package store provides storage backends for Lattia.
//
// This file implements a PostgreSQL-backed store for profiles, session
// states, and conversation messages.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/lattia-ai/lattia/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateProfile(p models.Profile) error {
	_, err := s.db.Exec(`INSERT INTO profiles (id, name, is_done, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.IsDone, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore CreateProfile failed", "error", err, "id", p.ID)
		return fmt.Errorf("failed to insert profile %s: %w", p.ID, err)
	}
	slog.Debug("PostgresStore CreateProfile succeeded", "id", p.ID, "name", p.Name)
	return nil
}

func (s *PostgresStore) GetProfile(id string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT id, name, is_done, created_at, updated_at FROM profiles WHERE id = $1`, id)
	return scanProfileRow(row, "id", id)
}

func (s *PostgresStore) GetProfileByName(name string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT id, name, is_done, created_at, updated_at FROM profiles WHERE name = $1`, name)
	return scanProfileRow(row, "name", name)
}

func (s *PostgresStore) ListProfiles() ([]models.Profile, error) {
	rows, err := s.db.Query(`SELECT id, name, is_done, created_at, updated_at FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore ListProfiles query failed", "error", err)
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (s *PostgresStore) DeleteProfile(id string) error {
	_, err := s.db.Exec(`DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteProfile failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	slog.Debug("PostgresStore DeleteProfile succeeded", "id", id)
	return nil
}

func (s *PostgresStore) SetProfileDone(id string, done bool) error {
	_, err := s.db.Exec(`UPDATE profiles SET is_done = $1, updated_at = $2 WHERE id = $3`, done, time.Now(), id)
	if err != nil {
		slog.Error("PostgresStore SetProfileDone failed", "error", err, "id", id)
		return fmt.Errorf("failed to update profile %s status: %w", id, err)
	}
	slog.Debug("PostgresStore SetProfileDone succeeded", "id", id, "done", done)
	return nil
}

// SaveSessionState replaces the committed session state for a profile.
func (s *PostgresStore) SaveSessionState(profileID, stateJSON string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_states (profile_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		profileID, stateJSON, time.Now())
	if err != nil {
		slog.Error("PostgresStore SaveSessionState failed", "error", err, "profileID", profileID)
		return fmt.Errorf("failed to save session state for %s: %w", profileID, err)
	}
	slog.Debug("PostgresStore SaveSessionState succeeded", "profileID", profileID)
	return nil
}

// GetSessionState retrieves the last committed session state for a profile.
func (s *PostgresStore) GetSessionState(profileID string) (string, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM session_states WHERE profile_id = $1`, profileID).Scan(&state)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSessionState not found", "profileID", profileID)
		return "", nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSessionState failed", "error", err, "profileID", profileID)
		return "", fmt.Errorf("failed to query session state for %s: %w", profileID, err)
	}
	return state, nil
}

func (s *PostgresStore) AddMessage(m models.Message) (models.Message, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	err := s.db.QueryRow(`INSERT INTO messages (profile_id, role, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		m.ProfileID, m.Role, m.Content, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		slog.Error("PostgresStore AddMessage failed", "error", err, "profileID", m.ProfileID)
		return m, fmt.Errorf("failed to insert message for %s: %w", m.ProfileID, err)
	}
	slog.Debug("PostgresStore AddMessage succeeded", "profileID", m.ProfileID, "role", m.Role)
	return m, nil
}

func (s *PostgresStore) GetMessages(profileID string) ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, profile_id, role, content, created_at FROM messages WHERE profile_id = $1 ORDER BY created_at ASC, id ASC`, profileID)
	if err != nil {
		slog.Error("PostgresStore GetMessages query failed", "error", err, "profileID", profileID)
		return nil, fmt.Errorf("failed to query messages for %s: %w", profileID, err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
