package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lattia-ai/lattia/internal/models"
)

// scanProfileRow scans a Profile from a single sql.Row, returning (nil, nil)
// when the row does not exist.
func scanProfileRow(row *sql.Row, lookup, value string) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.IsDone, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("Profile not found", lookup, value)
		return nil, nil
	}
	if err != nil {
		slog.Error("Profile scan failed", "error", err, lookup, value)
		return nil, fmt.Errorf("failed to scan profile row: %w", err)
	}
	return &p, nil
}

// scanProfiles scans all Profiles from sql.Rows.
func scanProfiles(rows *sql.Rows) ([]models.Profile, error) {
	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.IsDone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile rows: %w", err)
	}
	return profiles, nil
}

// scanMessages scans all Messages from sql.Rows.
func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}
