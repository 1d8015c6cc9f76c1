// Package store provides storage backends for Lattia.
//
// It includes an in-memory store for tests and development, plus persistent
// SQLite and PostgreSQL backends. Persistence is single-writer-per-session:
// the store only needs load-last-committed and replace-on-commit semantics
// for session state.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lattia-ai/lattia/internal/models"
)

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite).
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". Postgres DSNs
// are URLs or keyword strings; anything else is treated as a SQLite path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// Store defines the persistence operations required by the interview service.
// Lookups return (nil, nil) when the record does not exist.
type Store interface {
	CreateProfile(p models.Profile) error
	GetProfile(id string) (*models.Profile, error)
	GetProfileByName(name string) (*models.Profile, error)
	ListProfiles() ([]models.Profile, error)
	DeleteProfile(id string) error
	SetProfileDone(id string, done bool) error

	// SaveSessionState replaces the committed session state for a profile.
	SaveSessionState(profileID, stateJSON string) error
	// GetSessionState returns the last committed state, or "" when none exists.
	GetSessionState(profileID string) (string, error)

	AddMessage(m models.Message) (models.Message, error)
	GetMessages(profileID string) ([]models.Message, error)

	Close() error
}

// InMemoryStore is a simple in-memory store for tests and development.
type InMemoryStore struct {
	mu        sync.Mutex
	profiles  map[string]models.Profile
	states    map[string]string
	messages  map[string][]models.Message
	nextMsgID int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles:  make(map[string]models.Profile),
		states:    make(map[string]string),
		messages:  make(map[string][]models.Message),
		nextMsgID: 1,
	}
}

func (s *InMemoryStore) CreateProfile(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *InMemoryStore) GetProfile(id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *InMemoryStore) GetProfileByName(name string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Name == name {
			profile := p
			return &profile, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) ListProfiles() ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (s *InMemoryStore) DeleteProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	delete(s.states, id)
	delete(s.messages, id)
	return nil
}

func (s *InMemoryStore) SetProfileDone(id string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil
	}
	p.IsDone = done
	p.UpdatedAt = time.Now()
	s.profiles[id] = p
	return nil
}

func (s *InMemoryStore) SaveSessionState(profileID, stateJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[profileID] = stateJSON
	if p, ok := s.profiles[profileID]; ok {
		p.UpdatedAt = time.Now()
		s.profiles[profileID] = p
	}
	return nil
}

func (s *InMemoryStore) GetSessionState(profileID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[profileID], nil
}

func (s *InMemoryStore) AddMessage(m models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextMsgID
	s.nextMsgID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages[m.ProfileID] = append(s.messages[m.ProfileID], m)
	return m, nil
}

func (s *InMemoryStore) GetMessages(profileID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.Message, len(s.messages[profileID]))
	copy(msgs, s.messages[profileID])
	return msgs, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
