// Package api provides HTTP handlers and the main API server logic for Lattia.
//
// It exposes RESTful endpoints for managing interview profiles, exchanging
// conversation messages, and reading the structured health data collected by
// the interview engine.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lattia-ai/lattia/internal/flow"
	"github.com/lattia-ai/lattia/internal/genai"
	"github.com/lattia-ai/lattia/internal/models"
	"github.com/lattia-ai/lattia/internal/store"
)

// Server configuration defaults.
const (
	// DefaultAddr is the default API server listen address.
	DefaultAddr = ":8080"
	// DefaultReadTimeout bounds request header and body reads.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds response writes, including model latency.
	DefaultWriteTimeout = 120 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// RateLimitCapacity overrides the per-profile message burst size.
	RateLimitCapacity int
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithRateLimitCapacity sets the per-profile message burst size.
func WithRateLimitCapacity(capacity int) Option {
	return func(o *Opts) { o.RateLimitCapacity = capacity }
}

// InterviewService is the conversation seam consumed by the message
// endpoints. *flow.InterviewBot is the production implementation.
type InterviewService interface {
	Opening(ctx context.Context, profile models.Profile) (models.Message, error)
	ProcessResponse(ctx context.Context, profile models.Profile, content string) (models.Message, error)
	SessionState(profileID string) (*models.SessionState, error)
}

// Server wires the store and the interview bot into HTTP handlers.
type Server struct {
	st      store.Store
	bot     InterviewService
	limiter *rateLimiter
	addr    string
}

// NewServer creates an API server based on provided options.
func NewServer(st store.Store, bot InterviewService, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	capacity := cfg.RateLimitCapacity
	if capacity <= 0 {
		capacity = DefaultBucketCapacity
	}
	return &Server{
		st:      st,
		bot:     bot,
		limiter: newRateLimiter(capacity, DefaultRefillWindow),
		addr:    addr,
	}
}

// Handler returns the HTTP handler with all API routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.serviceHealthHandler)

	mux.HandleFunc("GET /api/profiles", s.listProfilesHandler)
	mux.HandleFunc("POST /api/profiles", s.createProfileHandler)
	mux.HandleFunc("GET /api/profiles/{id}", s.getProfileHandler)
	mux.HandleFunc("DELETE /api/profiles/{id}", s.deleteProfileHandler)
	mux.HandleFunc("GET /api/profiles/{id}/history", s.historyHandler)
	mux.HandleFunc("POST /api/profiles/{id}/start", s.startHandler)
	mux.HandleFunc("POST /api/profiles/{id}/messages", s.sendMessageHandler)
	mux.HandleFunc("GET /api/profiles/{id}/health", s.getHealthDataHandler)
	mux.HandleFunc("PUT /api/profiles/{id}/health", s.putHealthDataHandler)
	mux.HandleFunc("PATCH /api/profiles/{id}/status", s.updateStatusHandler)
	return mux
}

// Run bootstraps the service from module option slices: it selects the store
// backend from the DSN, builds the GenAI client and interview bot, and serves
// the API until the listener fails.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	gaClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	bot := flow.NewInterviewBot(st, gaClient)
	srv := NewServer(st, bot, apiOpts...)

	httpServer := &http.Server{
		Addr:         srv.addr,
		Handler:      srv.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	slog.Info("Lattia API running", "addr", srv.addr)
	return httpServer.ListenAndServe()
}

// buildStore selects the storage backend from the configured DSN: Postgres
// for URL or keyword DSNs, SQLite for file paths, in-memory when no DSN is
// provided.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	case store.DetectDSNType(cfg.DSN) == "postgres":
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	default:
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	}
}
