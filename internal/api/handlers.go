// Package api provides HTTP handlers for Lattia endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lattia-ai/lattia/internal/interview"
	"github.com/lattia-ai/lattia/internal/models"
)

// lookupProfile loads the profile addressed by the request path. It writes
// the error response itself and returns nil when the handler should stop.
func (s *Server) lookupProfile(w http.ResponseWriter, r *http.Request) *models.Profile {
	id := r.PathValue("id")
	p, err := s.st.GetProfile(id)
	if err != nil {
		slog.Error("Server.lookupProfile: store lookup failed", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch profile"))
		return nil
	}
	if p == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Profile not found"))
		return nil
	}
	return p
}

func (s *Server) listProfilesHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.listProfilesHandler: processing request", "path", r.URL.Path)
	profiles, err := s.st.ListProfiles()
	if err != nil {
		slog.Error("Server.listProfilesHandler: failed to list profiles", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch profiles"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(profiles))
}

func (s *Server) createProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.ProfileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createProfileHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.createProfileHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	existing, err := s.st.GetProfileByName(req.Name)
	if err != nil {
		slog.Error("Server.createProfileHandler: name lookup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create profile"))
		return
	}
	if existing != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error("Profile name already exists"))
		return
	}

	now := time.Now()
	p := models.Profile{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.st.CreateProfile(p); err != nil {
		slog.Error("Server.createProfileHandler: failed to create profile", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create profile"))
		return
	}
	slog.Info("Server.createProfileHandler: profile created", "id", p.ID, "name", p.Name)
	writeJSONResponse(w, http.StatusCreated, models.Success(p))
}

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(*p))
}

func (s *Server) deleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}
	if err := s.st.DeleteProfile(p.ID); err != nil {
		slog.Error("Server.deleteProfileHandler: failed to delete profile", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete profile"))
		return
	}
	slog.Info("Server.deleteProfileHandler: profile deleted", "id", p.ID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Profile deleted", nil))
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}
	messages, err := s.st.GetMessages(p.ID)
	if err != nil {
		slog.Error("Server.historyHandler: failed to fetch messages", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch history"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(models.HistoryResponse{
		Profile:  *p,
		Messages: messages,
	}))
}

// startHandler ensures the conversation has an opening question. Idempotent:
// an already-started conversation returns its latest assistant message.
func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}
	msg, err := s.bot.Opening(r.Context(), *p)
	if err != nil {
		slog.Error("Server.startHandler: failed to open interview", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start interview"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(msg))
}

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}

	if !s.limiter.Allow(p.ID) {
		slog.Warn("Server.sendMessageHandler: rate limit exceeded", "id", p.ID)
		writeJSONResponse(w, http.StatusTooManyRequests, models.Error("Rate limit exceeded for this profile. Try again shortly."))
		return
	}

	var req models.MessageCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sendMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.sendMessageHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	msg, err := s.bot.ProcessResponse(r.Context(), *p, req.Content)
	if err != nil {
		slog.Error("Server.sendMessageHandler: failed to process message", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(msg))
}

// getHealthDataHandler returns the collected fields grouped by domain.
func (s *Server) getHealthDataHandler(w http.ResponseWriter, r *http.Request) {
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}
	state, err := s.bot.SessionState(p.ID)
	if err != nil {
		slog.Error("Server.getHealthDataHandler: failed to load session state", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch health data"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(state.ToHealthData()))
}

// putHealthDataHandler applies manual value edits to already-registered
// fields. Values go through the same per-field validation as interview turns;
// unknown keys and invalid values are skipped and reported.
func (s *Server) putHealthDataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}

	var payload models.HealthData
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Server.putHealthDataHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	state, err := s.bot.SessionState(p.ID)
	if err != nil {
		slog.Error("Server.putHealthDataHandler: failed to load session state", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update health data"))
		return
	}

	// Manual edits do not consume interview turns; they are attributed to the
	// current turn counter.
	registry := interview.NewFieldRegistry(state)
	skipped := make([]string, 0)
	for _, entries := range payload {
		for key, entry := range entries {
			if outcome := registry.ApplyValueUpdate(key, entry.Value, state.TotalTurns); outcome != models.OutcomeAccepted {
				skipped = append(skipped, key)
			}
		}
	}

	stateJSON, err := state.ToJSON()
	if err != nil {
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update health data"))
		return
	}
	if err := s.st.SaveSessionState(p.ID, stateJSON); err != nil {
		slog.Error("Server.putHealthDataHandler: failed to save session state", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update health data"))
		return
	}

	slog.Debug("Server.putHealthDataHandler: health data updated", "id", p.ID, "skipped", len(skipped))
	if len(skipped) > 0 {
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Some keys were skipped", state.ToHealthData()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(state.ToHealthData()))
}

// updateStatusHandler manually marks an interview complete. Completion is
// monotonic: requests attempting to clear the flag are rejected.
func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	p := s.lookupProfile(w, r)
	if p == nil {
		return
	}

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.updateStatusHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !req.IsDone {
		writeJSONResponse(w, http.StatusConflict, models.Error("Interview completion cannot be cleared"))
		return
	}

	if err := s.st.SetProfileDone(p.ID, true); err != nil {
		slog.Error("Server.updateStatusHandler: failed to update status", "error", err, "id", p.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update status"))
		return
	}

	// Keep the session state's completion flag in sync with the profile.
	state, err := s.bot.SessionState(p.ID)
	if err == nil && !state.IsDone {
		interview.NewDomainProgressTracker(state).MarkInterviewComplete()
		if stateJSON, jerr := state.ToJSON(); jerr == nil {
			if serr := s.st.SaveSessionState(p.ID, stateJSON); serr != nil {
				slog.Warn("Server.updateStatusHandler: failed to save session state", "error", serr, "id", p.ID)
			}
		}
	}

	updated, err := s.st.GetProfile(p.ID)
	if err != nil || updated == nil {
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch updated profile"))
		return
	}
	slog.Info("Server.updateStatusHandler: interview marked complete", "id", p.ID)
	writeJSONResponse(w, http.StatusOK, models.Success(*updated))
}

// serviceHealthHandler provides a health check endpoint for monitoring and
// load balancing.
func (s *Server) serviceHealthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.st.ListProfiles(); err != nil {
		slog.Warn("Health check: store unavailable", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach store"
		writeJSONResponse(w, http.StatusServiceUnavailable, healthData)
		return
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
