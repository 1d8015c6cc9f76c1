// Package flow provides the interview bot that drives a structured health
// intake conversation: it assembles per-turn prompts, asks the model for a
// decision payload, merges it into session state, and persists the outcome.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/lattia-ai/lattia/internal/genai"
	"github.com/lattia-ai/lattia/internal/interview"
	"github.com/lattia-ai/lattia/internal/models"
	"github.com/lattia-ai/lattia/internal/store"
)

// GenAIClient is the model-facing seam used by the interview bot.
type GenAIClient interface {
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateTurn(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (*genai.TurnEnvelope, error)
}

// InterviewBot orchestrates one conversational turn at a time. All state
// lives in the store; the bot itself holds no per-session data.
type InterviewBot struct {
	store       store.Store
	genaiClient GenAIClient
}

// NewInterviewBot creates a new interview bot instance.
func NewInterviewBot(st store.Store, genaiClient GenAIClient) *InterviewBot {
	return &InterviewBot{
		store:       st,
		genaiClient: genaiClient,
	}
}

// Opening returns the conversation opener for a profile. If the conversation
// already has an assistant message the latest one is returned unchanged, so
// repeated calls never restart an interview. Otherwise a fresh session state
// is committed and an opening question is generated and recorded.
func (ib *InterviewBot) Opening(ctx context.Context, profile models.Profile) (models.Message, error) {
	slog.Debug("InterviewBot opening requested", "profileID", profile.ID)

	messages, err := ib.store.GetMessages(profile.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to get messages: %w", err)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.MessageRoleAssistant {
			return messages[i], nil
		}
	}

	state := models.NewSessionState()
	stateJSON, err := state.ToJSON()
	if err != nil {
		return models.Message{}, err
	}
	if err := ib.store.SaveSessionState(profile.ID, stateJSON); err != nil {
		return models.Message{}, fmt.Errorf("failed to save initial session state: %w", err)
	}

	opening, err := ib.genaiClient.GeneratePrompt(ctx, openingSystemPrompt,
		fmt.Sprintf("The user's name is %s. Open the interview.", profile.Name))
	if err != nil {
		slog.Warn("Failed to generate opening question, using default", "error", err, "profileID", profile.ID)
		opening = DefaultOpeningQuestion
	}

	msg, err := ib.store.AddMessage(models.Message{
		ProfileID: profile.ID,
		Role:      models.MessageRoleAssistant,
		Content:   opening,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to save opening message: %w", err)
	}
	slog.Debug("InterviewBot sent opening question", "profileID", profile.ID)
	return msg, nil
}

// ProcessResponse runs one interview turn for a user message: it records the
// message, asks the model for a turn decision, merges the decision into the
// session state, and persists state and reply together. A structural merge
// failure leaves the committed state untouched and returns an error.
func (ib *InterviewBot) ProcessResponse(ctx context.Context, profile models.Profile, content string) (models.Message, error) {
	slog.Debug("InterviewBot processing response", "profileID", profile.ID)

	if _, err := ib.store.AddMessage(models.Message{
		ProfileID: profile.ID,
		Role:      models.MessageRoleUser,
		Content:   content,
	}); err != nil {
		return models.Message{}, fmt.Errorf("failed to save user message: %w", err)
	}

	// A finished interview no longer runs the model; the data stays
	// editable through the health endpoints.
	if profile.IsDone {
		return ib.reply(profile.ID, CompletedInterviewReply)
	}

	state, err := ib.loadSessionState(profile.ID)
	if err != nil {
		return models.Message{}, err
	}

	history, err := ib.store.GetMessages(profile.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to get conversation history: %w", err)
	}

	clock := interview.ComputeClock(state)
	turnPrompt := buildTurnPrompt(state, clock.Summary(), history, content)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(interviewSystemPrompt),
		openai.UserMessage(turnPrompt),
	}

	envelope, err := ib.genaiClient.GenerateTurn(ctx, messages)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to generate turn decision: %w", err)
	}

	newState, report, err := interview.ApplyTurn(state, envelope.Decision())
	if err != nil {
		slog.Error("InterviewBot turn merge aborted", "error", err, "profileID", profile.ID)
		return models.Message{}, fmt.Errorf("failed to apply turn decision: %w", err)
	}

	stateJSON, err := newState.ToJSON()
	if err != nil {
		return models.Message{}, err
	}
	if err := ib.store.SaveSessionState(profile.ID, stateJSON); err != nil {
		return models.Message{}, fmt.Errorf("failed to save session state: %w", err)
	}

	replyText := envelope.Followup
	if newState.IsDone {
		if err := ib.store.SetProfileDone(profile.ID, true); err != nil {
			slog.Warn("Failed to mark profile done", "error", err, "profileID", profile.ID)
		}
		if replyText == "" {
			replyText = CompletedInterviewReply
		}
	}

	slog.Debug("InterviewBot turn committed",
		"profileID", profile.ID,
		"turn", report.Turn,
		"entries", len(report.Entries),
		"all_accepted", report.Accepted(),
		"done", newState.IsDone)
	return ib.reply(profile.ID, replyText)
}

// SessionState returns the committed session state for a profile, or a fresh
// empty session when none has been saved yet.
func (ib *InterviewBot) SessionState(profileID string) (*models.SessionState, error) {
	return ib.loadSessionState(profileID)
}

func (ib *InterviewBot) loadSessionState(profileID string) (*models.SessionState, error) {
	stateJSON, err := ib.store.GetSessionState(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session state: %w", err)
	}
	if stateJSON == "" {
		return models.NewSessionState(), nil
	}
	state, err := models.SessionStateFromJSON(stateJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return state, nil
}

func (ib *InterviewBot) reply(profileID, content string) (models.Message, error) {
	msg, err := ib.store.AddMessage(models.Message{
		ProfileID: profileID,
		Role:      models.MessageRoleAssistant,
		Content:   content,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to save assistant message: %w", err)
	}
	return msg, nil
}
