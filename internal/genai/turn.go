package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/lattia-ai/lattia/internal/models"
)

// ErrMalformedTurn is returned when the model output cannot be decoded as a
// turn envelope.
var ErrMalformedTurn = errors.New("malformed turn payload")

// TurnAnalysis carries the model's turn-level reasoning. It is kept for
// logging and debugging but never affects session state.
type TurnAnalysis struct {
	ResponseInterpretation string   `json:"response_interpretation"`
	ContextLink            string   `json:"context_link"`
	ValueUpdatePlan        []string `json:"value_update_plan"`
	CompletenessReview     string   `json:"completeness_review"`
	NextFieldsThoughts     string   `json:"next_fields_thoughts"`
	FieldRequestsToCreate  []string `json:"field_requests_to_create"`
}

// NextFieldSelection names the field the model wants to ask about next.
type NextFieldSelection struct {
	Note   string        `json:"note"`
	Key    string        `json:"key"`
	Domain models.Domain `json:"domain"`
}

// TurnEnvelope is the single-turn decision payload produced by the model:
// reasoning, state mutations, and the follow-up question for the user.
type TurnEnvelope struct {
	Analysis              TurnAnalysis          `json:"analysis"`
	DomainsToMarkComplete []models.Domain       `json:"domains_to_mark_complete"`
	MarkInterviewComplete bool                  `json:"mark_interview_complete"`
	NewFieldsToCollect    []models.FieldRequest `json:"new_fields_to_collect"`
	ValueUpdates          []models.ValueUpdate  `json:"value_updates"`
	NextFieldSelection    NextFieldSelection    `json:"next_field_selection"`
	Followup              string                `json:"followup"`
}

// Decision projects the envelope onto the merge-engine decision shape.
func (e *TurnEnvelope) Decision() models.TurnDecision {
	return models.TurnDecision{
		NewFieldRequests:      e.NewFieldsToCollect,
		ValueUpdates:          e.ValueUpdates,
		DomainsToComplete:     e.DomainsToMarkComplete,
		MarkInterviewComplete: e.MarkInterviewComplete,
		NextDomain:            e.NextFieldSelection.Domain,
	}
}

// GenerateTurn asks the model for a structured interview turn. The response
// is requested in JSON mode and decoded into a TurnEnvelope; the caller is
// responsible for validating the decision before applying it.
func (c *Client) GenerateTurn(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (*TurnEnvelope, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            messages,
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("genai.GenerateTurn failed", "error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoicesReturned
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		slog.Error("genai.GenerateTurn refused", "refusal", msg.Refusal)
		return nil, fmt.Errorf("%w: model refused: %s", ErrMalformedTurn, msg.Refusal)
	}

	envelope, err := parseTurnEnvelope(msg.Content)
	if err != nil {
		slog.Error("genai.GenerateTurn parse failed", "error", err)
		return nil, err
	}
	slog.Debug("genai.GenerateTurn succeeded",
		"value_updates", len(envelope.ValueUpdates),
		"new_fields", len(envelope.NewFieldsToCollect),
		"next_domain", envelope.NextFieldSelection.Domain)
	return envelope, nil
}

// parseTurnEnvelope decodes a model response into a TurnEnvelope, tolerating
// markdown code fences around the JSON body.
func parseTurnEnvelope(content string) (*TurnEnvelope, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var envelope TurnEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTurn, err)
	}
	if envelope.Followup == "" && !envelope.MarkInterviewComplete {
		return nil, fmt.Errorf("%w: missing followup question", ErrMalformedTurn)
	}
	return &envelope, nil
}
