package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp openai.ChatCompletion
	err  error
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	return m.resp, m.err
}

func textCompletion(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGeneratePrompt_Success(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: textCompletion("Hello World")}}
	out, err := client.GeneratePrompt(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello World" {
		t.Errorf("expected 'Hello World', got '%s'", out)
	}
}

func TestGeneratePrompt_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGeneratePrompt_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}}
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if err != ErrNoChoicesReturned {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Fatal("expected client instance, got nil")
	}
	if cli.model != DefaultModel {
		t.Errorf("expected default model, got %s", cli.model)
	}
	if cli.temperature != DefaultTemperature || cli.maxCompletionTokens != DefaultMaxCompletionTokens {
		t.Errorf("unexpected defaults: temperature=%v maxCompletionTokens=%d", cli.temperature, cli.maxCompletionTokens)
	}
}

func TestNewClient_Overrides(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("test-model"), WithTemperature(0.2), WithMaxCompletionTokens(512))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cli.model != "test-model" || cli.temperature != 0.2 || cli.maxCompletionTokens != 512 {
		t.Errorf("overrides not applied: %+v", cli)
	}
}

const turnPayload = `{
	"analysis": {
		"response_interpretation": "User sleeps about seven hours.",
		"completeness_review": "Sleep nearly covered.",
		"value_update_plan": ["sleep_hours"]
	},
	"domains_to_mark_complete": ["sleep"],
	"mark_interview_complete": false,
	"new_fields_to_collect": [
		{
			"spec": {
				"key": "sleep_quality",
				"domain": "sleep",
				"value_type": "enumerated",
				"options": ["poor", "fair", "good"]
			},
			"rationale": "Duration alone does not capture restfulness."
		}
	],
	"value_updates": [{"key": "sleep_hours", "value": "6to8h"}],
	"next_field_selection": {"note": "Follow up on restfulness.", "key": "sleep_quality", "domain": "sleep"},
	"followup": "How would you rate your sleep quality?"
}`

func TestGenerateTurn_Success(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: textCompletion(turnPayload)}, model: "test-model", temperature: 0.1, maxCompletionTokens: 100}
	envelope, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope.Followup != "How would you rate your sleep quality?" {
		t.Errorf("unexpected followup: %q", envelope.Followup)
	}
	if len(envelope.NewFieldsToCollect) != 1 || envelope.NewFieldsToCollect[0].Spec.Key != "sleep_quality" {
		t.Errorf("unexpected field requests: %+v", envelope.NewFieldsToCollect)
	}

	decision := envelope.Decision()
	if decision.NextDomain != "sleep" {
		t.Errorf("expected next domain sleep, got %q", decision.NextDomain)
	}
	if len(decision.ValueUpdates) != 1 || decision.ValueUpdates[0].Key != "sleep_hours" {
		t.Errorf("unexpected value updates: %+v", decision.ValueUpdates)
	}
	if len(decision.DomainsToComplete) != 1 || decision.DomainsToComplete[0] != "sleep" {
		t.Errorf("unexpected domains to complete: %+v", decision.DomainsToComplete)
	}
	if err := decision.ValidateDomains(); err != nil {
		t.Errorf("decision should pass domain validation: %v", err)
	}
}

func TestGenerateTurn_CodeFence(t *testing.T) {
	fenced := "```json\n" + turnPayload + "\n```"
	client := &Client{chat: &mockChatService{resp: textCompletion(fenced)}, model: "test-model"}
	envelope, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope.NextFieldSelection.Key != "sleep_quality" {
		t.Errorf("unexpected selection: %+v", envelope.NextFieldSelection)
	}
}

func TestGenerateTurn_MalformedJSON(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: textCompletion("not json at all")}, model: "test-model"}
	_, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if !errors.Is(err, ErrMalformedTurn) {
		t.Errorf("expected malformed turn error, got %v", err)
	}
}

func TestGenerateTurn_MissingFollowup(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: textCompletion(`{"value_updates": []}`)}, model: "test-model"}
	_, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if !errors.Is(err, ErrMalformedTurn) {
		t.Errorf("expected malformed turn error, got %v", err)
	}
}

func TestGenerateTurn_CompletionWithoutFollowup(t *testing.T) {
	// A closing turn may omit the followup question.
	client := &Client{chat: &mockChatService{resp: textCompletion(`{"mark_interview_complete": true, "next_field_selection": {"domain": "sleep"}}`)}, model: "test-model"}
	envelope, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !envelope.MarkInterviewComplete {
		t.Error("expected interview completion flag")
	}
}

func TestGenerateTurn_Refusal(t *testing.T) {
	resp := openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Refusal: "cannot comply"}},
		},
	}
	client := &Client{chat: &mockChatService{resp: resp}, model: "test-model"}
	_, err := client.GenerateTurn(context.Background(), []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")})
	if !errors.Is(err, ErrMalformedTurn) || !strings.Contains(err.Error(), "cannot comply") {
		t.Errorf("expected refusal error, got %v", err)
	}
}
