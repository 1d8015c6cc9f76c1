package models

import (
	"errors"
	"time"
)

// MaxProfileNameLength defines the maximum allowed length for a profile name.
const MaxProfileNameLength = 100

// Error variables for profile validation.
var (
	ErrEmptyProfileName   = errors.New("profile name is required")
	ErrProfileNameTooLong = errors.New("profile name exceeds maximum length")
	ErrEmptyMessageBody   = errors.New("message content is required")
)

// Profile represents one interviewee and owns exactly one interview session.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDone    bool      `json:"is_done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// MessageRoleUser is a message sent by the interviewee.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is a message produced by the interview agent.
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is one persisted conversation message for a profile.
type Message struct {
	ID        int64       `json:"id"`
	ProfileID string      `json:"profile_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ProfileCreateRequest is the payload for creating a profile.
type ProfileCreateRequest struct {
	Name string `json:"name"`
}

// Validate checks the profile creation payload.
func (r *ProfileCreateRequest) Validate() error {
	if r.Name == "" {
		return ErrEmptyProfileName
	}
	if len(r.Name) > MaxProfileNameLength {
		return ErrProfileNameTooLong
	}
	return nil
}

// MessageCreateRequest is the payload for sending one interview message.
type MessageCreateRequest struct {
	Content string `json:"content"`
}

// Validate checks the message payload.
func (r *MessageCreateRequest) Validate() error {
	if r.Content == "" {
		return ErrEmptyMessageBody
	}
	return nil
}

// StatusUpdateRequest is the payload for manually updating interview status.
// Completion is monotonic: the flag may be set, never cleared.
type StatusUpdateRequest struct {
	IsDone bool `json:"is_done"`
}

// HistoryResponse bundles a profile with its ordered conversation messages.
type HistoryResponse struct {
	Profile  Profile   `json:"profile"`
	Messages []Message `json:"messages"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and
// optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
