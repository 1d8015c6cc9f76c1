package models

import (
	"errors"
	"fmt"
	"strings"
)

// Validation constants for field specifications.
const (
	// MaxFieldKeyLength defines the maximum allowed length for a field key.
	MaxFieldKeyLength = 100
	// MaxFieldLabelLength defines the maximum allowed length for a field label.
	MaxFieldLabelLength = 200
)

// Error variables for better error handling and testability.
var (
	ErrEmptyFieldKey     = errors.New("field key cannot be empty")
	ErrFieldKeyTooLong   = errors.New("field key exceeds maximum length")
	ErrInvalidDomain     = errors.New("domain is not in the closed vocabulary")
	ErrInvalidValueType  = errors.New("invalid value type")
	ErrMissingOptions    = errors.New("options are required for enumerated fields")
	ErrUnexpectedOptions = errors.New("options are only allowed for enumerated fields")
)

// FieldStatus tracks whether a field's value has been collected yet.
type FieldStatus string

const (
	// FieldStatusPending indicates the field was registered but no value accepted yet.
	FieldStatusPending FieldStatus = "pending"
	// FieldStatusCollected indicates at least one value update was accepted.
	FieldStatusCollected FieldStatus = "collected"
)

// FieldSpec describes a single intake field to be collected during a session:
// what it represents, which domain it belongs to, and how answers are validated.
type FieldSpec struct {
	Key       string    `json:"key"`               // normalized machine key, unique within a session
	Domain    Domain    `json:"domain"`            // member of the closed vocabulary
	ValueType ValueType `json:"value_type"`        // governs validation, not storage
	Options   []string  `json:"options,omitempty"` // allowed literal values, required iff enumerated
	Label     string    `json:"label"`             // display text for UI and reports
	Rationale string    `json:"rationale"`         // informational only
}

// NormalizeFieldKey canonicalizes a field key for registry lookups.
func NormalizeFieldKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Validate performs structural validation on a FieldSpec.
//
// ErrInvalidDomain indicates a contract violation by the decision producer and
// must abort the enclosing merge; every other failure is recoverable and maps
// to an InvalidFieldSpec outcome at the registry.
func (s *FieldSpec) Validate() error {
	if NormalizeFieldKey(s.Key) == "" {
		return ErrEmptyFieldKey
	}
	if len(s.Key) > MaxFieldKeyLength {
		return ErrFieldKeyTooLong
	}
	if !IsValidDomain(s.Domain) {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, s.Domain)
	}
	if !IsValidValueType(s.ValueType) {
		return ErrInvalidValueType
	}
	if s.ValueType == ValueTypeEnumerated && len(s.Options) == 0 {
		return ErrMissingOptions
	}
	if s.ValueType != ValueTypeEnumerated && len(s.Options) > 0 {
		return ErrUnexpectedOptions
	}
	return nil
}

// Field is a FieldSpec plus its current value and collection bookkeeping.
// Fields are owned exclusively by one session and are never deleted.
type Field struct {
	Spec            FieldSpec   `json:"spec"`
	Value           string      `json:"value,omitempty"` // canonical text, empty until first accepted update
	Status          FieldStatus `json:"status"`
	CreatedTurn     int         `json:"created_turn"`
	LastUpdatedTurn int         `json:"last_updated_turn,omitempty"`
}

// IsCollected reports whether the field has an accepted value.
func (f *Field) IsCollected() bool {
	return f.Status == FieldStatusCollected
}

// clone returns a deep copy of the field.
func (f *Field) clone() *Field {
	c := *f
	if f.Spec.Options != nil {
		c.Spec.Options = append([]string(nil), f.Spec.Options...)
	}
	return &c
}
