// Package interview implements the session state and completeness engine:
// field registry, per-domain progress tracking, atomic turn merging, and the
// advisory completion clock. The engine holds no I/O; it operates on explicit
// SessionState values and leaves persistence to the store collaborator.
package interview

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/lattia-ai/lattia/internal/models"
)

// FieldRegistry owns the set of known fields for one session and enforces
// key uniqueness and value-type validation. It mutates the SessionState it
// wraps, so the merger always hands it a working copy.
type FieldRegistry struct {
	state *models.SessionState
}

// NewFieldRegistry wraps the field set of the given session state.
func NewFieldRegistry(state *models.SessionState) *FieldRegistry {
	return &FieldRegistry{state: state}
}

// Register inserts a new pending field from the given spec.
//
// An already-present key is an idempotent no-op reported as DuplicateKey; the
// existing field is left untouched. A malformed spec is reported as
// InvalidFieldSpec and skipped. A domain outside the closed vocabulary is a
// structural contract violation and returns an error so the enclosing merge
// aborts.
func (r *FieldRegistry) Register(spec models.FieldSpec, rationale string, turn int) (models.Outcome, error) {
	key := models.NormalizeFieldKey(spec.Key)
	if _, exists := r.state.Fields[key]; exists {
		slog.Debug("FieldRegistry duplicate key ignored", "key", key)
		return models.OutcomeDuplicateKey, nil
	}

	if err := spec.Validate(); err != nil {
		if errors.Is(err, models.ErrInvalidDomain) {
			return "", err
		}
		slog.Debug("FieldRegistry rejected field spec", "key", spec.Key, "error", err)
		return models.OutcomeInvalidFieldSpec, nil
	}

	spec.Key = key
	if rationale != "" {
		spec.Rationale = rationale
	}
	r.state.Fields[key] = &models.Field{
		Spec:        spec,
		Status:      models.FieldStatusPending,
		CreatedTurn: turn,
	}
	slog.Debug("FieldRegistry registered field", "key", key, "domain", spec.Domain, "valueType", spec.ValueType)
	return models.OutcomeAccepted, nil
}

// ApplyValueUpdate validates value against the field's value type and, on
// success, stores it and marks the field collected. Unknown keys and invalid
// values are reported, never raised; state is unchanged on rejection.
func (r *FieldRegistry) ApplyValueUpdate(key, value string, turn int) models.Outcome {
	key = models.NormalizeFieldKey(key)
	field, exists := r.state.Fields[key]
	if !exists {
		slog.Debug("FieldRegistry update for unknown field skipped", "key", key)
		return models.OutcomeUnknownField
	}

	if !validValue(field.Spec, value) {
		slog.Debug("FieldRegistry rejected value", "key", key, "valueType", field.Spec.ValueType)
		return models.OutcomeInvalidValue
	}

	field.Value = value
	field.Status = models.FieldStatusCollected
	field.LastUpdatedTurn = turn
	slog.Debug("FieldRegistry value accepted", "key", key, "turn", turn)
	return models.OutcomeAccepted
}

// validValue checks a canonical text value against the spec's value type.
// The special refusal tokens are accepted for every type.
func validValue(spec models.FieldSpec, value string) bool {
	if models.IsSpecialValueToken(value) {
		return true
	}
	switch spec.ValueType {
	case models.ValueTypeFreeText:
		return true
	case models.ValueTypeBoolean:
		return value == models.BooleanYes || value == models.BooleanNo
	case models.ValueTypeEnumerated:
		for _, opt := range spec.Options {
			if value == opt {
				return true
			}
		}
		return false
	case models.ValueTypeNumber:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case models.ValueTypeDate:
		_, err := time.Parse(models.DateValueLayout, value)
		return err == nil
	default:
		return false
	}
}
