package models

// Outcome tags the result of one sub-operation during a turn merge.
// All outcomes are recoverable and recorded in the merge report; only
// whole-turn structural violations surface as errors.
type Outcome string

const (
	// OutcomeAccepted indicates the sub-operation mutated state as requested.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeDuplicateKey indicates an idempotent no-op registration of an
	// already-known field key.
	OutcomeDuplicateKey Outcome = "duplicate_key"
	// OutcomeUnknownField indicates a value update targeting an unregistered
	// key; the update was skipped.
	OutcomeUnknownField Outcome = "unknown_field"
	// OutcomeInvalidValue indicates the value failed validation against the
	// field's value type; the update was skipped.
	OutcomeInvalidValue Outcome = "invalid_value"
	// OutcomeInvalidFieldSpec indicates a malformed field request; that one
	// request was skipped.
	OutcomeInvalidFieldSpec Outcome = "invalid_field_spec"
)

// ReportEntry records the outcome of one sub-operation.
type ReportEntry struct {
	Operation string  `json:"operation"` // "register_field" | "value_update" | "complete_domain" | "increment_turn" | "complete_interview"
	Key       string  `json:"key,omitempty"`
	Domain    Domain  `json:"domain,omitempty"`
	Outcome   Outcome `json:"outcome"`
	Detail    string  `json:"detail,omitempty"`
}

// MergeReport enumerates every sub-operation outcome of one applied turn so
// callers and tests can assert on acceptance and rejection without
// re-deriving state diffs. It is diagnostic output and is not persisted.
type MergeReport struct {
	Turn    int           `json:"turn"`
	Entries []ReportEntry `json:"entries"`
}

// Record appends one sub-operation outcome.
func (r *MergeReport) Record(e ReportEntry) {
	r.Entries = append(r.Entries, e)
}

// Count returns how many entries carry the given outcome.
func (r *MergeReport) Count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Accepted reports whether every recorded sub-operation was accepted.
func (r *MergeReport) Accepted() bool {
	for _, e := range r.Entries {
		if e.Outcome != OutcomeAccepted {
			return false
		}
	}
	return true
}
