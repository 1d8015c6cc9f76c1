package models

import "fmt"

// FieldRequest asks the registry to add exactly one new field to the session.
type FieldRequest struct {
	Spec      FieldSpec `json:"spec"`
	Rationale string    `json:"rationale,omitempty"`
}

// ValueUpdate adds or updates the canonical text value for one registered field.
type ValueUpdate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TurnDecision is the structured payload produced once per conversational
// turn by the external reasoning collaborator. It is untrusted input: every
// domain reference is validated against the closed vocabulary before any of
// it can affect session state.
type TurnDecision struct {
	NewFieldRequests      []FieldRequest `json:"new_field_requests"`
	ValueUpdates          []ValueUpdate  `json:"value_updates"`
	DomainsToComplete     []Domain       `json:"domains_to_complete"`
	MarkInterviewComplete bool           `json:"mark_interview_complete"`
	NextDomain            Domain         `json:"next_domain"`
}

// ValidateDomains checks every domain referenced anywhere in the decision
// against the closed vocabulary. Any unknown domain is a structural contract
// violation: the whole turn must abort with no state mutation.
func (d *TurnDecision) ValidateDomains() error {
	if !IsValidDomain(d.NextDomain) {
		return fmt.Errorf("%w: next_domain %q", ErrInvalidDomain, d.NextDomain)
	}
	for _, req := range d.NewFieldRequests {
		if !IsValidDomain(req.Spec.Domain) {
			return fmt.Errorf("%w: field request %q has domain %q", ErrInvalidDomain, req.Spec.Key, req.Spec.Domain)
		}
	}
	for _, dom := range d.DomainsToComplete {
		if !IsValidDomain(dom) {
			return fmt.Errorf("%w: domains_to_complete %q", ErrInvalidDomain, dom)
		}
	}
	return nil
}
