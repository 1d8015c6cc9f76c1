package models

import (
	"encoding/json"
	"fmt"
)

// Default pacing targets. Soft limits only: the clock is visible to the
// decision producer, but completion authority stays with explicit decisions.
const (
	// DefaultDomainTurnTarget is the nominal turn count per domain.
	DefaultDomainTurnTarget = 6
	// DefaultDomainTurnTolerance is the tolerance around the nominal target.
	DefaultDomainTurnTolerance = 2
	// DefaultTotalTurnTarget is the nominal turn count for the whole interview.
	DefaultTotalTurnTarget = 30
)

// SoftTarget is a non-binding nominal turn-count goal with tolerance.
type SoftTarget struct {
	Nominal   int `json:"nominal"`
	Tolerance int `json:"tolerance"`
}

// DomainStat tracks interview progress for one domain. The entry itself is
// fixed for the session's lifetime; only the counter and the completion flag
// mutate, and both are monotonic.
type DomainStat struct {
	Domain     Domain     `json:"domain"`
	TurnsSpent int        `json:"turns_spent"`
	SoftTarget SoftTarget `json:"soft_target"`
	Completed  bool       `json:"completed"`
}

// SessionState is the aggregate unit of persistence for one interview
// session: the field registry contents, per-domain progress, and the overall
// completion flag. It is always an explicit value passed into and returned
// from engine operations, never a process-wide instance.
type SessionState struct {
	Fields      map[string]*Field      `json:"fields"`
	DomainStats map[Domain]*DomainStat `json:"domain_stats"`
	TotalTurns  int                    `json:"total_turns"`
	TotalTarget int                    `json:"total_target"`
	IsDone      bool                   `json:"is_done"`
}

// NewSessionState creates an empty session with every domain present at zero
// counters and default soft targets.
func NewSessionState() *SessionState {
	stats := make(map[Domain]*DomainStat, len(AllDomains))
	for _, d := range AllDomains {
		stats[d] = &DomainStat{
			Domain: d,
			SoftTarget: SoftTarget{
				Nominal:   DefaultDomainTurnTarget,
				Tolerance: DefaultDomainTurnTolerance,
			},
		}
	}
	return &SessionState{
		Fields:      make(map[string]*Field),
		DomainStats: stats,
		TotalTarget: DefaultTotalTurnTarget,
	}
}

// Clone returns a deep copy of the session state. The merger builds every
// turn against a clone and swaps it in only on full structural success, so a
// mid-merge abort cannot leave partially-applied state.
func (s *SessionState) Clone() *SessionState {
	c := &SessionState{
		Fields:      make(map[string]*Field, len(s.Fields)),
		DomainStats: make(map[Domain]*DomainStat, len(s.DomainStats)),
		TotalTurns:  s.TotalTurns,
		TotalTarget: s.TotalTarget,
		IsDone:      s.IsDone,
	}
	for k, f := range s.Fields {
		c.Fields[k] = f.clone()
	}
	for d, st := range s.DomainStats {
		stat := *st
		c.DomainStats[d] = &stat
	}
	return c
}

// CollectedFields returns the fields that have an accepted value.
func (s *SessionState) CollectedFields() map[string]*Field {
	out := make(map[string]*Field)
	for k, f := range s.Fields {
		if f.IsCollected() {
			out[k] = f
		}
	}
	return out
}

// PendingFields returns the fields still waiting for a value.
func (s *SessionState) PendingFields() map[string]*Field {
	out := make(map[string]*Field)
	for k, f := range s.Fields {
		if !f.IsCollected() {
			out[k] = f
		}
	}
	return out
}

// TotalTurnsLeft returns the remaining turns against the overall soft target,
// never negative.
func (s *SessionState) TotalTurnsLeft() int {
	if left := s.TotalTarget - s.TotalTurns; left > 0 {
		return left
	}
	return 0
}

// ToJSON serializes the session state for storage.
func (s *SessionState) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session state: %w", err)
	}
	return string(data), nil
}

// SessionStateFromJSON deserializes a stored session state. Domains missing
// from the stored payload are backfilled with zero counters so that sessions
// persisted before a vocabulary addition keep all domains present.
func SessionStateFromJSON(data string) (*SessionState, error) {
	var s SessionState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*Field)
	}
	if s.DomainStats == nil {
		s.DomainStats = make(map[Domain]*DomainStat, len(AllDomains))
	}
	for _, d := range AllDomains {
		if _, ok := s.DomainStats[d]; !ok {
			s.DomainStats[d] = &DomainStat{
				Domain: d,
				SoftTarget: SoftTarget{
					Nominal:   DefaultDomainTurnTarget,
					Tolerance: DefaultDomainTurnTolerance,
				},
			}
		}
	}
	if s.TotalTarget == 0 {
		s.TotalTarget = DefaultTotalTurnTarget
	}
	return &s, nil
}

// HealthDataEntry is one collected piece of information, shaped for human
// presentation.
type HealthDataEntry struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Rationale string   `json:"rationale,omitempty"`
	Value     string   `json:"value"`
	Options   []string `json:"options,omitempty"`
}

// HealthData groups collected entries by domain.
type HealthData map[Domain]map[string]HealthDataEntry

// ToHealthData converts the collected fields into the user-facing HealthData
// projection consumed by the presentation collaborator.
func (s *SessionState) ToHealthData() HealthData {
	data := make(HealthData)
	for key, f := range s.Fields {
		if !f.IsCollected() {
			continue
		}
		domain := f.Spec.Domain
		if _, ok := data[domain]; !ok {
			data[domain] = make(map[string]HealthDataEntry)
		}
		data[domain][key] = HealthDataEntry{
			Key:       key,
			Label:     f.Spec.Label,
			Rationale: f.Spec.Rationale,
			Value:     f.Value,
			Options:   f.Spec.Options,
		}
	}
	return data
}
