package models

import (
	"errors"
	"testing"
)

func TestIsValidDomain(t *testing.T) {
	for _, d := range AllDomains {
		if !IsValidDomain(d) {
			t.Errorf("IsValidDomain(%s) = false; want true", d)
		}
	}
	for _, d := range []Domain{"astrology", "", "Sleep"} {
		if IsValidDomain(d) {
			t.Errorf("IsValidDomain(%s) = true; want false", d)
		}
	}
}

func TestFieldSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FieldSpec
		wantErr error
	}{
		{
			name: "valid enumerated",
			spec: FieldSpec{Key: "sleep_hours", Domain: DomainSleep, ValueType: ValueTypeEnumerated, Options: []string{"<4h", ">8h"}},
		},
		{
			name: "valid free text",
			spec: FieldSpec{Key: "main_goal", Domain: DomainLifestyle, ValueType: ValueTypeFreeText},
		},
		{
			name:    "empty key",
			spec:    FieldSpec{Key: " ", Domain: DomainSleep, ValueType: ValueTypeFreeText},
			wantErr: ErrEmptyFieldKey,
		},
		{
			name:    "unknown domain",
			spec:    FieldSpec{Key: "sleep_hours", Domain: "dreams", ValueType: ValueTypeFreeText},
			wantErr: ErrInvalidDomain,
		},
		{
			name:    "unknown value type",
			spec:    FieldSpec{Key: "sleep_hours", Domain: DomainSleep, ValueType: "scale_1_10"},
			wantErr: ErrInvalidValueType,
		},
		{
			name:    "enumerated without options",
			spec:    FieldSpec{Key: "sleep_hours", Domain: DomainSleep, ValueType: ValueTypeEnumerated},
			wantErr: ErrMissingOptions,
		},
		{
			name:    "options on non-enumerated",
			spec:    FieldSpec{Key: "is_smoker", Domain: DomainSubstanceUse, ValueType: ValueTypeBoolean, Options: []string{"yes"}},
			wantErr: ErrUnexpectedOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSessionStateHasAllDomains(t *testing.T) {
	state := NewSessionState()
	if len(state.DomainStats) != len(AllDomains) {
		t.Fatalf("expected %d domain stats, got %d", len(AllDomains), len(state.DomainStats))
	}
	for _, d := range AllDomains {
		stat, ok := state.DomainStats[d]
		if !ok {
			t.Errorf("missing domain stat for %s", d)
			continue
		}
		if stat.TurnsSpent != 0 || stat.Completed {
			t.Errorf("domain %s not at zero state", d)
		}
		if stat.SoftTarget.Nominal != DefaultDomainTurnTarget || stat.SoftTarget.Tolerance != DefaultDomainTurnTolerance {
			t.Errorf("domain %s has unexpected soft target %+v", d, stat.SoftTarget)
		}
	}
	if state.TotalTarget != DefaultTotalTurnTarget {
		t.Errorf("total_target = %d; want %d", state.TotalTarget, DefaultTotalTurnTarget)
	}
}

func TestSessionStateJSONRoundTrip(t *testing.T) {
	state := NewSessionState()
	state.Fields["sleep_hours"] = &Field{
		Spec: FieldSpec{
			Key:       "sleep_hours",
			Domain:    DomainSleep,
			ValueType: ValueTypeEnumerated,
			Options:   []string{"<4h", "4to6h", "6to8h", ">8h"},
			Label:     "Sleep hours",
		},
		Value:           "6to8h",
		Status:          FieldStatusCollected,
		CreatedTurn:     1,
		LastUpdatedTurn: 2,
	}
	state.DomainStats[DomainSleep].TurnsSpent = 2
	state.TotalTurns = 2

	data, err := state.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	restored, err := SessionStateFromJSON(data)
	if err != nil {
		t.Fatalf("SessionStateFromJSON failed: %v", err)
	}

	field, ok := restored.Fields["sleep_hours"]
	if !ok {
		t.Fatal("field lost in round trip")
	}
	if field.Value != "6to8h" || field.Status != FieldStatusCollected {
		t.Errorf("field data lost: value=%q status=%s", field.Value, field.Status)
	}
	if restored.DomainStats[DomainSleep].TurnsSpent != 2 {
		t.Errorf("domain stat lost: %d", restored.DomainStats[DomainSleep].TurnsSpent)
	}
	if restored.TotalTurns != 2 {
		t.Errorf("total_turns lost: %d", restored.TotalTurns)
	}
}

func TestSessionStateFromJSONBackfillsDomains(t *testing.T) {
	restored, err := SessionStateFromJSON(`{"fields":{},"domain_stats":{},"total_turns":0}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(restored.DomainStats) != len(AllDomains) {
		t.Errorf("expected %d backfilled domains, got %d", len(AllDomains), len(restored.DomainStats))
	}
	if restored.TotalTarget != DefaultTotalTurnTarget {
		t.Errorf("total_target not defaulted: %d", restored.TotalTarget)
	}
}

func TestCloneIsDeep(t *testing.T) {
	state := NewSessionState()
	state.Fields["main_goal"] = &Field{
		Spec:   FieldSpec{Key: "main_goal", Domain: DomainLifestyle, ValueType: ValueTypeFreeText},
		Status: FieldStatusPending,
	}

	clone := state.Clone()
	clone.Fields["main_goal"].Value = "changed"
	clone.Fields["main_goal"].Status = FieldStatusCollected
	clone.DomainStats[DomainSleep].TurnsSpent = 99
	clone.TotalTurns = 99
	clone.IsDone = true

	if state.Fields["main_goal"].Value != "" {
		t.Error("clone shares field data with original")
	}
	if state.DomainStats[DomainSleep].TurnsSpent != 0 {
		t.Error("clone shares domain stats with original")
	}
	if state.TotalTurns != 0 || state.IsDone {
		t.Error("clone shares counters with original")
	}
}

func TestToHealthData(t *testing.T) {
	state := NewSessionState()
	state.Fields["sleep_hours"] = &Field{
		Spec: FieldSpec{
			Key:       "sleep_hours",
			Domain:    DomainSleep,
			ValueType: ValueTypeEnumerated,
			Options:   []string{"<4h", ">8h"},
			Label:     "Sleep hours",
			Rationale: "baseline",
		},
		Value:  ">8h",
		Status: FieldStatusCollected,
	}
	state.Fields["main_goal"] = &Field{
		Spec:   FieldSpec{Key: "main_goal", Domain: DomainLifestyle, ValueType: ValueTypeFreeText},
		Status: FieldStatusPending,
	}

	data := state.ToHealthData()
	entry, ok := data[DomainSleep]["sleep_hours"]
	if !ok {
		t.Fatal("collected field missing from health data")
	}
	if entry.Value != ">8h" || entry.Label != "Sleep hours" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if _, ok := data[DomainLifestyle]; ok {
		t.Error("pending field leaked into health data")
	}
}

func TestTurnDecisionValidateDomains(t *testing.T) {
	valid := TurnDecision{
		NewFieldRequests: []FieldRequest{{
			Spec: FieldSpec{Key: "sleep_hours", Domain: DomainSleep, ValueType: ValueTypeFreeText},
		}},
		DomainsToComplete: []Domain{DomainSleep},
		NextDomain:        DomainNutrition,
	}
	if err := valid.ValidateDomains(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		decision TurnDecision
	}{
		{
			name:     "bad next_domain",
			decision: TurnDecision{NextDomain: "astrology"},
		},
		{
			name: "bad field request domain",
			decision: TurnDecision{
				NewFieldRequests: []FieldRequest{{Spec: FieldSpec{Key: "k", Domain: "chakras", ValueType: ValueTypeFreeText}}},
				NextDomain:       DomainSleep,
			},
		},
		{
			name: "bad completion domain",
			decision: TurnDecision{
				DomainsToComplete: []Domain{"auras"},
				NextDomain:        DomainSleep,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decision.ValidateDomains(); !errors.Is(err, ErrInvalidDomain) {
				t.Errorf("expected ErrInvalidDomain, got %v", err)
			}
		})
	}
}

func TestProfileCreateRequestValidate(t *testing.T) {
	if err := (&ProfileCreateRequest{Name: "Ada"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&ProfileCreateRequest{}).Validate(); !errors.Is(err, ErrEmptyProfileName) {
		t.Errorf("expected ErrEmptyProfileName, got %v", err)
	}
	long := make([]byte, MaxProfileNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := (&ProfileCreateRequest{Name: string(long)}).Validate(); !errors.Is(err, ErrProfileNameTooLong) {
		t.Errorf("expected ErrProfileNameTooLong, got %v", err)
	}
}
