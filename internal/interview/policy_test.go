package interview

import (
	"strings"
	"testing"

	"github.com/lattia-ai/lattia/internal/models"
)

func TestComputeClock(t *testing.T) {
	state := models.NewSessionState()
	state.DomainStats[models.DomainSleep].TurnsSpent = 3
	state.DomainStats[models.DomainNutrition].TurnsSpent = 9 // over 6+2
	state.DomainStats[models.DomainBasicInfo].Completed = true
	state.TotalTurns = 12

	view := ComputeClock(state)

	if view.TotalTurns != 12 {
		t.Errorf("total_turns = %d; want 12", view.TotalTurns)
	}
	if view.TotalTarget != models.DefaultTotalTurnTarget {
		t.Errorf("total_target = %d; want %d", view.TotalTarget, models.DefaultTotalTurnTarget)
	}
	if len(view.Domains) != len(models.AllDomains) {
		t.Fatalf("expected %d domain rows, got %d", len(models.AllDomains), len(view.Domains))
	}

	byDomain := make(map[models.Domain]DomainClock)
	for _, dc := range view.Domains {
		byDomain[dc.Domain] = dc
	}
	if !byDomain[models.DomainNutrition].OverBudget {
		t.Error("nutrition should be over budget")
	}
	if byDomain[models.DomainSleep].OverBudget {
		t.Error("sleep should not be over budget")
	}
	if !byDomain[models.DomainBasicInfo].Completed {
		t.Error("basic_info should be completed")
	}
	if view.AllDomainsSettled {
		t.Error("all_domains_settled should be false with unsettled domains")
	}
}

func TestComputeClockAllDomainsSettled(t *testing.T) {
	state := models.NewSessionState()
	for i, d := range models.AllDomains {
		if i%2 == 0 {
			state.DomainStats[d].Completed = true
		} else {
			state.DomainStats[d].TurnsSpent = models.DefaultDomainTurnTarget + models.DefaultDomainTurnTolerance + 1
		}
	}

	view := ComputeClock(state)
	if !view.AllDomainsSettled {
		t.Error("expected all domains settled when each is completed or over budget")
	}
}

func TestComputeClockNeverMutatesState(t *testing.T) {
	state := models.NewSessionState()
	state.DomainStats[models.DomainSleep].TurnsSpent = 4
	before, err := state.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = ComputeClock(state)

	after, err := state.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before != after {
		t.Error("ComputeClock mutated state")
	}
}

func TestClockSummary(t *testing.T) {
	state := models.NewSessionState()
	state.DomainStats[models.DomainSleep].TurnsSpent = 3
	state.DomainStats[models.DomainSleep].Completed = true
	state.TotalTurns = 7

	summary := ComputeClock(state).Summary()

	if !strings.Contains(summary, "- Total turns spent: 7") {
		t.Errorf("summary missing total turns:\n%s", summary)
	}
	if !strings.Contains(summary, "- Total turns left: 23") {
		t.Errorf("summary missing turns left:\n%s", summary)
	}
	if !strings.Contains(summary, "  - sleep 3 / 6 (+/- 2) [marked as completed]") {
		t.Errorf("summary missing sleep row:\n%s", summary)
	}
	if !strings.Contains(summary, "  - nutrition 0 / 6 (+/- 2)") {
		t.Errorf("summary missing nutrition row:\n%s", summary)
	}
}

func TestClockSummaryTurnsLeftNeverNegative(t *testing.T) {
	state := models.NewSessionState()
	state.TotalTurns = state.TotalTarget + 5

	summary := ComputeClock(state).Summary()
	if !strings.Contains(summary, "- Total turns left: 0") {
		t.Errorf("turns left should clamp at zero:\n%s", summary)
	}
}
