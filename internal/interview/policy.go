package interview

import (
	"fmt"
	"strings"

	"github.com/lattia-ai/lattia/internal/models"
)

// DomainClock is the advisory pacing snapshot for one domain.
type DomainClock struct {
	Domain     models.Domain     `json:"domain"`
	TurnsSpent int               `json:"turns_spent"`
	SoftTarget models.SoftTarget `json:"soft_target"`
	Completed  bool              `json:"completed"`
	OverBudget bool              `json:"over_budget"`
}

// ClockView is the advisory snapshot of turn counts and domain status fed to
// the reasoning collaborator each turn. The clock is visible; judgment stays
// external: the engine never auto-completes a domain or the interview.
type ClockView struct {
	Domains           []DomainClock `json:"domains"`
	TotalTurns        int           `json:"total_turns"`
	TotalTarget       int           `json:"total_target"`
	AllDomainsSettled bool          `json:"all_domains_settled"`
	InterviewDone     bool          `json:"interview_done"`
}

// ComputeClock derives the pacing and coverage view from current state.
// Pure function: it never mutates the session.
func ComputeClock(state *models.SessionState) ClockView {
	view := ClockView{
		Domains:           make([]DomainClock, 0, len(models.AllDomains)),
		TotalTurns:        state.TotalTurns,
		TotalTarget:       state.TotalTarget,
		AllDomainsSettled: true,
		InterviewDone:     state.IsDone,
	}
	for _, d := range models.AllDomains {
		stat := state.DomainStats[d]
		over := stat.TurnsSpent > stat.SoftTarget.Nominal+stat.SoftTarget.Tolerance
		view.Domains = append(view.Domains, DomainClock{
			Domain:     d,
			TurnsSpent: stat.TurnsSpent,
			SoftTarget: stat.SoftTarget,
			Completed:  stat.Completed,
			OverBudget: over,
		})
		if !stat.Completed && !over {
			view.AllDomainsSettled = false
		}
	}
	return view
}

// Summary renders the clock as the human-readable block embedded in the
// reasoning collaborator's prompt, for example:
//
//	- Total turns spent: 7
//	- Total turns left: 23
//	- Turns count per domain
//	  - sleep 3 / 6 (+/- 2) [marked as completed]
func (v ClockView) Summary() string {
	var b strings.Builder
	left := v.TotalTarget - v.TotalTurns
	if left < 0 {
		left = 0
	}
	fmt.Fprintf(&b, "- Total turns spent: %d\n", v.TotalTurns)
	fmt.Fprintf(&b, "- Total turns left: %d\n", left)
	b.WriteString("- Turns count per domain\n")
	for _, dc := range v.Domains {
		tag := ""
		if dc.Completed {
			tag = " [marked as completed]"
		}
		fmt.Fprintf(&b, "  - %s %d / %d (+/- %d)%s\n", dc.Domain, dc.TurnsSpent, dc.SoftTarget.Nominal, dc.SoftTarget.Tolerance, tag)
	}
	return strings.TrimRight(b.String(), "\n")
}
