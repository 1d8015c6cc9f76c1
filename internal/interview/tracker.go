package interview

import (
	"log/slog"

	"github.com/lattia-ai/lattia/internal/models"
)

// DomainProgressTracker owns per-domain turn counters, soft pacing targets,
// and completion flags, plus the global turn counter and overall completion
// flag. Counters never decrease and completion flags never clear.
type DomainProgressTracker struct {
	state *models.SessionState
}

// NewDomainProgressTracker wraps the progress stats of the given session state.
func NewDomainProgressTracker(state *models.SessionState) *DomainProgressTracker {
	return &DomainProgressTracker{state: state}
}

// IncrementTurn bumps turns_spent for the domain and the global counter by
// exactly one. Called once per merged turn, attributed to the turn's
// next_domain. The caller guarantees the domain is in the closed vocabulary.
func (t *DomainProgressTracker) IncrementTurn(domain models.Domain) {
	stat := t.state.DomainStats[domain]
	stat.TurnsSpent++
	t.state.TotalTurns++
	slog.Debug("Tracker incremented turn", "domain", domain, "turnsSpent", stat.TurnsSpent, "totalTurns", t.state.TotalTurns)
}

// MarkComplete sets the domain's completed flag. Idempotent: no effect and no
// error if already complete. Advisory pacing never blocks this transition.
func (t *DomainProgressTracker) MarkComplete(domain models.Domain) {
	stat := t.state.DomainStats[domain]
	if stat.Completed {
		slog.Debug("Tracker domain already complete", "domain", domain)
		return
	}
	stat.Completed = true
	slog.Debug("Tracker marked domain complete", "domain", domain, "turnsSpent", stat.TurnsSpent)
}

// IsOverBudget reports whether the domain has exceeded its soft target plus
// tolerance. Pure query, advisory only.
func (t *DomainProgressTracker) IsOverBudget(domain models.Domain) bool {
	stat, ok := t.state.DomainStats[domain]
	if !ok {
		return false
	}
	return stat.TurnsSpent > stat.SoftTarget.Nominal+stat.SoftTarget.Tolerance
}

// MarkInterviewComplete sets the overall done flag. Idempotent.
func (t *DomainProgressTracker) MarkInterviewComplete() {
	if t.state.IsDone {
		slog.Debug("Tracker interview already complete")
		return
	}
	t.state.IsDone = true
	slog.Debug("Tracker marked interview complete", "totalTurns", t.state.TotalTurns)
}
