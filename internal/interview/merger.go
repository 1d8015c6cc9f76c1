package interview

import (
	"fmt"
	"log/slog"

	"github.com/lattia-ai/lattia/internal/models"
)

// Sub-operation names recorded in merge reports.
const (
	OpRegisterField     = "register_field"
	OpValueUpdate       = "value_update"
	OpCompleteDomain    = "complete_domain"
	OpIncrementTurn     = "increment_turn"
	OpCompleteInterview = "complete_interview"
)

// ApplyTurn merges one TurnDecision into a session state, returning the new
// state and a report enumerating every sub-operation outcome.
//
// The decision is untrusted input. All domain references are validated up
// front against the closed vocabulary; any unknown domain aborts the whole
// turn with models.ErrInvalidDomain and the input state is returned
// unchanged. Operations run against a deep working copy in fixed order
// (register fields, apply value updates, complete domains, increment the
// turn counter, complete the interview) so behavior stays deterministic, and
// the copy is only handed back on full structural success. Per-item
// rejections are best-effort batch semantics: one bad update never blocks
// the others.
func ApplyTurn(state *models.SessionState, decision models.TurnDecision) (*models.SessionState, *models.MergeReport, error) {
	if err := decision.ValidateDomains(); err != nil {
		slog.Error("TurnMerger rejected decision", "error", err)
		return state, nil, fmt.Errorf("turn merge aborted: %w", err)
	}

	next := state.Clone()
	registry := NewFieldRegistry(next)
	tracker := NewDomainProgressTracker(next)

	turn := next.TotalTurns + 1
	report := &models.MergeReport{Turn: turn}

	for _, req := range decision.NewFieldRequests {
		outcome, err := registry.Register(req.Spec, req.Rationale, turn)
		if err != nil {
			// Structural violation surfaced after the up-front check; keep
			// the atomic commit guarantee by discarding the working copy.
			slog.Error("TurnMerger aborted during field registration", "key", req.Spec.Key, "error", err)
			return state, nil, fmt.Errorf("turn merge aborted: %w", err)
		}
		report.Record(models.ReportEntry{
			Operation: OpRegisterField,
			Key:       models.NormalizeFieldKey(req.Spec.Key),
			Domain:    req.Spec.Domain,
			Outcome:   outcome,
		})
	}

	for _, upd := range decision.ValueUpdates {
		outcome := registry.ApplyValueUpdate(upd.Key, upd.Value, turn)
		report.Record(models.ReportEntry{
			Operation: OpValueUpdate,
			Key:       models.NormalizeFieldKey(upd.Key),
			Outcome:   outcome,
		})
	}

	for _, domain := range decision.DomainsToComplete {
		tracker.MarkComplete(domain)
		report.Record(models.ReportEntry{
			Operation: OpCompleteDomain,
			Domain:    domain,
			Outcome:   models.OutcomeAccepted,
		})
	}

	tracker.IncrementTurn(decision.NextDomain)
	report.Record(models.ReportEntry{
		Operation: OpIncrementTurn,
		Domain:    decision.NextDomain,
		Outcome:   models.OutcomeAccepted,
	})

	if decision.MarkInterviewComplete {
		tracker.MarkInterviewComplete()
		report.Record(models.ReportEntry{
			Operation: OpCompleteInterview,
			Outcome:   models.OutcomeAccepted,
		})
	}

	slog.Debug("TurnMerger applied decision",
		"turn", turn,
		"nextDomain", decision.NextDomain,
		"fieldRequests", len(decision.NewFieldRequests),
		"valueUpdates", len(decision.ValueUpdates),
		"duplicates", report.Count(models.OutcomeDuplicateKey),
		"rejectedUpdates", report.Count(models.OutcomeUnknownField)+report.Count(models.OutcomeInvalidValue))
	return next, report, nil
}
