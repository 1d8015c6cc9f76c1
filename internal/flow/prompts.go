package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lattia-ai/lattia/internal/models"
)

// DefaultOpeningQuestion opens the interview when the model cannot be
// reached for a personalized opener.
const DefaultOpeningQuestion = "Hello! I am your assistant. Can you tell me about your sleep habits?"

// CompletedInterviewReply closes the conversation once the interview is done.
const CompletedInterviewReply = "Thanks, your interview is completed. You can still update your data."

// historyWindow is how many previous exchanges (user plus assistant pairs)
// are kept in the model context.
const historyWindow = 10

// interviewSystemPrompt instructs the model to run a proactive structured
// intake interview and answer with the single-turn JSON decision payload.
const interviewSystemPrompt = `You are a proactive health intake interviewer working from a functional-medicine perspective.

You conduct a multi-turn interview that gradually fills a structured session state. Each turn you decide which values can be recorded from the user's latest answer, which new fields are worth collecting, whether any domain is sufficiently covered, and what single question to ask next.

The closed set of intake domains is: basic_info, lifestyle, physical_activity, sleep, mental_health, nutrition, social_relations, family_history, medical_history, substance_use, personal_hygiene, current_health_status. Never use any other domain name.

Field rules:
- Every field has a stable snake_case key, unique across the whole session.
- value_type is one of: free_text, boolean, enumerated, number, date.
- boolean values are exactly "yes" or "no".
- enumerated values must match one of the field's options verbatim.
- number values are plain decimal numbers; date values use YYYY-MM-DD.
- When the user declines or does not know, record the special token "prefer_not_to_say" or "not_sure" as the entire value.
- Prefer enumerated fields with a small set of options over free text whenever practical.

Pacing rules:
- The session progress block shows turns spent per domain against soft targets. Targets are advisory: use them to pace, but mark a domain complete only when you judge its coverage sufficient.
- Watch the total turns left and prioritize uncovered domains as the budget shrinks.
- Set mark_interview_complete to true only when the remaining domains no longer justify the user's time.

Respond with a single JSON object and nothing else, using exactly this shape:
{
  "analysis": {
    "response_interpretation": "...",
    "context_link": "...",
    "value_update_plan": ["key", ...],
    "completeness_review": "...",
    "next_fields_thoughts": "...",
    "field_requests_to_create": ["key", ...]
  },
  "domains_to_mark_complete": ["domain", ...],
  "mark_interview_complete": false,
  "new_fields_to_collect": [
    {"spec": {"key": "...", "domain": "...", "value_type": "...", "options": ["..."], "label": "...", "rationale": "..."}, "rationale": "..."}
  ],
  "value_updates": [{"key": "...", "value": "..."}],
  "next_field_selection": {"note": "...", "key": "...", "domain": "..."},
  "followup": "Exactly one clear question covering a single topic."
}`

// openingSystemPrompt drives the generated opening question for a new
// interview.
const openingSystemPrompt = `You are a friendly health intake interviewer. Greet the user by name, briefly explain that you will ask a series of short questions about their health and lifestyle, and ask exactly one easy opening question about one intake domain. Keep it to two or three sentences, plain text only.`

// userPromptTemplate mirrors the per-turn context block: current session
// state, pacing summary, recent history, and the latest user message.
const userPromptTemplate = `# Intake Interview Session State

## Collected Fields (could still be updated)
%s

## To Be Collected Fields (avoid creating duplicates)
%s

## Session Progress (watch time, adjust pace)
%s

# Conversation History
%s

# Last User query:
%s`

// formatFields renders a deterministic, human-readable listing of fields for
// the prompt. Keys are sorted so identical states produce identical prompts.
func formatFields(fields map[string]*models.Field) string {
	if len(fields) == 0 {
		return "(none)"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		f := fields[k]
		fmt.Fprintf(&b, "- %s (domain: %s, type: %s)\n", k, f.Spec.Domain, f.Spec.ValueType)
		if f.Spec.Label != "" {
			fmt.Fprintf(&b, "  label: %s\n", f.Spec.Label)
		}
		if len(f.Spec.Options) > 0 {
			fmt.Fprintf(&b, "  options: [%s]\n", strings.Join(f.Spec.Options, ", "))
		}
		if f.IsCollected() {
			fmt.Fprintf(&b, "  value: %s\n", f.Value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatHistory renders conversation messages as "User:"/"You:" lines.
func formatHistory(messages []models.Message) string {
	if len(messages) == 0 {
		return "(no prior messages)"
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		name := "You"
		if m.Role == models.MessageRoleUser {
			name = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, strings.TrimSpace(m.Content)))
	}
	return strings.Join(lines, "\n")
}

// buildTurnPrompt assembles the per-turn user prompt from session state,
// pacing summary, windowed history, and the latest user message.
func buildTurnPrompt(state *models.SessionState, clockSummary string, history []models.Message, userQuery string) string {
	if len(history) > historyWindow*2 {
		history = history[len(history)-historyWindow*2:]
	}
	return fmt.Sprintf(userPromptTemplate,
		formatFields(state.CollectedFields()),
		formatFields(state.PendingFields()),
		clockSummary,
		formatHistory(history),
		userQuery)
}
