package quota

import "fmt"

// Action is a free-tier metered action.
type Action string

const (
	ActionJournalCreate Action = "journal_create"
	ActionAISuggestion  Action = "ai_suggestion"
)

// Daily free-tier limits. Premium users bypass the ledger entirely.
const (
	JournalDailyLimit      = 2
	AISuggestionDailyLimit = 3
)

func limitFor(action Action) int {
	switch action {
	case ActionJournalCreate:
		return JournalDailyLimit
	case ActionAISuggestion:
		return AISuggestionDailyLimit
	default:
		return 0
	}
}

func actionLabel(action Action) string {
	switch action {
	case ActionJournalCreate:
		return "journal entries"
	case ActionAISuggestion:
		return "AI suggestions"
	default:
		return string(action)
	}
}

// QuotaExceededError is the user-facing denial. It names the limit that was
// hit; the allowance resets at the next calendar day.
type QuotaExceededError struct {
	Action Action
	Limit  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf(
		"you have reached your free daily limit of %d %s; upgrade to premium for unlimited access, or try again tomorrow",
		e.Limit, actionLabel(e.Action),
	)
}

// Allowed is the pure quota decision: used so far against the limit.
func Allowed(used, limit int) bool {
	return used < limit
}
