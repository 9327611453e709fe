package quota

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	require.True(t, Allowed(0, JournalDailyLimit))
	require.True(t, Allowed(1, JournalDailyLimit))
	require.False(t, Allowed(2, JournalDailyLimit))
	require.False(t, Allowed(5, JournalDailyLimit))

	require.True(t, Allowed(2, AISuggestionDailyLimit))
	require.False(t, Allowed(3, AISuggestionDailyLimit))
}

func TestLimitFor(t *testing.T) {
	require.Equal(t, 2, limitFor(ActionJournalCreate))
	require.Equal(t, 3, limitFor(ActionAISuggestion))
	require.Equal(t, 0, limitFor(Action("unknown")))
}

func TestQuotaExceededErrorMessage(t *testing.T) {
	err := &QuotaExceededError{Action: ActionJournalCreate, Limit: JournalDailyLimit}
	require.Equal(t,
		"you have reached your free daily limit of 2 journal entries; upgrade to premium for unlimited access, or try again tomorrow",
		err.Error())

	err = &QuotaExceededError{Action: ActionAISuggestion, Limit: AISuggestionDailyLimit}
	require.Contains(t, err.Error(), "3 AI suggestions")

	var qe *QuotaExceededError
	require.True(t, errors.As(error(err), &qe))
	require.Equal(t, ActionAISuggestion, qe.Action)
}

func TestRemaining(t *testing.T) {
	require.Equal(t, 2, remaining(0, 2))
	require.Equal(t, 1, remaining(1, 2))
	require.Equal(t, 0, remaining(2, 2))
	require.Equal(t, 0, remaining(7, 2))
}

func TestCounterColumn(t *testing.T) {
	col, err := counterColumn(ActionJournalCreate)
	require.NoError(t, err)
	require.Equal(t, "journals_created", col)

	col, err = counterColumn(ActionAISuggestion)
	require.NoError(t, err)
	require.Equal(t, "ai_suggestions_used", col)

	_, err = counterColumn(Action("bogus"))
	require.Error(t, err)
}
