package journal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/models"
)

func TestCreateRejectsBadInput(t *testing.T) {
	s := &Service{}
	user := &models.User{ID: "u1"}

	_, err := s.Create(context.Background(), user, &CreateRequest{Content: "   "})
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = s.Create(context.Background(), user, &CreateRequest{
		Content: "fine",
		Mood:    models.Mood("ecstatic"),
	})
	require.ErrorIs(t, err, ErrInvalidMood)

	_, err = s.Create(context.Background(), user, &CreateRequest{
		Content: strings.Repeat("a", maxContentLength+1),
	})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrEmptyContent))
}

func TestSuggestRejectsInvalidMood(t *testing.T) {
	s := &Service{}
	_, err := s.Suggest(context.Background(), &models.User{ID: "u1"}, models.Mood("bogus"))
	require.ErrorIs(t, err, ErrInvalidMood)
}

func TestMoodValid(t *testing.T) {
	for _, m := range []models.Mood{models.MoodHappy, models.MoodSad, models.MoodAnxious, models.MoodCalm, models.MoodAngry, models.MoodExcited, models.MoodNeutral} {
		require.True(t, m.Valid(), string(m))
	}
	require.False(t, models.Mood("meh").Valid())
}
