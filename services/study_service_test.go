package services

import (
	"sync"
	"testing"
	"time"

	"flashdeck/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestApplyReview(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := models.StudyProgress{}

	ApplyReview(&p, true, now)
	require.Equal(t, 1, p.TimesReviewed)
	require.Equal(t, 1, p.TimesCorrect)
	require.Equal(t, 1, p.MasteryLevel)
	require.Equal(t, now, *p.LastStudiedAt)

	ApplyReview(&p, false, now)
	require.Equal(t, 2, p.TimesReviewed)
	require.Equal(t, 1, p.TimesCorrect)
	require.Equal(t, 0, p.MasteryLevel)
}

func TestApplyReviewClampsMastery(t *testing.T) {
	now := time.Now()

	// Mastery never drops below the floor
	p := models.StudyProgress{MasteryLevel: models.MasteryMin}
	ApplyReview(&p, false, now)
	require.Equal(t, models.MasteryMin, p.MasteryLevel)

	// Mastery never climbs above the cap
	p = models.StudyProgress{MasteryLevel: models.MasteryMax}
	ApplyReview(&p, true, now)
	require.Equal(t, models.MasteryMax, p.MasteryLevel)
	require.Equal(t, 1, p.TimesCorrect)
}

func TestMasteryBand(t *testing.T) {
	p := models.StudyProgress{MasteryLevel: models.MasteryLearned - 1}
	require.False(t, p.IsMastered())

	p.MasteryLevel = models.MasteryLearned
	require.True(t, p.IsMastered())
}

func TestAccuracy(t *testing.T) {
	p := models.StudyProgress{}
	require.Equal(t, 0.0, p.Accuracy())

	p.TimesReviewed = 4
	p.TimesCorrect = 3
	require.InDelta(t, 75.0, p.Accuracy(), 0.001)
}

func TestMatchingResultColumnMatchesQueries(t *testing.T) {
	// BestMatchingResult orders by completion_time_ms; the mapped column
	// must carry exactly that name.
	s, err := schema.Parse(&models.MatchingGameResult{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := s.LookUpField("CompletionTime")
	require.NotNil(t, field)
	require.Equal(t, "completion_time_ms", field.DBName)
}

func TestSortDue(t *testing.T) {
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	progress := []models.StudyProgress{
		{FlashcardID: 1, MasteryLevel: 3, LastStudiedAt: &recent},
		{FlashcardID: 2, MasteryLevel: 0, LastStudiedAt: &recent},
		{FlashcardID: 3, MasteryLevel: 0},                      // never studied
		{FlashcardID: 4, MasteryLevel: 0, LastStudiedAt: &old}, // weakest studied
		{FlashcardID: 5, MasteryLevel: 5, LastStudiedAt: &old},
	}

	SortDue(progress)

	// Never-studied first within the lowest band, then stalest, then by
	// mastery ascending.
	got := make([]uint, len(progress))
	for i, p := range progress {
		got[i] = p.FlashcardID
	}
	require.Equal(t, []uint{3, 4, 2, 1, 5}, got)
}

func TestSortDueStable(t *testing.T) {
	progress := []models.StudyProgress{
		{FlashcardID: 1, MasteryLevel: 2},
		{FlashcardID: 2, MasteryLevel: 2},
		{FlashcardID: 3, MasteryLevel: 2},
	}

	SortDue(progress)

	// Equal keys keep their original order
	require.Equal(t, uint(1), progress[0].FlashcardID)
	require.Equal(t, uint(2), progress[1].FlashcardID)
	require.Equal(t, uint(3), progress[2].FlashcardID)
}
