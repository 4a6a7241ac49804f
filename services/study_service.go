// services/study_service.go - Study Progress Tracking
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"flashdeck/models"

	"gorm.io/gorm"
)

// StudyService tracks per-user memory of individual cards and the
// results of local study games.
type StudyService struct {
	db *gorm.DB
}

func NewStudyService(db *gorm.DB) *StudyService {
	return &StudyService{db: db}
}

// ApplyReview folds one review into a progress record: counters always
// move, mastery climbs on a correct answer and slips on a miss, clamped
// to [MasteryMin, MasteryMax].
func ApplyReview(p *models.StudyProgress, correct bool, now time.Time) {
	p.TimesReviewed++
	if correct {
		p.TimesCorrect++
		if p.MasteryLevel < models.MasteryMax {
			p.MasteryLevel++
		}
	} else if p.MasteryLevel > models.MasteryMin {
		p.MasteryLevel--
	}
	p.LastStudiedAt = &now
}

// SortDue orders progress records weakest-first: lowest mastery, then
// least recently studied, never-studied cards ahead of studied ones.
func SortDue(progress []models.StudyProgress) {
	sort.SliceStable(progress, func(i, j int) bool {
		a, b := progress[i], progress[j]
		if a.MasteryLevel != b.MasteryLevel {
			return a.MasteryLevel < b.MasteryLevel
		}
		if a.LastStudiedAt == nil {
			return b.LastStudiedAt != nil
		}
		if b.LastStudiedAt == nil {
			return false
		}
		return a.LastStudiedAt.Before(*b.LastStudiedAt)
	})
}

// RecordReview upserts the progress row for (user, card) and applies one review.
func (s *StudyService) RecordReview(userID, flashcardID uint, correct bool) (*models.StudyProgress, error) {
	var progress models.StudyProgress
	err := s.db.Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.StudyProgress{UserID: userID, FlashcardID: flashcardID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	ApplyReview(&progress, correct, time.Now())

	if err := s.db.Save(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return &progress, nil
}

// SetStarred toggles the star flag, creating the progress row if needed.
func (s *StudyService) SetStarred(userID, flashcardID uint, starred bool) (*models.StudyProgress, error) {
	var progress models.StudyProgress
	err := s.db.Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.StudyProgress{UserID: userID, FlashcardID: flashcardID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	progress.IsStarred = starred
	if err := s.db.Save(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return &progress, nil
}

// ListProgress returns a user's progress for every card of a set.
func (s *StudyService) ListProgress(userID, setID uint) ([]models.StudyProgress, error) {
	var progress []models.StudyProgress
	err := s.db.Preload("Flashcard").
		Where("user_id = ? AND flashcard_id IN (SELECT id FROM flashcards WHERE set_id = ?)", userID, setID).
		Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return progress, nil
}

// DueCards returns a set's cards weakest-first for a learn session.
// Cards without a progress row sort ahead of everything else.
func (s *StudyService) DueCards(userID, setID uint) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	if err := s.db.Where("set_id = ?", setID).Order("position ASC, id ASC").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	progress, err := s.ListProgress(userID, setID)
	if err != nil {
		return nil, err
	}

	byCard := make(map[uint]models.StudyProgress, len(progress))
	for _, p := range progress {
		byCard[p.FlashcardID] = p
	}

	// Wrap every card in a progress record (zero value for unseen cards)
	// so the single comparator orders the whole deck.
	wrapped := make([]models.StudyProgress, 0, len(cards))
	for _, c := range cards {
		p, ok := byCard[c.ID]
		if !ok {
			p = models.StudyProgress{UserID: userID, FlashcardID: c.ID}
		}
		card := c
		p.Flashcard = &card
		wrapped = append(wrapped, p)
	}
	SortDue(wrapped)

	ordered := make([]models.Flashcard, 0, len(wrapped))
	for _, p := range wrapped {
		ordered = append(ordered, *p.Flashcard)
	}
	return ordered, nil
}

// Heatmap aggregates review activity per day (YYYY-MM-DD) for a user.
func (s *StudyService) Heatmap(userID uint) (map[string]int, error) {
	var progress []models.StudyProgress
	err := s.db.Where("user_id = ? AND last_studied_at IS NOT NULL", userID).Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load heatmap data: %w", err)
	}

	days := make(map[string]int)
	for _, p := range progress {
		day := p.LastStudiedAt.Format("2006-01-02")
		reviews := p.TimesReviewed
		if reviews == 0 {
			reviews = 1
		}
		days[day] += reviews
	}
	return days, nil
}

// RecordMatchingResult stores a finished matching-game run.
func (s *StudyService) RecordMatchingResult(userID, setID uint, completionTimeMs int) (*models.MatchingGameResult, error) {
	result := &models.MatchingGameResult{
		UserID:         userID,
		FlashcardSetID: setID,
		CompletionTime: completionTimeMs,
	}
	if err := s.db.Create(result).Error; err != nil {
		return nil, fmt.Errorf("failed to save matching result: %w", err)
	}
	return result, nil
}

// BestMatchingResult returns a user's fastest run for a set, nil if none.
func (s *StudyService) BestMatchingResult(userID, setID uint) (*models.MatchingGameResult, error) {
	var result models.MatchingGameResult
	err := s.db.Where("user_id = ? AND flashcard_set_id = ?", userID, setID).
		Order("completion_time_ms ASC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load best result: %w", err)
	}
	return &result, nil
}
