// models/flashcard.go - Flashcard Set and Study Tracking Models
package models

import (
	"time"
)

// FlashcardSet represents an ordered collection of flashcards owned by a user
type FlashcardSet struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"type:text"`
	IsPublic    bool   `json:"is_public" gorm:"default:false"`
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	User        *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Flashcards []Flashcard `json:"flashcards,omitempty" gorm:"foreignKey:SetID"`
}

// Flashcard is a single term/definition pair within a set
type Flashcard struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SetID      uint      `json:"set_id" gorm:"not null;index"`
	Term       string    `json:"term" gorm:"not null;type:text"`
	Definition string    `json:"definition" gorm:"not null;type:text"`
	Position   int       `json:"position" gorm:"default:0;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Mastery level bounds for study progress.
const (
	MasteryMin      = 0
	MasteryMax      = 5
	MasteryLearned  = 4 // at or above counts as mastered
)

// StudyProgress tracks one user's memory of one flashcard
type StudyProgress struct {
	ID          uint  `json:"id" gorm:"primaryKey"`
	UserID      uint  `json:"user_id" gorm:"not null;index:idx_progress_user_card,unique"`
	FlashcardID uint  `json:"flashcard_id" gorm:"not null;index:idx_progress_user_card,unique"`
	Flashcard   *Flashcard `json:"flashcard,omitempty" gorm:"foreignKey:FlashcardID"`

	MasteryLevel  int  `json:"mastery_level" gorm:"default:0"`
	TimesReviewed int  `json:"times_reviewed" gorm:"default:0"`
	TimesCorrect  int  `json:"times_correct" gorm:"default:0"`
	IsStarred     bool `json:"is_starred" gorm:"default:false"`

	LastStudiedAt *time.Time `json:"last_studied_at" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MatchingGameResult stores a finished matching-game run for a set
type MatchingGameResult struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	FlashcardSetID uint      `json:"flashcard_set_id" gorm:"not null;index"`
	CompletionTime int       `json:"completion_time_ms" gorm:"column:completion_time_ms;not null"` // milliseconds
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// TableName methods for custom table names
func (FlashcardSet) TableName() string {
	return "flashcard_sets"
}

func (Flashcard) TableName() string {
	return "flashcards"
}

func (StudyProgress) TableName() string {
	return "study_progress"
}

func (MatchingGameResult) TableName() string {
	return "matching_game_results"
}

// IsMastered reports whether this card has reached the mastered band
func (p *StudyProgress) IsMastered() bool {
	return p.MasteryLevel >= MasteryLearned
}

// Accuracy returns the percentage of correct reviews
func (p *StudyProgress) Accuracy() float64 {
	if p.TimesReviewed == 0 {
		return 0
	}
	return float64(p.TimesCorrect) / float64(p.TimesReviewed) * 100
}
