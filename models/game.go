// models/game.go - Live Game Session Models
package models

import (
	"time"
)

// Game status values. Transitions are one-way:
// waiting -> in_progress -> completed.
const (
	GameStatusWaiting    = "waiting"
	GameStatusInProgress = "in_progress"
	GameStatusCompleted  = "completed"
)

// Game modes.
const (
	GameModeSingle = "single"
	GameModeTeams  = "teams"
)

// Reasons a game reached completed.
const (
	CompletedReasonExhausted = "exhausted"
	CompletedReasonAborted   = "aborted"
)

// DefaultTeamSize is used when the host switches to teams mode
// without picking a size.
const DefaultTeamSize = 4

// Game represents a host-driven live flashcard game session
type Game struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	GameID         string `json:"game_id" gorm:"uniqueIndex;not null;size:36"` // public UUID
	Code           string `json:"code" gorm:"index;not null;size:6"`           // join code, unique among active games
	FlashcardSetID uint   `json:"flashcard_set_id" gorm:"not null;index"`
	HostUserID     uint   `json:"host_user_id" gorm:"not null;index"`
	Mode           string `json:"mode" gorm:"default:'single';size:10"`
	TeamSize       int    `json:"team_size" gorm:"default:4"`

	// Game state
	Status           string `json:"status" gorm:"default:'waiting';size:20;index"`
	CurrentCardIndex *int   `json:"current_card_index"` // nil until the game starts
	CompletedReason  string `json:"completed_reason,omitempty" gorm:"size:10"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships (loaded explicitly, not enforced at DB level on parent)
	Participants []GameParticipant `json:"participants,omitempty" gorm:"-"`
}

// GameParticipant represents one player in a game session
type GameParticipant struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	GameID uint  `json:"game_id" gorm:"not null;index"`
	Game   *Game `json:"game,omitempty" gorm:"-"`

	ParticipantID string `json:"participant_id" gorm:"uniqueIndex;not null;size:36"` // public UUID
	DisplayName   string `json:"display_name" gorm:"not null;size:30"`
	UserID        *uint  `json:"user_id" gorm:"index"` // nil for anonymous players
	User          *User  `json:"user,omitempty" gorm:"-"`

	TeamNumber *int `json:"team_number"` // nil until team assignment runs
	Score      int  `json:"score" gorm:"default:0"`

	JoinedAt  time.Time `json:"joined_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameResponse records one participant's answer to one card
type GameResponse struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	GameID        uint   `json:"game_id" gorm:"not null;index"`
	ParticipantID uint   `json:"participant_id" gorm:"not null;index"`
	FlashcardID   uint   `json:"flashcard_id" gorm:"not null;index"`
	IsCorrect     bool   `json:"is_correct"`
	ResponseTime  *int   `json:"response_time_ms"` // milliseconds, nil if untimed
	AnsweredAt    time.Time `json:"answered_at" gorm:"index;not null"`
}

// TableName methods for custom table names
func (Game) TableName() string {
	return "games"
}

func (GameParticipant) TableName() string {
	return "game_participants"
}

func (GameResponse) TableName() string {
	return "game_responses"
}

// Helper methods

// IsActive checks if the game still accepts traffic
func (g *Game) IsActive() bool {
	return g.Status == GameStatusWaiting || g.Status == GameStatusInProgress
}

// Duration returns how long the game lasted
func (g *Game) Duration() time.Duration {
	if g.StartedAt == nil || g.CompletedAt == nil {
		return 0
	}
	return g.CompletedAt.Sub(*g.StartedAt)
}
