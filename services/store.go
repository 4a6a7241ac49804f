// services/store.go - Boundary collaborators for the game session core
package services

import (
	"flashdeck/models"
)

// GameStore is the durable store for game records. A transition is only
// considered committed once the corresponding store call returns nil.
type GameStore interface {
	CreateGame(game *models.Game) error
	GetGame(gameID string) (*models.Game, error)
	// GetActiveGameByCode resolves a join code among games that have not
	// completed. Codes of completed games may be reissued.
	GetActiveGameByCode(code string) (*models.Game, error)
	UpdateGame(gameID string, fields map[string]interface{}) error
	CodeInUse(code string) (bool, error)
}

// ParticipantStore is the durable store for the roster. It only ever
// appends participants; team numbers and scores are the mutable columns.
type ParticipantStore interface {
	CreateParticipant(p *models.GameParticipant) error
	// ListParticipants returns the roster ordered by joined_at ascending,
	// insertion order breaking ties.
	ListParticipants(gameID string) ([]models.GameParticipant, error)
	CountParticipants(gameID string) (int64, error)
	SetTeamNumber(participantID string, teamNumber int) error
	// IncrementScore adds one to a participant's score atomically.
	IncrementScore(participantID string) error
}

// DeckProvider serves the ordered card sequence a game is played over.
// Decks are treated as immutable for the duration of a session.
type DeckProvider interface {
	GetDeck(setID uint) ([]models.Flashcard, error)
}

// Notifier is the realtime fan-out collaborator. Calls are fire-and-forget:
// the core never retries and never fails a transition on a lost notification.
type Notifier interface {
	GameChanged(gameID string, scope string)
}

// Notification scopes, mirroring the tables viewers watch.
const (
	ScopeGame         = "game"
	ScopeParticipants = "participants"
	ScopeResponses    = "responses"
)

// NopNotifier discards notifications. Used before the hub is wired up
// and in tests that do not care about fan-out.
type NopNotifier struct{}

func (NopNotifier) GameChanged(string, string) {}
