package services

import (
	"errors"
	"sync"
	"time"

	"flashdeck/models"
)

// fakeStore is an in-memory implementation of GameStore, ParticipantStore
// and DeckProvider for exercising the services without a database.
type fakeStore struct {
	mu           sync.Mutex
	nextID       uint
	games        map[string]*models.Game // by public game id
	participants []models.GameParticipant
	decks        map[uint][]models.Flashcard // by set id

	failNext error // injected store failure for the next write
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		games:  make(map[string]*models.Game),
		decks:  make(map[uint][]models.Flashcard),
	}
}

func (f *fakeStore) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeStore) CreateGame(game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	// Mirrors the partial unique index on games(code) for active games
	for _, existing := range f.games {
		if existing.Code == game.Code && existing.Status != models.GameStatusCompleted {
			return errors.New("duplicate key value violates unique constraint \"idx_games_code_active\"")
		}
	}
	game.ID = f.nextID
	f.nextID++
	copied := *game
	f.games[game.GameID] = &copied
	return nil
}

func (f *fakeStore) GetGame(gameID string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (f *fakeStore) GetActiveGameByCode(code string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, game := range f.games {
		if game.Code == code && game.Status != models.GameStatusCompleted {
			copied := *game
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateGame(gameID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	game, ok := f.games[gameID]
	if !ok {
		return errors.New("no rows updated")
	}
	for column, value := range fields {
		switch column {
		case "status":
			game.Status = value.(string)
		case "mode":
			game.Mode = value.(string)
		case "team_size":
			game.TeamSize = value.(int)
		case "current_card_index":
			idx := value.(int)
			game.CurrentCardIndex = &idx
		case "started_at":
			t := value.(time.Time)
			game.StartedAt = &t
		case "completed_at":
			t := value.(time.Time)
			game.CompletedAt = &t
		case "completed_reason":
			game.CompletedReason = value.(string)
		}
	}
	return nil
}

func (f *fakeStore) CodeInUse(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, game := range f.games {
		if game.Code == code && game.Status != models.GameStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateParticipant(p *models.GameParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	p.ID = f.nextID
	f.nextID++
	copied := *p
	copied.Game = nil
	f.participants = append(f.participants, copied)
	return nil
}

func (f *fakeStore) ListParticipants(gameID string) ([]models.GameParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, nil
	}
	var roster []models.GameParticipant
	for _, p := range f.participants {
		if p.GameID == game.ID {
			roster = append(roster, p)
		}
	}
	return roster, nil
}

func (f *fakeStore) CountParticipants(gameID string) (int64, error) {
	roster, err := f.ListParticipants(gameID)
	if err != nil {
		return 0, err
	}
	return int64(len(roster)), nil
}

func (f *fakeStore) SetTeamNumber(participantID string, teamNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.participants {
		if f.participants[i].ParticipantID == participantID {
			team := teamNumber
			f.participants[i].TeamNumber = &team
			return nil
		}
	}
	return errors.New("participant not found")
}

func (f *fakeStore) IncrementScore(participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.participants {
		if f.participants[i].ParticipantID == participantID {
			f.participants[i].Score++
			return nil
		}
	}
	return errors.New("participant not found")
}

func (f *fakeStore) GetDeck(setID uint) ([]models.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decks[setID], nil
}

// recordingNotifier captures every change event in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

type notifyEvent struct {
	gameID string
	scope  string
}

func (n *recordingNotifier) GameChanged(gameID, scope string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{gameID: gameID, scope: scope})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// deckOf builds a deck of n cards for set 1.
func deckOf(n int) []models.Flashcard {
	deck := make([]models.Flashcard, n)
	for i := range deck {
		deck[i] = models.Flashcard{
			ID:         uint(i + 1),
			SetID:      1,
			Term:       "term",
			Definition: "definition",
			Position:   i,
		}
	}
	return deck
}
