// services/game_service.go - Game Session State Machine
package services

import (
	"log"
	"time"

	"flashdeck/models"

	"github.com/google/uuid"
)

// GameService owns every mutation of a game's status, card index and
// lifecycle timestamps. All mutating calls for the same game are
// serialized through the shared per-game lock, so a double-clicked
// Advance can never increment twice. Writes commit to the store before
// anything is broadcast; a failed write leaves the game untouched.
type GameService struct {
	games        GameStore
	participants ParticipantStore
	decks        DeckProvider
	notifier     Notifier
	locks        *SessionLocks
	now          func() time.Time
}

// NewGameService creates a game service over the given collaborators.
// Pass the same SessionLocks to every service touching the same games;
// nil gets a private registry.
func NewGameService(games GameStore, participants ParticipantStore, decks DeckProvider, notifier Notifier, locks *SessionLocks) *GameService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &GameService{
		games:        games,
		participants: participants,
		decks:        decks,
		notifier:     notifier,
		locks:        locks,
		now:          time.Now,
	}
}

// CreateGame creates a waiting game over the given set with a fresh join code.
func (s *GameService) CreateGame(hostUserID uint, setID uint) (*models.Game, error) {
	deck, err := s.decks.GetDeck(setID)
	if err != nil {
		return nil, wrapPersistence("deck load", err)
	}
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}

	code, err := uniqueCode(s.games)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		GameID:         uuid.New().String(),
		Code:           code,
		FlashcardSetID: setID,
		HostUserID:     hostUserID,
		Mode:           models.GameModeSingle,
		TeamSize:       models.DefaultTeamSize,
		Status:         models.GameStatusWaiting,
	}

	if err := s.games.CreateGame(game); err != nil {
		return nil, wrapPersistence("game create", err)
	}

	log.Printf("🎮 Game created: id=%s code=%s set=%d host=%d", game.GameID, game.Code, setID, hostUserID)
	return game, nil
}

// GetGame loads a game by its public id.
func (s *GameService) GetGame(gameID string) (*models.Game, error) {
	return s.loadGame(gameID)
}

// SetMode switches the game between single and teams while waiting.
// A non-positive teamSize keeps the current one.
func (s *GameService) SetMode(gameID string, actorID uint, mode string, teamSize int) (*models.Game, error) {
	if mode != models.GameModeSingle && mode != models.GameModeTeams {
		return nil, ErrInvalidMode
	}

	l := s.locks.Get(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.HostUserID != actorID {
		return nil, ErrNotHost
	}
	if game.Status != models.GameStatusWaiting {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"mode": mode}
	if teamSize > 0 {
		fields["team_size"] = teamSize
	}

	if err := s.games.UpdateGame(gameID, fields); err != nil {
		return nil, wrapPersistence("mode update", err)
	}

	game.Mode = mode
	if teamSize > 0 {
		game.TeamSize = teamSize
	}

	s.notifier.GameChanged(gameID, ScopeGame)
	return game, nil
}

// Start moves a waiting game to in_progress at card 0. It refuses to
// start an empty lobby so the host is not presenting to nobody.
func (s *GameService) Start(gameID string, actorID uint) (*models.Game, error) {
	l := s.locks.Get(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.HostUserID != actorID {
		return nil, ErrNotHost
	}
	if game.Status != models.GameStatusWaiting {
		return nil, ErrInvalidTransition
	}

	count, err := s.participants.CountParticipants(gameID)
	if err != nil {
		return nil, wrapPersistence("roster count", err)
	}
	if count == 0 {
		return nil, ErrEmptyRoster
	}

	startedAt := s.now()
	zero := 0
	if err := s.games.UpdateGame(gameID, map[string]interface{}{
		"status":             models.GameStatusInProgress,
		"current_card_index": zero,
		"started_at":         startedAt,
	}); err != nil {
		return nil, wrapPersistence("game start", err)
	}

	game.Status = models.GameStatusInProgress
	game.CurrentCardIndex = &zero
	game.StartedAt = &startedAt

	log.Printf("▶️  Game %s started with %d participants", gameID, count)
	s.notifier.GameChanged(gameID, ScopeGame)
	return game, nil
}

// Advance moves the card pointer forward, completing the game once the
// deck is exhausted. The pointer never leaves [0, deckLen).
func (s *GameService) Advance(gameID string, actorID uint) (*models.Game, error) {
	l := s.locks.Get(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.HostUserID != actorID {
		return nil, ErrNotHost
	}
	if game.Status != models.GameStatusInProgress || game.CurrentCardIndex == nil {
		return nil, ErrInvalidTransition
	}

	deck, err := s.decks.GetDeck(game.FlashcardSetID)
	if err != nil {
		return nil, wrapPersistence("deck load", err)
	}

	next := *game.CurrentCardIndex + 1
	if next < len(deck) {
		if err := s.games.UpdateGame(gameID, map[string]interface{}{
			"current_card_index": next,
		}); err != nil {
			return nil, wrapPersistence("card advance", err)
		}
		game.CurrentCardIndex = &next
		s.notifier.GameChanged(gameID, ScopeGame)
		return game, nil
	}

	// Deck exhausted: complete and leave the index on the last card.
	return s.complete(game, models.CompletedReasonExhausted)
}

// Abort ends the game immediately from waiting or in_progress.
func (s *GameService) Abort(gameID string, actorID uint) (*models.Game, error) {
	l := s.locks.Get(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.HostUserID != actorID {
		return nil, ErrNotHost
	}
	if game.Status == models.GameStatusCompleted {
		return nil, ErrInvalidTransition
	}

	return s.complete(game, models.CompletedReasonAborted)
}

// complete commits the terminal transition. Caller holds the game lock.
func (s *GameService) complete(game *models.Game, reason string) (*models.Game, error) {
	completedAt := s.now()
	if err := s.games.UpdateGame(game.GameID, map[string]interface{}{
		"status":           models.GameStatusCompleted,
		"completed_at":     completedAt,
		"completed_reason": reason,
	}); err != nil {
		return nil, wrapPersistence("game complete", err)
	}

	game.Status = models.GameStatusCompleted
	game.CompletedAt = &completedAt
	game.CompletedReason = reason

	log.Printf("🏁 Game %s completed (%s)", game.GameID, reason)
	s.notifier.GameChanged(game.GameID, ScopeGame)
	return game, nil
}

func (s *GameService) loadGame(gameID string) (*models.Game, error) {
	game, err := s.games.GetGame(gameID)
	if err != nil {
		return nil, wrapPersistence("game load", err)
	}
	if game == nil {
		return nil, ErrSessionNotFound
	}
	return game, nil
}
