// services/participant_service.go - Participant Registry and Team Assignment
package services

import (
	"log"
	"strings"
	"time"

	"flashdeck/models"

	"github.com/google/uuid"
)

// MaxDisplayNameLength matches the join form's input limit.
const MaxDisplayNameLength = 30

// ParticipantService accepts joins while a game is waiting and partitions
// the roster into teams on demand. It never mutates an existing
// participant except for the team number.
type ParticipantService struct {
	games        GameStore
	participants ParticipantStore
	notifier     Notifier
	locks        *SessionLocks
	now          func() time.Time
}

// NewParticipantService creates a participant service. Pass the
// SessionLocks shared with the game service so joins serialize with
// status transitions; nil gets a private registry.
func NewParticipantService(games GameStore, participants ParticipantStore, notifier Notifier, locks *SessionLocks) *ParticipantService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &ParticipantService{
		games:        games,
		participants: participants,
		notifier:     notifier,
		locks:        locks,
		now:          time.Now,
	}
}

// JoinByCode adds a player to the game behind a join code. Joins are
// rejected as soon as the game leaves waiting.
func (s *ParticipantService) JoinByCode(code, displayName string, userID *uint) (*models.GameParticipant, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > MaxDisplayNameLength {
		return nil, ErrInvalidDisplayName
	}

	game, err := s.games.GetActiveGameByCode(NormalizeCode(code))
	if err != nil {
		return nil, wrapPersistence("code lookup", err)
	}
	if game == nil {
		return nil, ErrSessionNotFound
	}

	l := s.locks.Get(game.GameID)
	l.Lock()
	defer l.Unlock()

	// Reload under the lock: a Start committing between the code lookup
	// and here must be visible before the insert.
	game, err = s.games.GetGame(game.GameID)
	if err != nil {
		return nil, wrapPersistence("game load", err)
	}
	if game == nil {
		return nil, ErrSessionNotFound
	}
	if game.Status != models.GameStatusWaiting {
		return nil, ErrSessionAlreadyStarted
	}

	participant := &models.GameParticipant{
		GameID:        game.ID,
		ParticipantID: uuid.New().String(),
		DisplayName:   displayName,
		UserID:        userID,
		JoinedAt:      s.now(),
	}

	if err := s.participants.CreateParticipant(participant); err != nil {
		return nil, wrapPersistence("participant create", err)
	}

	log.Printf("👋 %s joined game %s", displayName, game.GameID)
	s.notifier.GameChanged(game.GameID, ScopeParticipants)

	participant.Game = game
	return participant, nil
}

// List returns the roster in join order.
func (s *ParticipantService) List(gameID string) ([]models.GameParticipant, error) {
	game, err := s.games.GetGame(gameID)
	if err != nil {
		return nil, wrapPersistence("game load", err)
	}
	if game == nil {
		return nil, ErrSessionNotFound
	}

	roster, err := s.participants.ListParticipants(gameID)
	if err != nil {
		return nil, wrapPersistence("roster load", err)
	}
	return roster, nil
}

// AssignTeams recomputes every participant's team from the join-ordered
// roster: teams fill up to the game's team size, in join order. The
// computation is deterministic for a fixed roster; a changed roster
// reshuffles everyone. Returns participant id -> team number.
func (s *ParticipantService) AssignTeams(gameID string, actorID uint) (map[string]int, error) {
	l := s.locks.Get(gameID)
	l.Lock()
	defer l.Unlock()

	game, err := s.games.GetGame(gameID)
	if err != nil {
		return nil, wrapPersistence("game load", err)
	}
	if game == nil {
		return nil, ErrSessionNotFound
	}
	if game.HostUserID != actorID {
		return nil, ErrNotHost
	}
	if game.Mode != models.GameModeTeams {
		return nil, ErrInvalidMode
	}

	roster, err := s.participants.ListParticipants(gameID)
	if err != nil {
		return nil, wrapPersistence("roster load", err)
	}

	teamSize := game.TeamSize
	if teamSize <= 0 {
		teamSize = models.DefaultTeamSize
	}

	assignment := make(map[string]int, len(roster))
	for i, p := range roster {
		team := i/teamSize + 1
		if err := s.participants.SetTeamNumber(p.ParticipantID, team); err != nil {
			return nil, wrapPersistence("team update", err)
		}
		assignment[p.ParticipantID] = team
	}

	log.Printf("👥 Game %s: %d participants split into teams of %d", gameID, len(roster), teamSize)
	s.notifier.GameChanged(gameID, ScopeParticipants)
	return assignment, nil
}

// AwardPoint bumps a participant's score by one. The increment happens
// in the store so concurrent awards never lose each other.
func (s *ParticipantService) AwardPoint(participantID string) error {
	if err := s.participants.IncrementScore(participantID); err != nil {
		return wrapPersistence("score update", err)
	}
	return nil
}
