package services

import (
	"strings"
	"sync"
	"testing"

	"flashdeck/models"

	"github.com/stretchr/testify/require"
)

func newTestParticipantService(deckSize int) (*ParticipantService, *GameService, *fakeStore, *recordingNotifier) {
	store := newFakeStore()
	store.decks[1] = deckOf(deckSize)
	notifier := &recordingNotifier{}
	locks := NewSessionLocks()
	games := NewGameService(store, store, store, notifier, locks)
	participants := NewParticipantService(store, store, notifier, locks)
	return participants, games, store, notifier
}

func TestJoinByCode(t *testing.T) {
	participants, games, _, notifier := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)

	before := notifier.count()
	p, err := participants.JoinByCode(game.Code, "alice", nil)
	require.NoError(t, err)
	require.Equal(t, "alice", p.DisplayName)
	require.NotEmpty(t, p.ParticipantID)
	require.Nil(t, p.UserID)
	require.Nil(t, p.TeamNumber)
	require.Equal(t, game.ID, p.GameID)

	// The join itself was broadcast with participant scope
	require.Equal(t, before+1, notifier.count())
	last := notifier.events[len(notifier.events)-1]
	require.Equal(t, ScopeParticipants, last.scope)
}

func TestJoinByCodeCaseInsensitive(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)

	_, err = participants.JoinByCode("  "+strings.ToLower(game.Code)+" ", "alice", nil)
	require.NoError(t, err)
}

func TestJoinUnknownCode(t *testing.T) {
	participants, _, _, _ := newTestParticipantService(3)

	_, err := participants.JoinByCode("ZZZZZZ", "alice", nil)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestJoinRejectedAfterStart(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = participants.JoinByCode(game.Code, "alice", nil)
	require.NoError(t, err)

	_, err = games.Start(game.GameID, 7)
	require.NoError(t, err)

	_, err = participants.JoinByCode(game.Code, "bob", nil)
	require.ErrorIs(t, err, ErrSessionAlreadyStarted)
}

func TestJoinDisplayNameValidation(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)

	_, err = participants.JoinByCode(game.Code, "", nil)
	require.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = participants.JoinByCode(game.Code, "   ", nil)
	require.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = participants.JoinByCode(game.Code, strings.Repeat("x", MaxDisplayNameLength+1), nil)
	require.ErrorIs(t, err, ErrInvalidDisplayName)

	// Exactly at the limit is fine, and surrounding spaces don't count
	_, err = participants.JoinByCode(game.Code, "  "+strings.Repeat("x", MaxDisplayNameLength)+"  ", nil)
	require.NoError(t, err)
}

func TestListJoinOrder(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)

	names := []string{"alice", "bob", "carol"}
	for _, name := range names {
		_, err := participants.JoinByCode(game.Code, name, nil)
		require.NoError(t, err)
	}

	roster, err := participants.List(game.GameID)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	for i, name := range names {
		require.Equal(t, name, roster[i].DisplayName)
	}
}

func TestAssignTeams(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = games.SetMode(game.GameID, 7, models.GameModeTeams, 2)
	require.NoError(t, err)

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		_, err := participants.JoinByCode(game.Code, name, nil)
		require.NoError(t, err)
	}

	assignment, err := participants.AssignTeams(game.GameID, 7)
	require.NoError(t, err)
	require.Len(t, assignment, 5)

	// Join order fills teams of two: a,b -> 1; c,d -> 2; e -> 3
	roster, err := participants.List(game.GameID)
	require.NoError(t, err)
	wantTeams := []int{1, 1, 2, 2, 3}
	for i, p := range roster {
		require.NotNil(t, p.TeamNumber)
		require.Equal(t, wantTeams[i], *p.TeamNumber)
		require.Equal(t, wantTeams[i], assignment[p.ParticipantID])
	}
}

func TestAssignTeamsIdempotentForFixedRoster(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = games.SetMode(game.GameID, 7, models.GameModeTeams, 2)
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		_, err := participants.JoinByCode(game.Code, name, nil)
		require.NoError(t, err)
	}

	first, err := participants.AssignTeams(game.GameID, 7)
	require.NoError(t, err)
	second, err := participants.AssignTeams(game.GameID, 7)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAssignTeamsReshufflesAfterNewJoin(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = games.SetMode(game.GameID, 7, models.GameModeTeams, 1)
	require.NoError(t, err)

	_, err = participants.JoinByCode(game.Code, "a", nil)
	require.NoError(t, err)
	_, err = participants.AssignTeams(game.GameID, 7)
	require.NoError(t, err)

	_, err = participants.JoinByCode(game.Code, "b", nil)
	require.NoError(t, err)

	assignment, err := participants.AssignTeams(game.GameID, 7)
	require.NoError(t, err)
	require.Len(t, assignment, 2)

	roster, err := participants.List(game.GameID)
	require.NoError(t, err)
	require.Equal(t, 1, *roster[0].TeamNumber)
	require.Equal(t, 2, *roster[1].TeamNumber)
}

func TestAssignTeamsRequiresTeamsMode(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = participants.JoinByCode(game.Code, "a", nil)
	require.NoError(t, err)

	_, err = participants.AssignTeams(game.GameID, 7)
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestAssignTeamsRequiresHost(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = games.SetMode(game.GameID, 7, models.GameModeTeams, 2)
	require.NoError(t, err)

	_, err = participants.AssignTeams(game.GameID, 8)
	require.ErrorIs(t, err, ErrNotHost)
}

// staleCodeStore pins the code lookup to a stale snapshot while
// delegating everything else, mimicking a join that read the game just
// before a racing start committed.
type staleCodeStore struct {
	GameStore
	stale *models.Game
}

func (s *staleCodeStore) GetActiveGameByCode(code string) (*models.Game, error) {
	copied := *s.stale
	return &copied, nil
}

func TestJoinRacingStartRejected(t *testing.T) {
	participants, games, store, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = participants.JoinByCode(game.Code, "alice", nil)
	require.NoError(t, err)

	snapshot := *game // still waiting

	_, err = games.Start(game.GameID, 7)
	require.NoError(t, err)

	// The racing join saw a waiting game at lookup time; the re-check
	// under the game lock must still reject it.
	racing := NewParticipantService(&staleCodeStore{GameStore: store, stale: &snapshot}, store, nil, nil)
	_, err = racing.JoinByCode(game.Code, "bob", nil)
	require.ErrorIs(t, err, ErrSessionAlreadyStarted)

	roster, err := participants.List(game.GameID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
}

func TestAwardPointConcurrent(t *testing.T) {
	participants, games, _, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	p, err := participants.JoinByCode(game.Code, "alice", nil)
	require.NoError(t, err)

	const points = 25
	var wg sync.WaitGroup
	errs := make(chan error, points)
	for i := 0; i < points; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- participants.AwardPoint(p.ParticipantID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	roster, err := participants.List(game.GameID)
	require.NoError(t, err)
	require.Equal(t, points, roster[0].Score)
}

func TestAwardPointUnknownParticipant(t *testing.T) {
	participants, _, _, _ := newTestParticipantService(3)

	err := participants.AwardPoint("missing")
	require.Error(t, err)
	require.True(t, IsPersistenceFailure(err))
}

func TestCodeReuseAfterCompletion(t *testing.T) {
	participants, games, store, _ := newTestParticipantService(3)

	game, err := games.CreateGame(7, 1)
	require.NoError(t, err)
	_, err = games.Abort(game.GameID, 7)
	require.NoError(t, err)

	// The completed game no longer answers to its code
	_, err = participants.JoinByCode(game.Code, "late", nil)
	require.ErrorIs(t, err, ErrSessionNotFound)

	inUse, err := store.CodeInUse(game.Code)
	require.NoError(t, err)
	require.False(t, inUse)
}
