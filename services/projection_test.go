package services

import (
	"testing"

	"flashdeck/models"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func waitingGame() *models.Game {
	return &models.Game{
		GameID:     "g-1",
		Code:       "ABCDEF",
		HostUserID: 7,
		Mode:       models.GameModeSingle,
		TeamSize:   2,
		Status:     models.GameStatusWaiting,
	}
}

func TestProjectWaiting(t *testing.T) {
	deck := deckOf(4)
	roster := []models.GameParticipant{
		{ParticipantID: "p1", DisplayName: "alice"},
		{ParticipantID: "p2", DisplayName: "bob"},
	}

	view := Project(waitingGame(), deck, roster, nil)

	require.Equal(t, "g-1", view.GameID)
	require.Equal(t, models.GameStatusWaiting, view.Status)
	require.False(t, view.IsHost)
	require.Nil(t, view.CurrentCard)
	require.Equal(t, 0, view.CardNumber)
	require.Equal(t, 0, view.ProgressPercent)
	require.Equal(t, 4, view.DeckLength)
	require.Equal(t, 2, view.RosterCount)
	require.Nil(t, view.TeamGroups)
}

func TestProjectHostFlag(t *testing.T) {
	game := waitingGame()

	require.True(t, Project(game, nil, nil, uintPtr(7)).IsHost)
	require.False(t, Project(game, nil, nil, uintPtr(8)).IsHost)
	require.False(t, Project(game, nil, nil, nil).IsHost)
}

func TestProjectInProgress(t *testing.T) {
	game := waitingGame()
	game.Status = models.GameStatusInProgress
	game.CurrentCardIndex = intPtr(1)
	deck := deckOf(4)

	view := Project(game, deck, nil, nil)

	require.NotNil(t, view.CurrentCard)
	require.Equal(t, deck[1].ID, view.CurrentCard.ID)
	require.Equal(t, 2, view.CardNumber)
	require.Equal(t, 50, view.ProgressPercent)
}

func TestProjectProgressRounding(t *testing.T) {
	game := waitingGame()
	game.Status = models.GameStatusInProgress
	deck := deckOf(3)

	// 1/3 -> 33, 2/3 -> 67, 3/3 -> 100
	want := []int{33, 67, 100}
	for idx, percent := range want {
		game.CurrentCardIndex = intPtr(idx)
		view := Project(game, deck, nil, nil)
		require.Equal(t, percent, view.ProgressPercent)
		require.Equal(t, idx+1, view.CardNumber)
	}
}

func TestProjectCompleted(t *testing.T) {
	game := waitingGame()
	game.Status = models.GameStatusCompleted
	game.CurrentCardIndex = intPtr(3)
	game.CompletedReason = models.CompletedReasonExhausted
	deck := deckOf(4)

	view := Project(game, deck, nil, nil)

	require.Equal(t, models.GameStatusCompleted, view.Status)
	require.Equal(t, models.CompletedReasonExhausted, view.CompletedReason)
	require.Equal(t, 100, view.ProgressPercent)
	require.NotNil(t, view.CurrentCard)
}

func TestProjectTeamGroups(t *testing.T) {
	game := waitingGame()
	game.Mode = models.GameModeTeams
	roster := []models.GameParticipant{
		{ParticipantID: "p1", DisplayName: "alice", TeamNumber: intPtr(1)},
		{ParticipantID: "p2", DisplayName: "bob", TeamNumber: intPtr(1)},
		{ParticipantID: "p3", DisplayName: "carol", TeamNumber: intPtr(2)},
		{ParticipantID: "p4", DisplayName: "dave"}, // not yet assigned
	}

	view := Project(game, nil, roster, nil)

	require.Len(t, view.TeamGroups, 2)
	require.Len(t, view.TeamGroups[1], 2)
	require.Len(t, view.TeamGroups[2], 1)
	// Unassigned players stay in the roster but out of every group
	require.Equal(t, 4, view.RosterCount)
}

func TestProjectSingleModeHasNoGroups(t *testing.T) {
	roster := []models.GameParticipant{
		{ParticipantID: "p1", DisplayName: "alice", TeamNumber: intPtr(1)},
	}

	view := Project(waitingGame(), nil, roster, nil)
	require.Nil(t, view.TeamGroups)
}
