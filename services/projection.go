// services/projection.go - Session View Projection
package services

import (
	"math"

	"flashdeck/models"
)

// SessionView is the read-only view a single viewer renders. It is
// derived entirely from a game snapshot plus its deck and roster, so it
// is safe to recompute on every change notification.
type SessionView struct {
	GameID          string                         `json:"game_id"`
	Code            string                         `json:"code"`
	Status          string                         `json:"status"`
	Mode            string                         `json:"mode"`
	IsHost          bool                           `json:"is_host"`
	CurrentCard     *models.Flashcard              `json:"current_card,omitempty"`
	CardNumber      int                            `json:"card_number"` // 1-based, 0 while waiting
	DeckLength      int                            `json:"deck_length"`
	ProgressPercent int                            `json:"progress_percent"`
	RosterCount     int                            `json:"roster_count"`
	Participants    []models.GameParticipant       `json:"participants"`
	TeamGroups      map[int][]models.GameParticipant `json:"team_groups,omitempty"`
	CompletedReason string                         `json:"completed_reason,omitempty"`
}

// Project builds the view of a game for one viewer. Pure function: no
// store calls, no side effects.
func Project(game *models.Game, deck []models.Flashcard, roster []models.GameParticipant, viewerID *uint) SessionView {
	view := SessionView{
		GameID:          game.GameID,
		Code:            game.Code,
		Status:          game.Status,
		Mode:            game.Mode,
		DeckLength:      len(deck),
		RosterCount:     len(roster),
		Participants:    roster,
		CompletedReason: game.CompletedReason,
	}

	if viewerID != nil && *viewerID == game.HostUserID {
		view.IsHost = true
	}

	if game.Status != models.GameStatusWaiting && game.CurrentCardIndex != nil {
		idx := *game.CurrentCardIndex
		if idx >= 0 && idx < len(deck) {
			card := deck[idx]
			view.CurrentCard = &card
		}
		view.CardNumber = idx + 1
		if len(deck) > 0 {
			view.ProgressPercent = int(math.Round(float64(idx+1) / float64(len(deck)) * 100))
		}
	}

	if game.Mode == models.GameModeTeams {
		groups := make(map[int][]models.GameParticipant)
		for _, p := range roster {
			if p.TeamNumber == nil {
				continue // unassigned players stay in the roster but out of groups
			}
			groups[*p.TeamNumber] = append(groups[*p.TeamNumber], p)
		}
		view.TeamGroups = groups
	}

	return view
}
