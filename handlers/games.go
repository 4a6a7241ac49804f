// handlers/games.go - Live Game Session API
package handlers

import (
	"errors"
	"log"
	"time"

	"flashdeck/database"
	"flashdeck/middleware"
	"flashdeck/models"
	"flashdeck/services"

	"github.com/gofiber/fiber/v2"
)

var (
	gameService        *services.GameService
	participantService *services.ParticipantService
	deckProvider       services.DeckProvider
	hubNotifier        *HubNotifier
)

// InitGameHandlers wires the game services over the live database and
// the WebSocket hub. Must run after database.InitDB.
func InitGameHandlers() {
	db := database.GetDB()
	games := services.NewGormGameStore(db)
	participants := services.NewGormParticipantStore(db)
	decks := services.NewGormDeckProvider(db)
	hubNotifier = NewHubNotifier()
	deckProvider = decks

	// Both services share one lock registry so joins serialize with
	// status transitions on the same game.
	locks := services.NewSessionLocks()
	gameService = services.NewGameService(games, participants, decks, hubNotifier, locks)
	participantService = services.NewParticipantService(games, participants, hubNotifier, locks)

	log.Println("✅ Game handlers initialized")
}

// statusForError maps service errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionAlreadyStarted),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrEmptyRoster),
		errors.Is(err, services.ErrEmptyDeck):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidDisplayName):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotHost):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func gameError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ Game operation failed: %v", err)
		msg = "Something went wrong, please try again"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

type CreateGameRequest struct {
	SetID uint `json:"set_id"`
}

// CreateGame opens a waiting lobby over one of the caller's sets.
func CreateGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req CreateGameRequest
	if err := c.BodyParser(&req); err != nil || req.SetID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "set_id is required"})
	}

	// The set must exist and be visible to the host
	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, req.SetID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Flashcard set not found"})
	}
	if set.UserID != userID && !set.IsPublic {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You don't have access to this set"})
	}

	game, err := gameService.CreateGame(userID, req.SetID)
	if err != nil {
		return gameError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

type JoinGameRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// JoinGame adds a player to a waiting lobby by its join code. Works for
// both logged-in users and anonymous players.
func JoinGame(c *fiber.Ctx) error {
	var req JoinGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	participant, err := participantService.JoinByCode(req.Code, req.DisplayName, middleware.OptionalUserID(c))
	if err != nil {
		return gameError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":     true,
		"participant": participant,
		"game":        participant.Game,
	})
}

// GetGame returns one game by its public id.
func GetGame(c *fiber.Ctx) error {
	game, err := gameService.GetGame(c.Params("id"))
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

// MyGames lists the caller's hosted games, newest first.
func MyGames(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	var games []models.Game
	if err := db.Where("host_user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&games).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load games"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"games":   games,
	})
}

// GetParticipants returns the roster in join order.
func GetParticipants(c *fiber.Ctx) error {
	roster, err := participantService.List(c.Params("id"))
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"participants": roster,
	})
}

// GetSessionView returns the full render-ready view for the caller,
// host or not.
func GetSessionView(c *fiber.Ctx) error {
	gameID := c.Params("id")

	game, err := gameService.GetGame(gameID)
	if err != nil {
		return gameError(c, err)
	}

	roster, err := participantService.List(gameID)
	if err != nil {
		return gameError(c, err)
	}

	deck, err := deckProvider.GetDeck(game.FlashcardSetID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load deck"})
	}

	view := services.Project(game, deck, roster, middleware.OptionalUserID(c))

	return c.JSON(fiber.Map{
		"success": true,
		"view":    view,
	})
}

type SetModeRequest struct {
	Mode     string `json:"mode"`
	TeamSize int    `json:"team_size"`
}

// SetGameMode switches a waiting game between single and teams mode.
func SetGameMode(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req SetModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	game, err := gameService.SetMode(c.Params("id"), userID, req.Mode, req.TeamSize)
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

// AssignTeams partitions the roster into teams of the configured size.
func AssignTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	assignment, err := participantService.AssignTeams(c.Params("id"), userID)
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"teams":   assignment,
	})
}

// StartGame begins the session at the first card.
func StartGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	game, err := gameService.Start(c.Params("id"), userID)
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

// AdvanceGame moves to the next card, completing the game after the last one.
func AdvanceGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	game, err := gameService.Advance(c.Params("id"), userID)
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

// AbortGame ends the session early.
func AbortGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	game, err := gameService.Abort(c.Params("id"), userID)
	if err != nil {
		return gameError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"game":    game,
	})
}

type SubmitResponseRequest struct {
	ParticipantID string `json:"participant_id"`
	FlashcardID   uint   `json:"flashcard_id"`
	IsCorrect     bool   `json:"is_correct"`
	ResponseTime  *int   `json:"response_time_ms"`
}

// SubmitResponse records one participant's answer to the current card.
func SubmitResponse(c *fiber.Ctx) error {
	var req SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil || req.ParticipantID == "" || req.FlashcardID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "participant_id and flashcard_id are required"})
	}

	game, err := gameService.GetGame(c.Params("id"))
	if err != nil {
		return gameError(c, err)
	}
	if game.Status != models.GameStatusInProgress {
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Game is not in progress"})
	}

	db := database.GetDB()

	var participant models.GameParticipant
	if err := db.Where("participant_id = ? AND game_id = ?", req.ParticipantID, game.ID).
		First(&participant).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Participant not found in this game"})
	}

	response := models.GameResponse{
		GameID:        game.ID,
		ParticipantID: participant.ID,
		FlashcardID:   req.FlashcardID,
		IsCorrect:     req.IsCorrect,
		ResponseTime:  req.ResponseTime,
		AnsweredAt:    time.Now(),
	}
	if err := db.Create(&response).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to record response"})
	}

	if req.IsCorrect {
		if err := participantService.AwardPoint(req.ParticipantID); err != nil {
			log.Printf("⚠️ Score update failed for participant %s: %v", req.ParticipantID, err)
		}
	}

	hubNotifier.GameChanged(game.GameID, services.ScopeResponses)

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"response": response,
	})
}

// GetResponses returns every recorded answer for a game.
func GetResponses(c *fiber.Ctx) error {
	game, err := gameService.GetGame(c.Params("id"))
	if err != nil {
		return gameError(c, err)
	}

	db := database.GetDB()
	var responses []models.GameResponse
	if err := db.Where("game_id = ?", game.ID).
		Order("answered_at ASC, id ASC").
		Find(&responses).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load responses"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"responses": responses,
	})
}
