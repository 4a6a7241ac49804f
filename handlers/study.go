// handlers/study.go - Study Progress API
package handlers

import (
	"log"

	"flashdeck/database"
	"flashdeck/middleware"
	"flashdeck/services"

	"github.com/gofiber/fiber/v2"
)

var studyService *services.StudyService

// InitStudyHandlers wires the study service. Must run after database.InitDB.
func InitStudyHandlers() {
	studyService = services.NewStudyService(database.GetDB())
	log.Println("✅ Study handlers initialized")
}

type ReviewRequest struct {
	FlashcardID uint `json:"flashcard_id"`
	Correct     bool `json:"correct"`
}

// RecordReview folds one answer into the caller's progress for a card
func RecordReview(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil || req.FlashcardID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "flashcard_id is required"})
	}

	progress, err := studyService.RecordReview(userID, req.FlashcardID, req.Correct)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to record review"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": progress,
	})
}

type StarRequest struct {
	FlashcardID uint `json:"flashcard_id"`
	Starred     bool `json:"starred"`
}

// SetStarred toggles the star flag on one card for the caller
func SetStarred(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req StarRequest
	if err := c.BodyParser(&req); err != nil || req.FlashcardID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "flashcard_id is required"})
	}

	progress, err := studyService.SetStarred(userID, req.FlashcardID, req.Starred)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update star"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": progress,
	})
}

// GetProgress returns the caller's progress for every card of a set
func GetProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	progress, err := studyService.ListProgress(userID, uint(setID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load progress"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": progress,
	})
}

// GetDueCards returns a set's cards weakest-first for a learn session
func GetDueCards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	cards, err := studyService.DueCards(userID, uint(setID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load cards"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"cards":   cards,
	})
}

// GetHeatmap returns the caller's per-day review counts
func GetHeatmap(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	days, err := studyService.Heatmap(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load heatmap"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"days":    days,
	})
}

type MatchingResultRequest struct {
	SetID            uint `json:"set_id"`
	CompletionTimeMs int  `json:"completion_time_ms"`
}

// RecordMatchingResult stores a finished matching-game run and returns
// the caller's best time for the set.
func RecordMatchingResult(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req MatchingResultRequest
	if err := c.BodyParser(&req); err != nil || req.SetID == 0 || req.CompletionTimeMs <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "set_id and completion_time_ms are required"})
	}

	result, err := studyService.RecordMatchingResult(userID, req.SetID, req.CompletionTimeMs)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save result"})
	}

	best, err := studyService.BestMatchingResult(userID, req.SetID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load best result"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"result":  result,
		"best":    best,
	})
}

// GetBestMatchingResult returns the caller's fastest run for a set
func GetBestMatchingResult(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	best, err := studyService.BestMatchingResult(userID, uint(setID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load best result"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"best":    best,
	})
}
