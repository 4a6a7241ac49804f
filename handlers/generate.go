// handlers/generate.go - AI Question Generation API
package handlers

import (
	"log"
	"os"

	"flashdeck/database"
	"flashdeck/middleware"
	"flashdeck/models"
	"flashdeck/services"

	"github.com/gofiber/fiber/v2"
)

var aiService *services.AIGenerateService

// InitGenerateHandlers wires the AI generator from environment config.
func InitGenerateHandlers() {
	apiURL := os.Getenv("AI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	aiService = services.NewAIGenerateService(os.Getenv("AI_API_KEY"), apiURL, model)
	if aiService.IsAvailable() {
		log.Println("✅ AI question generation enabled")
	} else {
		log.Println("ℹ️  AI question generation disabled (no AI_API_KEY)")
	}
}

type GenerateRequest struct {
	SetID        uint   `json:"set_id"`
	Count        int    `json:"count"`
	QuestionType string `json:"question_type"`
}

// GenerateQuestions builds quiz questions from a set's cards
func GenerateQuestions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	if !aiService.IsAvailable() {
		return c.Status(503).JSON(fiber.Map{"success": false, "error": "AI generation is not configured"})
	}

	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil || req.SetID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "set_id is required"})
	}
	if req.QuestionType == "" {
		req.QuestionType = services.QuestionTypeMultipleChoice
	}

	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, req.SetID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Set not found"})
	}
	if set.UserID != userID && !set.IsPublic {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You don't have access to this set"})
	}

	var cards []models.Flashcard
	if err := db.Where("set_id = ?", set.ID).Order("position ASC, id ASC").Find(&cards).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load cards"})
	}

	questions, err := aiService.GenerateQuestions(cards, req.Count, req.QuestionType)
	if err != nil {
		log.Printf("❌ Question generation failed for set %d: %v", set.ID, err)
		return c.Status(502).JSON(fiber.Map{"success": false, "error": "Question generation failed"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"questions": questions,
	})
}
