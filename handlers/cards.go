// handlers/cards.go - Flashcard CRUD
package handlers

import (
	"flashdeck/database"
	"flashdeck/middleware"
	"flashdeck/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CardRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Position   *int   `json:"position"`
}

// ownedSet loads a set and checks the caller owns it.
func ownedSet(db *gorm.DB, setID int, userID uint) (*models.FlashcardSet, int, string) {
	var set models.FlashcardSet
	if err := db.First(&set, setID).Error; err != nil {
		return nil, 404, "Set not found"
	}
	if set.UserID != userID {
		return nil, 403, "You don't own this set"
	}
	return &set, 0, ""
}

// CreateCard appends a card to one of the caller's sets
func CreateCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	var req CardRequest
	if err := c.BodyParser(&req); err != nil || req.Term == "" || req.Definition == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Term and definition are required"})
	}

	db := database.GetDB()
	set, status, msg := ownedSet(db, setID, userID)
	if set == nil {
		return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
	}

	card := models.Flashcard{
		SetID:      set.ID,
		Term:       req.Term,
		Definition: req.Definition,
	}
	if req.Position != nil {
		card.Position = *req.Position
	} else {
		var maxPos int
		db.Model(&models.Flashcard{}).Where("set_id = ?", set.ID).
			Select("COALESCE(MAX(position), -1)").Scan(&maxPos)
		card.Position = maxPos + 1
	}

	if err := db.Create(&card).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create card"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"card":    card,
	})
}

// UpdateCard edits a card's term, definition or position
func UpdateCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	cardID, err := c.ParamsInt("cardId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid card id"})
	}

	var req CardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	var card models.Flashcard
	if err := db.First(&card, cardID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Card not found"})
	}

	set, status, msg := ownedSet(db, int(card.SetID), userID)
	if set == nil {
		return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
	}

	if req.Term != "" {
		card.Term = req.Term
	}
	if req.Definition != "" {
		card.Definition = req.Definition
	}
	if req.Position != nil {
		card.Position = *req.Position
	}

	if err := db.Save(&card).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update card"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"card":    card,
	})
}

// DeleteCard removes a card from one of the caller's sets
func DeleteCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	cardID, err := c.ParamsInt("cardId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid card id"})
	}

	db := database.GetDB()
	var card models.Flashcard
	if err := db.First(&card, cardID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Card not found"})
	}

	set, status, msg := ownedSet(db, int(card.SetID), userID)
	if set == nil {
		return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
	}

	if err := db.Delete(&card).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete card"})
	}

	return c.JSON(fiber.Map{"success": true})
}
