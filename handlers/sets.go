// handlers/sets.go - Flashcard Set CRUD
package handlers

import (
	"flashdeck/database"
	"flashdeck/middleware"
	"flashdeck/models"

	"github.com/gofiber/fiber/v2"
)

type SetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

type ImportCardsRequest struct {
	Cards []struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	} `json:"cards"`
}

// CreateSet creates a flashcard set owned by the caller
func CreateSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req SetRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Title is required"})
	}

	set := models.FlashcardSet{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	}
	if req.IsPublic != nil {
		set.IsPublic = *req.IsPublic
	}

	db := database.GetDB()
	if err := db.Create(&set).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create set"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"set":     set,
	})
}

// GetSets lists the caller's sets
func GetSets(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	var sets []models.FlashcardSet
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sets).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load sets"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"sets":    sets,
	})
}

// GetSet returns one set with its cards. Public sets are visible to
// anyone, private ones only to their owner.
func GetSet(c *fiber.Ctx) error {
	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, setID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Set not found"})
	}

	if !set.IsPublic {
		viewerID := middleware.OptionalUserID(c)
		if viewerID == nil || *viewerID != set.UserID {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "This set is private"})
		}
	}

	var cards []models.Flashcard
	db.Where("set_id = ?", set.ID).Order("position ASC, id ASC").Find(&cards)
	set.Flashcards = cards

	return c.JSON(fiber.Map{
		"success": true,
		"set":     set,
	})
}

// UpdateSet updates a set's metadata. Owner only.
func UpdateSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	var req SetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, setID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Set not found"})
	}
	if set.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You don't own this set"})
	}

	if req.Title != "" {
		set.Title = req.Title
	}
	set.Description = req.Description
	if req.IsPublic != nil {
		set.IsPublic = *req.IsPublic
	}

	if err := db.Save(&set).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update set"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"set":     set,
	})
}

// DeleteSet removes a set and its cards. Owner only.
func DeleteSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, setID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Set not found"})
	}
	if set.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You don't own this set"})
	}

	if err := db.Where("set_id = ?", set.ID).Delete(&models.Flashcard{}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete cards"})
	}
	if err := db.Delete(&set).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete set"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ImportCards bulk-appends term/definition pairs to a set. Owner only.
func ImportCards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	setID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid set id"})
	}

	var req ImportCardsRequest
	if err := c.BodyParser(&req); err != nil || len(req.Cards) == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "cards array is required"})
	}

	db := database.GetDB()
	var set models.FlashcardSet
	if err := db.First(&set, setID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Set not found"})
	}
	if set.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "You don't own this set"})
	}

	var maxPos int
	db.Model(&models.Flashcard{}).Where("set_id = ?", set.ID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPos)

	cards := make([]models.Flashcard, 0, len(req.Cards))
	for i, card := range req.Cards {
		if card.Term == "" || card.Definition == "" {
			continue
		}
		cards = append(cards, models.Flashcard{
			SetID:      set.ID,
			Term:       card.Term,
			Definition: card.Definition,
			Position:   maxPos + 1 + i,
		})
	}
	if len(cards) == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "No valid cards to import"})
	}

	if err := db.Create(&cards).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to import cards"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"imported": len(cards),
		"cards":    cards,
	})
}
