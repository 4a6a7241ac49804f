// services/game_db.go - GORM-backed stores for games, rosters and decks
package services

import (
	"errors"
	"fmt"

	"flashdeck/models"

	"gorm.io/gorm"
)

// GormGameStore persists games in PostgreSQL.
type GormGameStore struct {
	db *gorm.DB
}

func NewGormGameStore(db *gorm.DB) *GormGameStore {
	return &GormGameStore{db: db}
}

func (s *GormGameStore) CreateGame(game *models.Game) error {
	if err := s.db.Create(game).Error; err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (s *GormGameStore) GetGame(gameID string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("game_id = ?", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &game, nil
}

func (s *GormGameStore) GetActiveGameByCode(code string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("code = ? AND status <> ?", code, models.GameStatusCompleted).
		Order("created_at DESC").
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up game by code: %w", err)
	}
	return &game, nil
}

func (s *GormGameStore) UpdateGame(gameID string, fields map[string]interface{}) error {
	result := s.db.Model(&models.Game{}).
		Where("game_id = ?", gameID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update game: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("game %s not found for update", gameID)
	}
	return nil
}

func (s *GormGameStore) CodeInUse(code string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Game{}).
		Where("code = ? AND status <> ?", code, models.GameStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return count > 0, nil
}

// GormParticipantStore persists game rosters.
type GormParticipantStore struct {
	db *gorm.DB
}

func NewGormParticipantStore(db *gorm.DB) *GormParticipantStore {
	return &GormParticipantStore{db: db}
}

func (s *GormParticipantStore) CreateParticipant(p *models.GameParticipant) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (s *GormParticipantStore) ListParticipants(gameID string) ([]models.GameParticipant, error) {
	var roster []models.GameParticipant
	err := s.db.Where("game_id IN (SELECT id FROM games WHERE game_id = ?)", gameID).
		Order("joined_at ASC, id ASC").
		Find(&roster).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return roster, nil
}

func (s *GormParticipantStore) CountParticipants(gameID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.GameParticipant{}).
		Where("game_id IN (SELECT id FROM games WHERE game_id = ?)", gameID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (s *GormParticipantStore) IncrementScore(participantID string) error {
	result := s.db.Model(&models.GameParticipant{}).
		Where("participant_id = ?", participantID).
		Update("score", gorm.Expr("score + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("participant %s not found for score update", participantID)
	}
	return nil
}

func (s *GormParticipantStore) SetTeamNumber(participantID string, teamNumber int) error {
	result := s.db.Model(&models.GameParticipant{}).
		Where("participant_id = ?", participantID).
		Update("team_number", teamNumber)
	if result.Error != nil {
		return fmt.Errorf("failed to set team number: %w", result.Error)
	}
	return nil
}

// GormDeckProvider serves a set's cards in position order.
type GormDeckProvider struct {
	db *gorm.DB
}

func NewGormDeckProvider(db *gorm.DB) *GormDeckProvider {
	return &GormDeckProvider{db: db}
}

func (s *GormDeckProvider) GetDeck(setID uint) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := s.db.Where("set_id = ?", setID).
		Order("position ASC, id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}
	return cards, nil
}
