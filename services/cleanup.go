// services/cleanup.go - Background Cleanup Tasks
package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"flashdeck/database"
	"flashdeck/models"
)

// CleanupService handles background cleanup tasks: stale guest accounts
// and long-completed games. Waiting lobbies are deliberately never
// expired.
type CleanupService struct {
	interval time.Duration
	stop     chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes and starts the singleton cleanup service.
func InitCleanupService() {
	intervalHours := 6
	if v := os.Getenv("CLEANUP_INTERVAL_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			intervalHours = parsed
		}
	}

	cleanupService = &CleanupService{
		interval: time.Duration(intervalHours) * time.Hour,
		stop:     make(chan struct{}),
	}

	if os.Getenv("GUEST_CLEANUP_ENABLED") != "false" {
		go cleanupService.run()
	}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Stop stops the cleanup worker.
func (s *CleanupService) Stop() {
	close(s.stop)
}

func (s *CleanupService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.CleanupStaleGuests(); err != nil {
				log.Printf("Guest cleanup failed: %v", err)
			}
			if err := s.CleanupOldGames(); err != nil {
				log.Printf("Game cleanup failed: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// CleanupStaleGuests removes guest accounts idle for more than 30 days
// that own no flashcard sets.
func (s *CleanupService) CleanupStaleGuests() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -30)

	result := db.Where("is_guest = ? AND last_login < ? AND id NOT IN (SELECT DISTINCT user_id FROM flashcard_sets)",
		true, cutoff).
		Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("🧹 Cleaned up %d stale guest accounts", result.RowsAffected)
	}
	return nil
}

// CleanupOldGames deletes completed games (and their rosters/responses)
// older than 7 days.
func (s *CleanupService) CleanupOldGames() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -7)

	var old []models.Game
	if err := db.Where("status = ? AND completed_at < ?", models.GameStatusCompleted, cutoff).
		Find(&old).Error; err != nil {
		return err
	}
	if len(old) == 0 {
		return nil
	}

	ids := make([]uint, len(old))
	for i, g := range old {
		ids[i] = g.ID
	}

	if err := db.Where("game_id IN ?", ids).Delete(&models.GameResponse{}).Error; err != nil {
		return err
	}
	if err := db.Where("game_id IN ?", ids).Delete(&models.GameParticipant{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&old).Error; err != nil {
		return err
	}

	log.Printf("🧹 Cleaned up %d completed games", len(old))
	return nil
}
