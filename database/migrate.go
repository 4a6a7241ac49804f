// database/migrate.go - Database Migration Runner
package database

import (
	"flashdeck/models"
	"log"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.FlashcardSet{},
		&models.Flashcard{},
		&models.StudyProgress{},
		&models.MatchingGameResult{},
		&models.Game{},
		&models.GameParticipant{},
		&models.GameResponse{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// A join code identifies at most one active game; completed games
	// free their code for reuse
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_games_code_active ON games(code) WHERE status != 'completed'")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_flashcards_set_position ON flashcards(set_id, position)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_participants_game_joined ON game_participants(game_id, joined_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_matching_results_best ON matching_game_results(user_id, flashcard_set_id, completion_time_ms)")

	log.Println("✅ Indexes created")
}
