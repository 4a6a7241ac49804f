// main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"flashdeck/database"
	"flashdeck/handlers"
	"flashdeck/middleware"
	"flashdeck/services"
	"flashdeck/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire services into the handler layer
	handlers.InitGameHandlers()
	handlers.InitStudyHandlers()
	handlers.InitGenerateHandlers()

	// Initialize cleanup service
	services.InitCleanupService()
	defer func() {
		if cleanupService := services.GetCleanupService(); cleanupService != nil {
			cleanupService.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/upgrade", middleware.AuthMiddleware, handlers.UpgradeGuest)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.Me)

	// Flashcard set routes
	setGroup := api.Group("/sets")
	setGroup.Post("/", middleware.AuthMiddleware, handlers.CreateSet)
	setGroup.Get("/", middleware.AuthMiddleware, handlers.GetSets)
	setGroup.Get("/:id", middleware.OptionalAuthMiddleware, handlers.GetSet)
	setGroup.Put("/:id", middleware.AuthMiddleware, handlers.UpdateSet)
	setGroup.Delete("/:id", middleware.AuthMiddleware, handlers.DeleteSet)
	setGroup.Post("/:id/import", middleware.AuthMiddleware, handlers.ImportCards)
	setGroup.Post("/:id/cards", middleware.AuthMiddleware, handlers.CreateCard)

	// Card routes
	api.Put("/cards/:cardId", middleware.AuthMiddleware, handlers.UpdateCard)
	api.Delete("/cards/:cardId", middleware.AuthMiddleware, handlers.DeleteCard)

	// Study progress routes
	studyGroup := api.Group("/study")
	studyGroup.Use(middleware.AuthMiddleware)
	studyGroup.Post("/review", handlers.RecordReview)
	studyGroup.Post("/star", handlers.SetStarred)
	studyGroup.Get("/sets/:id/progress", handlers.GetProgress)
	studyGroup.Get("/sets/:id/due", handlers.GetDueCards)
	studyGroup.Get("/heatmap", handlers.GetHeatmap)
	studyGroup.Post("/matching", handlers.RecordMatchingResult)
	studyGroup.Get("/sets/:id/matching/best", handlers.GetBestMatchingResult)

	// AI question generation
	api.Post("/generate/questions", middleware.AuthMiddleware, handlers.GenerateQuestions)

	// Live game session routes. Join and view work for anonymous players.
	gameGroup := api.Group("/games")
	gameGroup.Post("/", middleware.AuthMiddleware, handlers.CreateGame)
	gameGroup.Get("/", middleware.AuthMiddleware, handlers.MyGames)
	gameGroup.Post("/join", middleware.OptionalAuthMiddleware, handlers.JoinGame)
	gameGroup.Get("/:id", middleware.OptionalAuthMiddleware, handlers.GetGame)
	gameGroup.Get("/:id/participants", middleware.OptionalAuthMiddleware, handlers.GetParticipants)
	gameGroup.Get("/:id/view", middleware.OptionalAuthMiddleware, handlers.GetSessionView)
	gameGroup.Put("/:id/mode", middleware.AuthMiddleware, handlers.SetGameMode)
	gameGroup.Post("/:id/teams/assign", middleware.AuthMiddleware, handlers.AssignTeams)
	gameGroup.Post("/:id/start", middleware.AuthMiddleware, handlers.StartGame)
	gameGroup.Post("/:id/advance", middleware.AuthMiddleware, handlers.AdvanceGame)
	gameGroup.Post("/:id/abort", middleware.AuthMiddleware, handlers.AbortGame)
	gameGroup.Post("/:id/responses", middleware.OptionalAuthMiddleware, handlers.SubmitResponse)
	gameGroup.Get("/:id/responses", middleware.OptionalAuthMiddleware, handlers.GetResponses)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Start WebSocket server on its own port (pure net/http)
	wsPort := getEnv("WS_PORT", "4000")
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", handlers.WebSocketHandler)
	wsMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	wsServer := &http.Server{
		Addr:    ":" + wsPort,
		Handler: middleware.HTTPRecoverMiddleware(middleware.RateLimitMiddleware(wsMux)),
	}

	go func() {
		log.Printf("🌐 WebSocket server starting on port %s", wsPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("WebSocket server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🧹 Guest cleanup: %s", getEnv("GUEST_CLEANUP_ENABLED", "true"))
	log.Printf("🌐 WebSocket available at ws://localhost:%s/ws", wsPort)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

// customErrorHandler formats unhandled Fiber errors as JSON
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
