package routes

import (
	"spsc-loanstp/internal/adapters/http/handlers"
	"spsc-loanstp/internal/adapters/http/middleware"
	"spsc-loanstp/internal/adapters/persistence/repositories"
	"spsc-loanstp/internal/config"
	"spsc-loanstp/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	appRepo := repositories.NewApplicationRepository(db)
	transitionRepo := repositories.NewTransitionRepository(db)
	profileRepo := repositories.NewCreditProfileRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(cfg.Notify.LineNotifyToken)
	scoringService := services.NewScoringService(profileRepo)
	appService := services.NewApplicationService(appRepo, transitionRepo, scoringService, notifyService)
	reviewService := services.NewReviewService(appRepo, notifyService)
	explainService := services.NewExplainService(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	appHandler := handlers.NewApplicationHandler(appService, explainService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	loans := apiV1.Group("/loan")
	loans.Post("/", middleware.SubmitRateLimiter(), appHandler.Submit)
	loans.Get("/", appHandler.List)
	loans.Get("/:id", appHandler.GetByID)
	loans.Get("/:id/history", appHandler.GetHistory)
	loans.Get("/:id/explain", appHandler.Explain)
	loans.Put("/:id/review", reviewHandler.Resolve)

	apiV1.Get("/dashboard", dashboardHandler.GetDashboard)
}
