package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"funilzap/config"
	"funilzap/middleware"
	"funilzap/routes"
	"funilzap/utils"
	"funilzap/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "FUNILZAP: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize and start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inactivityWorker := worker.NewInactivityWorker(config.DB, log.New(os.Stdout, "SWEEP: ", log.LstdFlags))
	go inactivityWorker.Start(ctx)

	analyzer := utils.NewAnalyzerClient(config.AppConfig.AnalyzerURL, log.New(os.Stdout, "ANALYZER: ", log.LstdFlags))
	reanalysisWorker := worker.NewReanalysisWorker(config.DB, log.New(os.Stdout, "REANALYSIS: ", log.LstdFlags), analyzer)
	go reanalysisWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
