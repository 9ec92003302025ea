package routes

import (
	"log"
	"os"

	"funilzap/config"
	controller "funilzap/controllers"
	"funilzap/middleware"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupWebhookRoutes(app *fiber.App, db *gorm.DB) {
	webhookLogger := log.New(os.Stdout, "WEBHOOK: ", log.Ldate|log.Ltime|log.Lshortfile)

	analyzer := utils.NewAnalyzerClient(config.AppConfig.AnalyzerURL, webhookLogger)
	transcriber := utils.NewTranscriberClient(config.AppConfig.TranscriberURL)
	webhookController := controller.NewWebhookController(db, webhookLogger, analyzer, transcriber)

	// Inbound sources are unauthenticated by design; rate limiting is the
	// only guard in front of them.
	webhooks := app.Group("/webhooks", middleware.WebhookRateLimiter(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	webhooks.Post("/chatwoot", webhookController.HandleChatwootWebhook)
	webhooks.Post("/evolution", webhookController.HandleEvolutionWebhook)
	webhooks.Post("/wppconnect", webhookController.HandleWPPConnectWebhook)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	pipelineController := controller.NewPipelineController(db, log.New(os.Stdout, "PIPELINE: ", log.LstdFlags))
	cardController := controller.NewCardController(db, log.New(os.Stdout, "CARD: ", log.LstdFlags))
	slaController := controller.NewSLAController(db, log.New(os.Stdout, "SLA: ", log.LstdFlags))
	cronController := controller.NewCronController(db, log.New(os.Stdout, "CRON: ", log.LstdFlags))

	gateway := utils.NewEvolutionClient(config.AppConfig.EvolutionAPIURL, config.AppConfig.EvolutionAPIKey)
	instanceController := controller.NewInstanceController(db, log.New(os.Stdout, "INSTANCE: ", log.LstdFlags), gateway)

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Pipeline routes
	pipeline := api.Group("/pipelines")
	pipeline.Post("/", pipelineController.CreatePipeline)
	pipeline.Get("/", pipelineController.GetPipelines)
	pipeline.Get("/:id", pipelineController.GetPipeline)
	pipeline.Put("/:id", pipelineController.UpdatePipeline)
	pipeline.Delete("/:id", pipelineController.DeletePipeline)
	pipeline.Post("/:id/columns", pipelineController.CreateColumn)
	pipeline.Put("/:id/columns/:columnId", pipelineController.UpdateColumn)
	pipeline.Delete("/:id/columns/:columnId", pipelineController.DeleteColumn)
	pipeline.Get("/:id/sla-config", slaController.GetSLAConfig)
	pipeline.Put("/:id/sla-config", slaController.UpdateSLAConfig)
	pipeline.Get("/:id/inactivity-rules", pipelineController.GetInactivityRules)
	pipeline.Post("/:id/inactivity-rules", pipelineController.CreateInactivityRule)
	pipeline.Delete("/:id/inactivity-rules/:ruleId", pipelineController.DeleteInactivityRule)

	// Card routes
	card := api.Group("/cards")
	card.Post("/", cardController.CreateCard)
	card.Get("/", cardController.GetCards)
	card.Get("/:id", cardController.GetCard)
	card.Put("/:id", cardController.UpdateCard)
	card.Put("/:id/move", cardController.MoveCard)
	card.Post("/:id/complete", cardController.CompleteCard)
	card.Delete("/:id", cardController.DeleteCard)
	card.Get("/:id/sla", slaController.GetCardSLA)

	// Instance routes
	instance := api.Group("/instances")
	instance.Post("/", instanceController.CreateInstance)
	instance.Get("/", instanceController.GetInstances)
	instance.Get("/:id", instanceController.GetInstance)
	instance.Post("/:id/connect", instanceController.ConnectInstance)
	instance.Post("/:id/disconnect", instanceController.DisconnectInstance)
	instance.Delete("/:id", instanceController.DeleteInstance)

	// WebSocket stream of board changes
	app.Get("/api/v1/board/events", websocket.New(func(c *websocket.Conn) {
		controller.HandleBoardWS(c)
	}))

	// Scheduled-job triggers
	cron := app.Group("/cron", middleware.CronProtected())
	cron.Post("/inactivity", cronController.TriggerInactivitySweep)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupWebhookRoutes(app, db)
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
