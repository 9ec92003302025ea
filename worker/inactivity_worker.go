package worker

import (
	"context"
	"log"
	"time"

	"funilzap/config"
	controller "funilzap/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
)

type InactivityWorker struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewInactivityWorker(db *gorm.DB, logger *log.Logger) *InactivityWorker {
	return &InactivityWorker{
		db:     db,
		logger: logger,
	}
}

func (iw *InactivityWorker) Start(ctx context.Context) {
	iw.logger.Println("Starting inactivity worker...")

	interval := time.Duration(config.AppConfig.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)

	for {
		select {
		case <-ticker.C:
			iw.runSweep()
		case <-ctx.Done():
			iw.logger.Println("Stopping inactivity worker...")
			ticker.Stop()
			return
		}
	}
}

func (iw *InactivityWorker) runSweep() {
	iw.logger.Println("Running inactivity sweep...")

	cronController := controller.NewCronController(iw.db, iw.logger)

	// Create a minimal Fiber app to get the proper context
	app := fiber.New()
	fctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(fctx)

	if err := cronController.TriggerInactivitySweep(fctx); err != nil {
		iw.logger.Printf("Inactivity sweep failed: %v", err)
	}
}
