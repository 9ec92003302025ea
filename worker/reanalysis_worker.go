package worker

import (
	"context"
	"log"
	"time"

	"funilzap/config"
	"funilzap/models"
	"funilzap/utils"

	"gorm.io/gorm"
)

type ReanalysisWorker struct {
	db       *gorm.DB
	logger   *log.Logger
	analyzer *utils.AnalyzerClient
}

func NewReanalysisWorker(db *gorm.DB, logger *log.Logger, analyzer *utils.AnalyzerClient) *ReanalysisWorker {
	return &ReanalysisWorker{
		db:       db,
		logger:   logger,
		analyzer: analyzer,
	}
}

func (rw *ReanalysisWorker) Start(ctx context.Context) {
	if !rw.analyzer.Enabled() {
		rw.logger.Println("Analyzer not configured, reanalysis worker disabled")
		return
	}
	rw.logger.Println("Starting reanalysis worker...")

	interval := time.Duration(config.AppConfig.ReanalysisIntervalMin) * time.Minute
	ticker := time.NewTicker(interval)

	for {
		select {
		case <-ticker.C:
			rw.reanalyzeOpenCards(ctx)
		case <-ctx.Done():
			rw.logger.Println("Stopping reanalysis worker...")
			ticker.Stop()
			return
		}
	}
}

func (rw *ReanalysisWorker) reanalyzeOpenCards(ctx context.Context) {
	var pipelines []models.Pipeline
	if err := rw.db.Where("ai_enabled = ?", true).Find(&pipelines).Error; err != nil {
		rw.logger.Printf("Failed to fetch pipelines: %v", err)
		return
	}

	for _, pipeline := range pipelines {
		var columnIDs []uint
		if err := rw.db.Model(&models.PipelineColumn{}).
			Where("pipeline_id = ?", pipeline.ID).
			Pluck("id", &columnIDs).Error; err != nil {
			rw.logger.Printf("Failed to fetch columns for pipeline %d: %v", pipeline.ID, err)
			continue
		}
		if len(columnIDs) == 0 {
			continue
		}

		var cards []models.Card
		if err := rw.db.Where("column_id IN ? AND completion_type IS NULL", columnIDs).
			Find(&cards).Error; err != nil {
			rw.logger.Printf("Failed to fetch cards for pipeline %d: %v", pipeline.ID, err)
			continue
		}

		for _, card := range cards {
			select {
			case <-ctx.Done():
				return
			default:
			}

			rw.analyzer.Reanalyze(card)

			// Spacing between calls keeps the analyzer from being flooded
			// when a pipeline holds many open cards.
			time.Sleep(time.Second)
		}
	}
}
