package controller

import (
	"errors"
	"log"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SLAController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSLAController(db *gorm.DB, logger *log.Logger) *SLAController {
	return &SLAController{
		DB:     db,
		Logger: logger,
	}
}

// GetCardSLA evaluates a card against its pipeline targets
func (sc *SLAController) GetCardSLA(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("id"))

	var card models.Card
	if err := sc.DB.First(&card, cardID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	var column models.PipelineColumn
	if err := sc.DB.First(&column, card.ColumnID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	cfg := sc.configForPipeline(column.PipelineID)
	sla := utils.CalculateSLA(time.Now(), card, column.Name, cfg)

	return c.JSON(fiber.Map{
		"cardId": card.ID,
		"sla":    sla,
	})
}

// GetSLAConfig returns the pipeline config, creating it lazily with defaults
func (sc *SLAController) GetSLAConfig(c *fiber.Ctx) error {
	pipelineID := utils.ParseUint(c.Params("id"))

	var pipeline models.Pipeline
	if err := sc.DB.First(&pipeline, pipelineID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pipeline not found", nil)
	}

	var cfg models.SLAConfig
	err := sc.DB.Where("pipeline_id = ?", pipelineID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.DefaultSLAConfig(pipelineID)
		if err := sc.DB.Create(&cfg).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create SLA config", err)
		}
	} else if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch SLA config", err)
	}

	return c.JSON(utils.SuccessResponse(cfg))
}

// UpdateSLAConfig changes the pipeline response targets
func (sc *SLAController) UpdateSLAConfig(c *fiber.Ctx) error {
	pipelineID := utils.ParseUint(c.Params("id"))

	var input struct {
		FirstResponseMinutes    int `json:"first_response_minutes" validate:"required,gte=1"`
		OngoingResponseMinutes  int `json:"ongoing_response_minutes" validate:"required,gte=1"`
		WarningThresholdPercent int `json:"warning_threshold_percent" validate:"required,gte=1,max=100"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var cfg models.SLAConfig
	err := sc.DB.Where("pipeline_id = ?", pipelineID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.DefaultSLAConfig(pipelineID)
	} else if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch SLA config", err)
	}

	cfg.FirstResponseMinutes = input.FirstResponseMinutes
	cfg.OngoingResponseMinutes = input.OngoingResponseMinutes
	cfg.WarningThresholdPercent = input.WarningThresholdPercent

	if err := sc.DB.Save(&cfg).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update SLA config", err)
	}

	return c.JSON(utils.SuccessResponse(cfg))
}

// configForPipeline loads the pipeline config, falling back to the defaults
// when no row exists yet.
func (sc *SLAController) configForPipeline(pipelineID uint) models.SLAConfig {
	var cfg models.SLAConfig
	if err := sc.DB.Where("pipeline_id = ?", pipelineID).First(&cfg).Error; err != nil {
		return models.DefaultSLAConfig(pipelineID)
	}
	return cfg
}
