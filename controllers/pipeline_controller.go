package controller

import (
	"log"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PipelineController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPipelineController(db *gorm.DB, logger *log.Logger) *PipelineController {
	return &PipelineController{
		DB:     db,
		Logger: logger,
	}
}

// CreatePipeline creates a board with the default stage columns
func (pc *PipelineController) CreatePipeline(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name            string `json:"name" validate:"required,min=2,max=120"`
		Description     string `json:"description" validate:"omitempty,max=500"`
		ChatwootInboxID *int   `json:"chatwoot_inbox_id"`
		AutoCreateCards *bool  `json:"auto_create_cards"`
		AIEnabled       bool   `json:"ai_enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	pipeline := models.Pipeline{
		UserID:          user.ID,
		Name:            input.Name,
		Description:     input.Description,
		ChatwootInboxID: input.ChatwootInboxID,
		AutoCreateCards: true,
		AIEnabled:       input.AIEnabled,
	}
	if input.AutoCreateCards != nil {
		pipeline.AutoCreateCards = *input.AutoCreateCards
	}

	if err := pc.DB.Create(&pipeline).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create pipeline", err)
	}

	if err := models.CreateDefaultColumns(pc.DB, pipeline.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create default columns", err)
	}

	if err := pc.DB.Preload("Columns").First(&pipeline, pipeline.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(pipeline))
}

// GetPipelines lists the workspace's boards
func (pc *PipelineController) GetPipelines(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var pipelines []models.Pipeline
	if err := pc.DB.Where("user_id = ?", user.ID).Preload("Columns").Find(&pipelines).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch pipelines", err)
	}

	return c.JSON(utils.SuccessResponse(pipelines))
}

// GetPipeline returns one board with its columns and rules
func (pc *PipelineController) GetPipeline(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var pipeline models.Pipeline
	if err := pc.DB.Where("id = ? AND user_id = ?", utils.ParseUint(c.Params("id")), user.ID).
		Preload("Columns").Preload("InactivityRules").Preload("SLAConfig").
		First(&pipeline).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pipeline not found", nil)
	}

	return c.JSON(utils.SuccessResponse(pipeline))
}

// UpdatePipeline changes board settings
func (pc *PipelineController) UpdatePipeline(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var input struct {
		Name            *string `json:"name" validate:"omitempty,min=2,max=120"`
		Description     *string `json:"description" validate:"omitempty,max=500"`
		ChatwootInboxID *int    `json:"chatwoot_inbox_id"`
		AutoCreateCards *bool   `json:"auto_create_cards"`
		AIEnabled       *bool   `json:"ai_enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ChatwootInboxID != nil {
		updates["chatwoot_inbox_id"] = *input.ChatwootInboxID
	}
	if input.AutoCreateCards != nil {
		updates["auto_create_cards"] = *input.AutoCreateCards
	}
	if input.AIEnabled != nil {
		updates["ai_enabled"] = *input.AIEnabled
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(pipeline).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update pipeline", err)
		}
	}

	return c.JSON(utils.SuccessResponse(pipeline))
}

// DeletePipeline removes a board and everything on it
func (pc *PipelineController) DeletePipeline(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var columnIDs []uint
	pc.DB.Model(&models.PipelineColumn{}).Where("pipeline_id = ?", pipeline.ID).Pluck("id", &columnIDs)

	if len(columnIDs) > 0 {
		if err := pc.DB.Where("column_id IN ?", columnIDs).Delete(&models.Card{}).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete cards", err)
		}
	}
	pc.DB.Where("pipeline_id = ?", pipeline.ID).Delete(&models.PipelineColumn{})
	pc.DB.Where("pipeline_id = ?", pipeline.ID).Delete(&models.InactivityRule{})
	pc.DB.Where("pipeline_id = ?", pipeline.ID).Delete(&models.SLAConfig{})

	if err := pc.DB.Delete(pipeline).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete pipeline", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateColumn adds a stage to a board
func (pc *PipelineController) CreateColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=80"`
		Position int    `json:"position" validate:"gte=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	column := models.PipelineColumn{
		PipelineID: pipeline.ID,
		Name:       input.Name,
		Position:   input.Position,
	}
	if err := pc.DB.Create(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create column", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(column))
}

// UpdateColumn renames or repositions a stage
func (pc *PipelineController) UpdateColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var column models.PipelineColumn
	if err := pc.DB.Where("id = ? AND pipeline_id = ?", utils.ParseUint(c.Params("columnId")), pipeline.ID).
		First(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	var input struct {
		Name     *string `json:"name" validate:"omitempty,min=2,max=80"`
		Position *int    `json:"position" validate:"omitempty,gte=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Position != nil {
		updates["position"] = *input.Position
	}
	if len(updates) > 0 {
		if err := pc.DB.Model(&column).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update column", err)
		}
	}

	return c.JSON(utils.SuccessResponse(column))
}

// DeleteColumn removes an empty stage
func (pc *PipelineController) DeleteColumn(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var column models.PipelineColumn
	if err := pc.DB.Where("id = ? AND pipeline_id = ?", utils.ParseUint(c.Params("columnId")), pipeline.ID).
		First(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	var cardCount int64
	pc.DB.Model(&models.Card{}).Where("column_id = ?", column.ID).Count(&cardCount)
	if cardCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Column still has cards", nil)
	}

	if err := pc.DB.Delete(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete column", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateInactivityRule appends a rule to the pipeline's evaluation order
func (pc *PipelineController) CreateInactivityRule(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var input struct {
		Position            int     `json:"position" validate:"gte=0"`
		InactivityDays      int     `json:"inactivity_days" validate:"required,gte=1"`
		FunnelType          *string `json:"funnel_type"`
		OnlyIfNonMonetary   bool    `json:"only_if_non_monetary"`
		OnlyIfProgressBelow *int    `json:"only_if_progress_below" validate:"omitempty,gte=1,max=100"`
		MoveToColumnName    *string `json:"move_to_column_name"`
		SetResolutionStatus *string `json:"set_resolution_status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	rule := models.InactivityRule{
		PipelineID:          pipeline.ID,
		Position:            input.Position,
		InactivityDays:      input.InactivityDays,
		FunnelType:          input.FunnelType,
		OnlyIfNonMonetary:   input.OnlyIfNonMonetary,
		OnlyIfProgressBelow: input.OnlyIfProgressBelow,
		MoveToColumnName:    input.MoveToColumnName,
		SetResolutionStatus: input.SetResolutionStatus,
	}
	if err := pc.DB.Create(&rule).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create rule", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(rule))
}

// GetInactivityRules lists rules in evaluation order
func (pc *PipelineController) GetInactivityRules(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	var rules []models.InactivityRule
	if err := pc.DB.Where("pipeline_id = ?", pipeline.ID).
		Order("position ASC, id ASC").Find(&rules).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch rules", err)
	}

	return c.JSON(utils.SuccessResponse(rules))
}

// DeleteInactivityRule removes a rule
func (pc *PipelineController) DeleteInactivityRule(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	pipeline, ok := pc.ownedPipeline(c, user)
	if !ok {
		return nil
	}

	result := pc.DB.Where("id = ? AND pipeline_id = ?", utils.ParseUint(c.Params("ruleId")), pipeline.ID).
		Delete(&models.InactivityRule{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete rule", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Rule not found", nil)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (pc *PipelineController) ownedPipeline(c *fiber.Ctx, user *models.User) (*models.Pipeline, bool) {
	var pipeline models.Pipeline
	if err := pc.DB.Where("id = ? AND user_id = ?", utils.ParseUint(c.Params("id")), user.ID).
		First(&pipeline).Error; err != nil {
		_ = utils.ErrorResponse(c, fiber.StatusNotFound, "Pipeline not found", nil)
		return nil, false
	}
	return &pipeline, true
}
