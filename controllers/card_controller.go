package controller

import (
	"log"
	"strconv"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCardController(db *gorm.DB, logger *log.Logger) *CardController {
	return &CardController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCard adds a card to a column manually
func (cc *CardController) CreateCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		ColumnID    uint    `json:"column_id" validate:"required"`
		Title       string  `json:"title" validate:"required,min=1,max=200"`
		Description string  `json:"description"`
		FunnelType  string  `json:"funnel_type" validate:"omitempty,max=60"`
		Value       float64 `json:"value" validate:"gte=0"`
		ContactName string  `json:"contact_name" validate:"omitempty,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, ok := cc.ownedColumn(c, user, input.ColumnID); !ok {
		return nil
	}

	card := models.Card{
		ColumnID:       input.ColumnID,
		Title:          input.Title,
		Description:    input.Description,
		FunnelType:     input.FunnelType,
		Value:          input.Value,
		ContactName:    input.ContactName,
		LastActivityAt: utils.Pointer(time.Now()),
	}
	if err := cc.DB.Create(&card).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create card", err)
	}

	PublishBoardEvent(BoardEvent{Type: "card_created", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(card))
}

// GetCards returns a paginated card listing, filterable by column
func (cc *CardController) GetCards(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit > 200 {
		limit = 200
	}
	offset := (page - 1) * limit

	query := cc.DB.Model(&models.Card{}).
		Joins("JOIN pipeline_columns ON pipeline_columns.id = cards.column_id").
		Joins("JOIN pipelines ON pipelines.id = pipeline_columns.pipeline_id").
		Where("pipelines.user_id = ?", user.ID)

	if columnID := c.Query("column_id"); columnID != "" {
		query = query.Where("cards.column_id = ?", utils.ParseUint(columnID))
	}
	if openOnly := c.Query("open"); openOnly == "true" {
		query = query.Where("cards.completion_type IS NULL")
	}

	var total int64
	query.Count(&total)

	var cards []models.Card
	if err := query.Order("cards.last_activity_at DESC NULLS LAST").
		Offset(offset).Limit(limit).Find(&cards).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch cards", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  cards,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetCard returns one card
func (cc *CardController) GetCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	card, ok := cc.ownedCard(c, user)
	if !ok {
		return nil
	}

	return c.JSON(utils.SuccessResponse(card))
}

// UpdateCard changes card attributes
func (cc *CardController) UpdateCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	card, ok := cc.ownedCard(c, user)
	if !ok {
		return nil
	}

	var input struct {
		Title            *string  `json:"title" validate:"omitempty,min=1,max=200"`
		FunnelType       *string  `json:"funnel_type" validate:"omitempty,max=60"`
		Value            *float64 `json:"value" validate:"omitempty,gte=0"`
		ProgressPercent  *int     `json:"lifecycle_progress_percent" validate:"omitempty,gte=0,max=100"`
		ResolutionStatus *string  `json:"resolution_status"`
		ContactName      *string  `json:"contact_name" validate:"omitempty,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.FunnelType != nil {
		updates["funnel_type"] = *input.FunnelType
	}
	if input.Value != nil {
		updates["value"] = *input.Value
	}
	if input.ProgressPercent != nil {
		updates["progress_percent"] = *input.ProgressPercent
	}
	if input.ResolutionStatus != nil {
		updates["resolution_status"] = *input.ResolutionStatus
	}
	if input.ContactName != nil {
		updates["contact_name"] = *input.ContactName
	}

	if len(updates) > 0 {
		if err := cc.DB.Model(card).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update card", err)
		}
		PublishBoardEvent(BoardEvent{Type: "card_updated", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})
	}

	return c.JSON(utils.SuccessResponse(card))
}

// MoveCard reassigns a card to another column of the same board
func (cc *CardController) MoveCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	card, ok := cc.ownedCard(c, user)
	if !ok {
		return nil
	}

	var input struct {
		ColumnID uint `json:"column_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, ok := cc.ownedColumn(c, user, input.ColumnID); !ok {
		return nil
	}

	if input.ColumnID == card.ColumnID {
		return c.JSON(utils.SuccessResponse(card))
	}

	if err := cc.DB.Model(card).Updates(map[string]interface{}{
		"column_id":        input.ColumnID,
		"last_activity_at": time.Now(),
	}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move card", err)
	}
	card.ColumnID = input.ColumnID

	PublishBoardEvent(BoardEvent{Type: "card_moved", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})

	return c.JSON(utils.SuccessResponse(card))
}

// CompleteCard classifies a card as won, lost or completed. Once set the
// card leaves SLA and inactivity evaluation for good.
func (cc *CardController) CompleteCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	card, ok := cc.ownedCard(c, user)
	if !ok {
		return nil
	}

	var input struct {
		CompletionType   string  `json:"completion_type" validate:"required,oneof=won lost completed"`
		ResolutionStatus *string `json:"resolution_status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if card.IsCompleted() {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Card already completed", nil)
	}

	updates := map[string]interface{}{
		"completion_type":  input.CompletionType,
		"progress_percent": 100,
	}
	if input.ResolutionStatus != nil {
		updates["resolution_status"] = *input.ResolutionStatus
	}

	if err := cc.DB.Model(card).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete card", err)
	}

	PublishBoardEvent(BoardEvent{Type: "card_completed", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})

	return c.JSON(utils.SuccessResponse(card))
}

// DeleteCard removes a card
func (cc *CardController) DeleteCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	card, ok := cc.ownedCard(c, user)
	if !ok {
		return nil
	}

	if err := cc.DB.Delete(card).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete card", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// ownedCard loads a card and checks it sits on one of the user's boards.
func (cc *CardController) ownedCard(c *fiber.Ctx, user *models.User) (*models.Card, bool) {
	var card models.Card
	err := cc.DB.
		Joins("JOIN pipeline_columns ON pipeline_columns.id = cards.column_id").
		Joins("JOIN pipelines ON pipelines.id = pipeline_columns.pipeline_id").
		Where("cards.id = ? AND pipelines.user_id = ?", utils.ParseUint(c.Params("id")), user.ID).
		First(&card).Error
	if err != nil {
		_ = utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
		return nil, false
	}
	return &card, true
}

func (cc *CardController) ownedColumn(c *fiber.Ctx, user *models.User, columnID uint) (*models.PipelineColumn, bool) {
	var column models.PipelineColumn
	err := cc.DB.
		Joins("JOIN pipelines ON pipelines.id = pipeline_columns.pipeline_id").
		Where("pipeline_columns.id = ? AND pipelines.user_id = ?", columnID, user.ID).
		First(&column).Error
	if err != nil {
		_ = utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
		return nil, false
	}
	return &column, true
}
