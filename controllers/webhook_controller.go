package controller

import (
	"errors"
	"log"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"gorm.io/gorm"
)

// DedupStore records webhook event signatures exactly once. Record reports
// whether the signature was seen before; Forget releases a signature whose
// event ultimately failed to process.
type DedupStore interface {
	Record(signature, source string) (bool, error)
	Forget(signature string)
}

// WebhookController holds the shared machinery behind every inbound message
// source: event dedup, card resolution, the append mutation and the AI
// re-analysis trigger. Each source gets its own handler file.
type WebhookController struct {
	DB          *gorm.DB
	Logger      *log.Logger
	Events      DedupStore
	Analyzer    *utils.AnalyzerClient
	Transcriber *utils.TranscriberClient
}

func NewWebhookController(db *gorm.DB, logger *log.Logger, analyzer *utils.AnalyzerClient, transcriber *utils.TranscriberClient) *WebhookController {
	return &WebhookController{
		DB:          db,
		Logger:      logger,
		Events:      &gormEventStore{db: db, logger: logger},
		Analyzer:    analyzer,
		Transcriber: transcriber,
	}
}

// gormEventStore backs DedupStore with the processed_events table. The unique
// index is the only concurrency guard: a duplicate-key violation means
// another request already handled the event. Any other insert failure
// propagates so the caller can return a 500 and let the source retry.
type gormEventStore struct {
	db     *gorm.DB
	logger *log.Logger
}

func (s *gormEventStore) Record(signature, source string) (bool, error) {
	record := models.ProcessedEvent{Signature: signature, Source: source}
	err := s.db.Create(&record).Error
	if err == nil {
		return false, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return false, err
}

func (s *gormEventStore) Forget(signature string) {
	if err := s.db.Where("signature = ?", signature).Delete(&models.ProcessedEvent{}).Error; err != nil {
		s.logger.Printf("failed to release event signature %q: %v", signature, err)
	}
}

// processOnce runs mutate under the event signature. A duplicate signature
// skips mutate entirely. When mutate fails the signature is released again,
// so the 500 the handler returns leaves the source free to retry instead of
// having its retry swallowed as a duplicate.
func (wc *WebhookController) processOnce(signature, source string, mutate func() error) (bool, error) {
	duplicate, err := wc.Events.Record(signature, source)
	if err != nil || duplicate {
		return duplicate, err
	}
	if err := mutate(); err != nil {
		wc.Events.Forget(signature)
		return false, err
	}
	return false, nil
}

// openCardByConversation finds the open card linked to a Chatwoot
// conversation. At most one should exist; when a creation race left more than
// one, the most recent wins and the anomaly is logged.
func (wc *WebhookController) openCardByConversation(conversationID int) (*models.Card, error) {
	var cards []models.Card
	err := wc.DB.Where("chatwoot_conversation_id = ? AND completion_type IS NULL", conversationID).
		Order("created_at DESC").Limit(2).Find(&cards).Error
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if len(cards) > 1 {
		wc.Logger.Printf("duplicate open cards for conversation %d, using card %d", conversationID, cards[0].ID)
	}
	return &cards[0], nil
}

// openCardByChat is the WhatsApp-side twin of openCardByConversation.
func (wc *WebhookController) openCardByChat(chatID string) (*models.Card, error) {
	var cards []models.Card
	err := wc.DB.Where("whatsapp_chat_id = ? AND completion_type IS NULL", chatID).
		Order("created_at DESC").Limit(2).Find(&cards).Error
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	if len(cards) > 1 {
		wc.Logger.Printf("duplicate open cards for chat %s, using card %d", chatID, cards[0].ID)
	}
	return &cards[0], nil
}

// firstColumn returns the pipeline's first column by position, creating the
// fallback inbox column on demand for boards whose columns were all removed.
func (wc *WebhookController) firstColumn(pipelineID uint) (*models.PipelineColumn, error) {
	var col models.PipelineColumn
	err := wc.DB.Where("pipeline_id = ?", pipelineID).
		Order("position ASC, id ASC").First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		col = models.PipelineColumn{PipelineID: pipelineID, Name: models.ColumnNameInbox, Position: 0}
		if err := wc.DB.Create(&col).Error; err != nil {
			return nil, err
		}
		return &col, nil
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// createCard inserts a new card into the pipeline's first column. link
// populates the external conversation fields before the insert.
func (wc *WebhookController) createCard(pipeline *models.Pipeline, title, firstLine string, link func(*models.Card)) (*models.Card, error) {
	col, err := wc.firstColumn(pipeline.ID)
	if err != nil {
		return nil, err
	}

	card := models.Card{
		ColumnID:       col.ID,
		Title:          title,
		Description:    firstLine,
		ContactName:    title,
		LastActivityAt: utils.Pointer(time.Now()),
	}
	link(&card)

	if err := wc.DB.Create(&card).Error; err != nil {
		return nil, err
	}

	PublishBoardEvent(BoardEvent{Type: "card_created", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})
	return &card, nil
}

// appendToCard applies a formatted line to the running conversation log and
// bumps the activity timestamps. A verbatim repeat of the line is skipped.
func (wc *WebhookController) appendToCard(card *models.Card, line string) error {
	updated, changed := utils.AppendLine(card.Description, line)
	if !changed {
		return nil
	}

	now := time.Now()
	if err := wc.DB.Model(card).Updates(map[string]interface{}{
		"description":      updated,
		"last_activity_at": now,
	}).Error; err != nil {
		return err
	}
	card.Description = updated
	card.LastActivityAt = &now

	PublishBoardEvent(BoardEvent{Type: "card_updated", CardID: card.ID, ColumnID: card.ColumnID, Title: card.Title})
	return nil
}

// pipelineForCard resolves the pipeline a card sits on, via its column.
func (wc *WebhookController) pipelineForCard(card *models.Card) (*models.Pipeline, error) {
	var col models.PipelineColumn
	if err := wc.DB.First(&col, card.ColumnID).Error; err != nil {
		return nil, err
	}
	var pipeline models.Pipeline
	if err := wc.DB.First(&pipeline, col.PipelineID).Error; err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// reanalyze fires the AI trigger for the card. Dispatched without awaiting;
// the analyzer logs its own failures and never blocks the webhook response.
func (wc *WebhookController) reanalyze(pipeline *models.Pipeline, card models.Card) {
	if pipeline == nil || !pipeline.AIEnabled || !wc.Analyzer.Enabled() {
		return
	}
	go wc.Analyzer.Reanalyze(card)
}
