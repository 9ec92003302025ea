package controller

import (
	"context"
	"strconv"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
)

type chatwootWebhookPayload struct {
	Event        string `json:"event"`
	Conversation *struct {
		ID      int `json:"id"`
		InboxID int `json:"inbox_id"`
	} `json:"conversation"`
	Message *struct {
		ID          int    `json:"id"`
		MessageType string `json:"message_type"` // incoming, outgoing
		Content     string `json:"content"`
		Private     bool   `json:"private"`
		Sender      struct {
			Name string `json:"name"`
		} `json:"sender"`
		Attachments []struct {
			FileType string `json:"file_type"` // audio, image, file
			DataURL  string `json:"data_url"`
		} `json:"attachments"`
	} `json:"message"`
}

// HandleChatwootWebhook ingests conversational-support events and turns new
// messages into Kanban card updates.
func (wc *WebhookController) HandleChatwootWebhook(c *fiber.Ctx) error {
	var payload chatwootWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.Event != "message_created" {
		return c.JSON(fiber.Map{"message": "Event ignored"})
	}

	if payload.Conversation == nil || payload.Message == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}
	msg := payload.Message

	// Private notes never reach the board
	if msg.Private {
		return c.JSON(fiber.Map{"message": "Private message ignored"})
	}

	content := msg.Content
	if content == "" {
		content = wc.chatwootAttachmentContent(c.UserContext(), payload)
	}
	if content == "" {
		return c.JSON(fiber.Map{"message": "No content to process"})
	}

	signature := utils.EventSignature(
		chatwootMessageID(msg.ID),
		strconv.Itoa(payload.Conversation.ID),
		msg.Sender.Name,
		msg.MessageType,
		content,
	)

	role := utils.RoleClient
	if msg.MessageType == "outgoing" {
		role = utils.RoleAgent
	}
	line := utils.FormatLine(time.Now(), role, msg.Sender.Name, content)

	var card *models.Card
	var pipeline *models.Pipeline
	duplicate, err := wc.processOnce(signature, "chatwoot", func() error {
		existing, err := wc.openCardByConversation(payload.Conversation.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			pipeline = wc.pipelineForInbox(payload.Conversation.InboxID)
			if pipeline == nil || !pipeline.AutoCreateCards {
				// The inbox may simply not be wired to a board yet
				return nil
			}
			card, err = wc.createCard(pipeline, msg.Sender.Name, line, func(card *models.Card) {
				card.ChatwootConversationID = utils.Pointer(payload.Conversation.ID)
			})
			return err
		}

		card = existing
		if err := wc.appendToCard(card, line); err != nil {
			return err
		}
		if pipeline, err = wc.pipelineForCard(card); err != nil {
			wc.Logger.Printf("pipeline lookup failed for card %d: %v", card.ID, err)
		}
		return nil
	})
	if err != nil {
		utils.LogError("webhook_processing_failed", err, map[string]interface{}{"source": "chatwoot"})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update card"})
	}
	if duplicate {
		return c.JSON(fiber.Map{"message": "Duplicate event ignored"})
	}
	if card == nil {
		return c.JSON(fiber.Map{"message": "No card for conversation"})
	}

	wc.reanalyze(pipeline, *card)

	return c.JSON(fiber.Map{"message": "Card updated successfully"})
}

// chatwootAttachmentContent extracts displayable content from attachment-only
// messages. Audio is replaced by a transcription or the placeholder.
func (wc *WebhookController) chatwootAttachmentContent(ctx context.Context, payload chatwootWebhookPayload) string {
	for _, att := range payload.Message.Attachments {
		switch att.FileType {
		case "audio":
			return wc.Transcriber.TranscribeOrPlaceholder(ctx, att.DataURL)
		case "image":
			return "[Imagem]"
		}
	}
	return ""
}

// chatwootMessageID returns the dedup id string for a message. Chatwoot ids
// start at 1; a zero means the payload carried no id field, and an empty
// string makes the signature fall back to the composite key instead of every
// id-less message colliding on one shared value.
func chatwootMessageID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// pipelineForInbox finds the pipeline bound to a Chatwoot inbox, or nil.
func (wc *WebhookController) pipelineForInbox(inboxID int) *models.Pipeline {
	var pipeline models.Pipeline
	if err := wc.DB.Where("chatwoot_inbox_id = ?", inboxID).First(&pipeline).Error; err != nil {
		return nil
	}
	return &pipeline
}
