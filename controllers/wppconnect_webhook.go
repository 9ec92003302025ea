package controller

import (
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
)

type wppconnectWebhookPayload struct {
	Event     string `json:"event"`   // onmessage, onack, onpresencechanged, status-find
	Session   string `json:"session"` // gateway instance name
	ID        string `json:"id"`
	From      string `json:"from"`
	FromMe    bool   `json:"fromMe"`
	Type      string `json:"type"` // chat, image, ptt, audio, document
	Body      string `json:"body"`
	Caption   string `json:"caption"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"` // status-find events
	Sender    struct {
		Name     string `json:"name"`
		Pushname string `json:"pushname"`
	} `json:"sender"`
}

// HandleWPPConnectWebhook ingests events from the WPPConnect gateway variant.
// Same card flow as Evolution; only the payload shape differs.
func (wc *WebhookController) HandleWPPConnectWebhook(c *fiber.Ctx) error {
	var payload wppconnectWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	switch payload.Event {
	case "status-find":
		return wc.handleConnectionUpdate(c, payload.Session, wppconnectStatusState(payload.Status))
	case "onmessage":
		// fallthrough to message handling below
	default:
		return c.JSON(fiber.Map{"message": "Event ignored"})
	}

	if payload.From == "" || payload.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}
	if isBroadcastJid(payload.From) {
		return c.JSON(fiber.Map{"message": "Broadcast ignored"})
	}

	content, kind := wppconnectContent(payload)
	if kind == utils.ContentKindAudio {
		content = wc.Transcriber.TranscribeOrPlaceholder(c.UserContext(), "")
	}
	if content == "" {
		return c.JSON(fiber.Map{"message": "No content to process"})
	}

	sender := payload.Sender.Name
	if sender == "" {
		sender = payload.Sender.Pushname
	}
	sender = evolutionSenderName(sender, payload.From)

	signature := utils.EventSignature(payload.ID, payload.From, sender, kind, content)

	role := utils.RoleClient
	if payload.FromMe {
		role = utils.RoleAgent
	}
	ts := time.Now()
	if payload.Timestamp > 0 {
		ts = time.Unix(payload.Timestamp, 0)
	}
	line := utils.FormatLine(ts, role, sender, content)

	var card *models.Card
	var pipeline *models.Pipeline
	duplicate, err := wc.processOnce(signature, "wppconnect", func() error {
		existing, err := wc.openCardByChat(payload.From)
		if err != nil {
			return err
		}
		if existing == nil {
			pipeline = wc.pipelineForInstance(payload.Session)
			if pipeline == nil || !pipeline.AutoCreateCards {
				return nil
			}
			card, err = wc.createCard(pipeline, sender, line, func(card *models.Card) {
				card.WhatsAppChatID = utils.Pointer(payload.From)
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
		utils.LogError("webhook_processing_failed", err, map[string]interface{}{"source": "wppconnect"})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if duplicate {
		return c.JSON(fiber.Map{"message": "Duplicate event ignored"})
	}
	if card == nil {
		return c.JSON(fiber.Map{"message": "No card for chat"})
	}

	wc.reanalyze(pipeline, *card)

	return c.JSON(fiber.Map{"message": "Card updated successfully"})
}

// wppconnectContent maps the flat WPPConnect message fields onto (content,
// kind): body for chat messages, caption for media, audio marker for voice.
func wppconnectContent(payload wppconnectWebhookPayload) (string, string) {
	switch payload.Type {
	case "ptt", "audio":
		return "", utils.ContentKindAudio
	case "image", "document", "video":
		if payload.Caption != "" {
			return payload.Caption, utils.ContentKindText
		}
		return "", utils.ContentKindText
	default:
		return payload.Body, utils.ContentKindText
	}
}

// wppconnectStatusState translates WPPConnect session statuses into the
// connection states shared with the Evolution handler.
func wppconnectStatusState(status string) string {
	switch status {
	case "inChat", "isLogged", "CONNECTED":
		return "open"
	case "qrReadSuccess", "OPENING", "PAIRING":
		return "connecting"
	case "notLogged", "browserClose", "DISCONNECTED", "CLOSED":
		return "close"
	default:
		return status
	}
}
