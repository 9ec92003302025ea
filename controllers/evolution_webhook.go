package controller

import (
	"strings"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
)

type evolutionWebhookPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Data     struct {
		Key struct {
			RemoteJid string `json:"remoteJid"`
			ID        string `json:"id"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		PushName         string                 `json:"pushName"`
		Message          map[string]interface{} `json:"message"`
		MessageTimestamp int64                  `json:"messageTimestamp"`
		State            string                 `json:"state"` // connection.update
	} `json:"data"`
}

// HandleEvolutionWebhook ingests Evolution API gateway events. Message
// upserts become card updates; connection updates mutate the instance row.
func (wc *WebhookController) HandleEvolutionWebhook(c *fiber.Ctx) error {
	var payload evolutionWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	switch payload.Event {
	case "connection.update":
		return wc.handleConnectionUpdate(c, payload.Instance, payload.Data.State)
	case "messages.upsert":
		// fallthrough to message handling below
	default:
		return c.JSON(fiber.Map{"message": "Event ignored"})
	}

	chatID := payload.Data.Key.RemoteJid
	if chatID == "" || payload.Data.Key.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status broadcasts are not conversations
	if isBroadcastJid(chatID) {
		return c.JSON(fiber.Map{"message": "Broadcast ignored"})
	}

	content, kind, ok := utils.ExtractContent(payload.Data.Message)
	if !ok {
		return c.JSON(fiber.Map{"message": "No content to process"})
	}
	if kind == utils.ContentKindAudio {
		content = wc.Transcriber.TranscribeOrPlaceholder(c.UserContext(), utils.AudioURL(payload.Data.Message))
	}

	sender := evolutionSenderName(payload.Data.PushName, chatID)

	signature := utils.EventSignature(payload.Data.Key.ID, chatID, sender, kind, content)

	role := utils.RoleClient
	if payload.Data.Key.FromMe {
		role = utils.RoleAgent
	}
	ts := time.Now()
	if payload.Data.MessageTimestamp > 0 {
		ts = time.Unix(payload.Data.MessageTimestamp, 0)
	}
	line := utils.FormatLine(ts, role, sender, content)

	var card *models.Card
	var pipeline *models.Pipeline
	duplicate, err := wc.processOnce(signature, "evolution", func() error {
		existing, err := wc.openCardByChat(chatID)
		if err != nil {
			return err
		}
		if existing == nil {
			pipeline = wc.pipelineForInstance(payload.Instance)
			if pipeline == nil || !pipeline.AutoCreateCards {
				return nil
			}
			card, err = wc.createCard(pipeline, sender, line, func(card *models.Card) {
				card.WhatsAppChatID = utils.Pointer(chatID)
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
		utils.LogError("webhook_processing_failed", err, map[string]interface{}{"source": "evolution"})
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

// handleConnectionUpdate maps gateway connection states onto the instance row.
func (wc *WebhookController) handleConnectionUpdate(c *fiber.Ctx, instanceName, state string) error {
	if instanceName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	status := connectionStateStatus(state)
	updates := map[string]interface{}{"status": status}
	if status == models.InstanceStatusConnected {
		updates["last_connected_at"] = time.Now()
		updates["last_error"] = ""
	}

	result := wc.DB.Model(&models.WhatsAppInstance{}).
		Where("name = ?", instanceName).
		Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": result.Error.Error()})
	}
	if result.RowsAffected == 0 {
		// The gateway may report instances this workspace never registered
		return c.JSON(fiber.Map{"message": "Unknown instance"})
	}

	return c.JSON(fiber.Map{"message": "Instance status updated"})
}

// pipelineForInstance finds the board an instance feeds, or nil.
func (wc *WebhookController) pipelineForInstance(instanceName string) *models.Pipeline {
	var instance models.WhatsAppInstance
	if err := wc.DB.Where("name = ?", instanceName).First(&instance).Error; err != nil {
		return nil
	}
	var pipeline models.Pipeline
	if err := wc.DB.First(&pipeline, instance.PipelineID).Error; err != nil {
		return nil
	}
	return &pipeline
}

func isBroadcastJid(jid string) bool {
	return jid == "status@broadcast" || strings.HasSuffix(jid, "@broadcast")
}

// evolutionSenderName prefers the push name and falls back to the phone part
// of the jid.
func evolutionSenderName(pushName, jid string) string {
	if name := strings.TrimSpace(pushName); name != "" {
		return name
	}
	if idx := strings.IndexByte(jid, '@'); idx > 0 {
		return jid[:idx]
	}
	return jid
}

func connectionStateStatus(state string) string {
	switch strings.ToLower(state) {
	case "open":
		return models.InstanceStatusConnected
	case "connecting":
		return models.InstanceStatusConnecting
	case "close", "closed":
		return models.InstanceStatusDisconnected
	default:
		return models.InstanceStatusError
	}
}
