package controller

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// newChatwootTestApp wires the handler without a database; only the
// validation and short-circuit paths are exercised here.
func newChatwootTestApp() *fiber.App {
	wc := NewWebhookController(
		nil,
		log.New(io.Discard, "", 0),
		utils.NewAnalyzerClient("", log.New(io.Discard, "", 0)),
		utils.NewTranscriberClient(""),
	)

	app := fiber.New()
	app.Post("/webhooks/chatwoot", wc.HandleChatwootWebhook)
	return app
}

func postJSON(app *fiber.App, path, body string) (int, string) {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		return 0, ""
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func TestChatwootWebhookRejectsMalformedBody(t *testing.T) {
	app := newChatwootTestApp()

	status, body := postJSON(app, "/webhooks/chatwoot", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid webhook payload")
}

func TestChatwootWebhookIgnoresOtherEvents(t *testing.T) {
	app := newChatwootTestApp()

	status, body := postJSON(app, "/webhooks/chatwoot", `{"event":"conversation_updated"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Event ignored")
}

func TestChatwootWebhookRejectsMissingMessage(t *testing.T) {
	app := newChatwootTestApp()

	status, body := postJSON(app, "/webhooks/chatwoot", `{"event":"message_created"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid webhook payload")
}

func TestChatwootWebhookIgnoresPrivateNotes(t *testing.T) {
	app := newChatwootTestApp()

	payload := `{
		"event": "message_created",
		"conversation": {"id": 42, "inbox_id": 7},
		"message": {"id": 1, "message_type": "outgoing", "content": "anotação interna", "private": true, "sender": {"name": "João"}}
	}`
	status, body := postJSON(app, "/webhooks/chatwoot", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Private message ignored")
}

func TestChatwootMessageID(t *testing.T) {
	assert.Equal(t, "7", chatwootMessageID(7))
	assert.Equal(t, "", chatwootMessageID(0))

	// Two id-less messages from different conversations must not collide
	// on a shared id-keyed signature.
	a := utils.EventSignature(chatwootMessageID(0), "42", "Maria", "incoming", "Olá")
	b := utils.EventSignature(chatwootMessageID(0), "99", "João", "incoming", "Outra mensagem")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, "msg:0", a)
}

func TestChatwootWebhookIgnoresEmptyMessages(t *testing.T) {
	app := newChatwootTestApp()

	payload := `{
		"event": "message_created",
		"conversation": {"id": 42, "inbox_id": 7},
		"message": {"id": 1, "message_type": "incoming", "content": "", "private": false, "sender": {"name": "Maria"}}
	}`
	status, body := postJSON(app, "/webhooks/chatwoot", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "No content to process")
}
