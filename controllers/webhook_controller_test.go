package controller

import (
	"errors"
	"io"
	"log"
	"testing"

	"funilzap/models"
	"funilzap/utils"

	"github.com/stretchr/testify/assert"
)

// memoryEventStore is an in-memory DedupStore for exercising the
// record/forget sequencing without a database.
type memoryEventStore struct {
	seen map[string]string
}

func (m *memoryEventStore) Record(signature, source string) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]string{}
	}
	if _, dup := m.seen[signature]; dup {
		return true, nil
	}
	m.seen[signature] = source
	return false, nil
}

func (m *memoryEventStore) Forget(signature string) {
	delete(m.seen, signature)
}

func TestProcessOnceSkipsDuplicate(t *testing.T) {
	wc := &WebhookController{Events: &memoryEventStore{}, Logger: log.New(io.Discard, "", 0)}

	applied := 0
	duplicate, err := wc.processOnce("msg:1", "chatwoot", func() error {
		applied++
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, duplicate)

	duplicate, err = wc.processOnce("msg:1", "chatwoot", func() error {
		applied++
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, 1, applied)
}

func TestProcessOnceReleasesSignatureOnFailure(t *testing.T) {
	wc := &WebhookController{Events: &memoryEventStore{}, Logger: log.New(io.Discard, "", 0)}

	boom := errors.New("insert failed")
	duplicate, err := wc.processOnce("msg:1", "chatwoot", func() error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, duplicate)

	// The source retries after the 500; the retry must not be swallowed
	// as a duplicate of the failed attempt.
	applied := 0
	duplicate, err = wc.processOnce("msg:1", "chatwoot", func() error {
		applied++
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, 1, applied)
}

func TestIsBroadcastJid(t *testing.T) {
	assert.True(t, isBroadcastJid("status@broadcast"))
	assert.True(t, isBroadcastJid("1234567890@broadcast"))
	assert.False(t, isBroadcastJid("5511999990000@s.whatsapp.net"))
}

func TestEvolutionSenderName(t *testing.T) {
	assert.Equal(t, "Maria", evolutionSenderName("Maria", "5511999990000@s.whatsapp.net"))
	assert.Equal(t, "5511999990000", evolutionSenderName("", "5511999990000@s.whatsapp.net"))
	assert.Equal(t, "5511999990000", evolutionSenderName("   ", "5511999990000@s.whatsapp.net"))
	assert.Equal(t, "somejid", evolutionSenderName("", "somejid"))
}

func TestConnectionStateStatus(t *testing.T) {
	assert.Equal(t, models.InstanceStatusConnected, connectionStateStatus("open"))
	assert.Equal(t, models.InstanceStatusConnected, connectionStateStatus("OPEN"))
	assert.Equal(t, models.InstanceStatusConnecting, connectionStateStatus("connecting"))
	assert.Equal(t, models.InstanceStatusDisconnected, connectionStateStatus("close"))
	assert.Equal(t, models.InstanceStatusDisconnected, connectionStateStatus("closed"))
	assert.Equal(t, models.InstanceStatusError, connectionStateStatus("refused"))
}

func TestWPPConnectContent(t *testing.T) {
	content, kind := wppconnectContent(wppconnectWebhookPayload{Type: "chat", Body: "oi"})
	assert.Equal(t, "oi", content)
	assert.Equal(t, utils.ContentKindText, kind)

	content, kind = wppconnectContent(wppconnectWebhookPayload{Type: "ptt"})
	assert.Empty(t, content)
	assert.Equal(t, utils.ContentKindAudio, kind)

	content, kind = wppconnectContent(wppconnectWebhookPayload{Type: "audio"})
	assert.Empty(t, content)
	assert.Equal(t, utils.ContentKindAudio, kind)

	content, kind = wppconnectContent(wppconnectWebhookPayload{Type: "image", Caption: "foto"})
	assert.Equal(t, "foto", content)
	assert.Equal(t, utils.ContentKindText, kind)

	content, _ = wppconnectContent(wppconnectWebhookPayload{Type: "image"})
	assert.Empty(t, content)
}

func TestWPPConnectStatusState(t *testing.T) {
	assert.Equal(t, "open", wppconnectStatusState("inChat"))
	assert.Equal(t, "open", wppconnectStatusState("isLogged"))
	assert.Equal(t, "open", wppconnectStatusState("CONNECTED"))
	assert.Equal(t, "connecting", wppconnectStatusState("qrReadSuccess"))
	assert.Equal(t, "close", wppconnectStatusState("notLogged"))
	assert.Equal(t, "close", wppconnectStatusState("browserClose"))
	assert.Equal(t, "weird", wppconnectStatusState("weird"))
}
