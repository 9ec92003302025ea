package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLineClient(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 32, 0, 0, time.UTC)
	line := FormatLine(ts, RoleClient, "Maria", "Olá")
	assert.Equal(t, "[14:32] 👤 Cliente Maria: Olá", line)
}

func TestFormatLineAgent(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)
	line := FormatLine(ts, RoleAgent, "João", "Bom dia, como posso ajudar?")
	assert.Equal(t, "[09:05] 🧑‍💼 Atendente João: Bom dia, como posso ajudar?", line)
}

func TestFormatLineUnknownRoleDefaultsToClient(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 32, 0, 0, time.UTC)
	line := FormatLine(ts, Role("bot"), "Maria", "Olá")
	assert.Equal(t, "[14:32] 👤 Cliente Maria: Olá", line)
}

func TestFormatLineDeterministic(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 32, 0, 0, time.UTC)
	first := FormatLine(ts, RoleClient, "Maria", "Olá")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, FormatLine(ts, RoleClient, "Maria", "Olá"))
	}
}

func TestExtractContentPlainText(t *testing.T) {
	content, kind, ok := ExtractContent(map[string]interface{}{
		"conversation": "oi, tudo bem?",
	})
	assert.True(t, ok)
	assert.Equal(t, ContentKindText, kind)
	assert.Equal(t, "oi, tudo bem?", content)
}

func TestExtractContentExtendedText(t *testing.T) {
	content, kind, ok := ExtractContent(map[string]interface{}{
		"extendedTextMessage": map[string]interface{}{"text": "olha esse link"},
	})
	assert.True(t, ok)
	assert.Equal(t, ContentKindText, kind)
	assert.Equal(t, "olha esse link", content)
}

func TestExtractContentAudio(t *testing.T) {
	content, kind, ok := ExtractContent(map[string]interface{}{
		"audioMessage": map[string]interface{}{"url": "https://cdn.example/a.ogg"},
	})
	assert.True(t, ok)
	assert.Equal(t, ContentKindAudio, kind)
	assert.Empty(t, content)
}

func TestExtractContentCaptions(t *testing.T) {
	content, kind, ok := ExtractContent(map[string]interface{}{
		"imageMessage": map[string]interface{}{"caption": "foto do produto"},
	})
	assert.True(t, ok)
	assert.Equal(t, ContentKindText, kind)
	assert.Equal(t, "foto do produto", content)

	content, _, ok = ExtractContent(map[string]interface{}{
		"documentMessage": map[string]interface{}{"caption": "orçamento.pdf"},
	})
	assert.True(t, ok)
	assert.Equal(t, "orçamento.pdf", content)
}

func TestExtractContentProbeOrder(t *testing.T) {
	// The plain text body wins over every media caption
	content, _, ok := ExtractContent(map[string]interface{}{
		"conversation": "texto",
		"imageMessage": map[string]interface{}{"caption": "legenda"},
	})
	assert.True(t, ok)
	assert.Equal(t, "texto", content)
}

func TestExtractContentUnknownVariant(t *testing.T) {
	content, kind, ok := ExtractContent(map[string]interface{}{
		"videoMessage": map[string]interface{}{"caption": "vídeo da visita"},
	})
	assert.True(t, ok)
	assert.Equal(t, ContentKindText, kind)
	assert.Equal(t, "vídeo da visita", content)
}

func TestExtractContentNothingDisplayable(t *testing.T) {
	_, _, ok := ExtractContent(map[string]interface{}{
		"reactionMessage": map[string]interface{}{"key": "x"},
	})
	assert.False(t, ok)

	_, _, ok = ExtractContent(nil)
	assert.False(t, ok)
}

func TestAudioURL(t *testing.T) {
	url := AudioURL(map[string]interface{}{
		"audioMessage": map[string]interface{}{"url": "https://cdn.example/a.ogg"},
	})
	assert.Equal(t, "https://cdn.example/a.ogg", url)

	assert.Empty(t, AudioURL(map[string]interface{}{"conversation": "oi"}))
}
