package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEventSignatureWithMessageID(t *testing.T) {
	sig := EventSignature("ABC123", "conv-9", "Maria", "text", "Olá")
	assert.Equal(t, "msg:ABC123", sig)

	// content changes never affect an id-keyed signature
	assert.Equal(t, sig, EventSignature("ABC123", "conv-9", "Maria", "text", "other"))
}

func TestEventSignatureNormalization(t *testing.T) {
	a := EventSignature("", "Conv-9", "  Maria   Silva ", "Text", "Olá,   tudo bem?")
	b := EventSignature("", "conv-9", "maria silva", "text", "olá, tudo bem?")
	assert.Equal(t, a, b)
	assert.Equal(t, "conv-9|maria silva|text|olá, tudo bem?", a)
}

func TestEventSignatureDistinguishesContent(t *testing.T) {
	a := EventSignature("", "conv-9", "Maria", "text", "primeira")
	b := EventSignature("", "conv-9", "Maria", "text", "segunda")
	assert.NotEqual(t, a, b)
}

func TestEventSignatureBounded(t *testing.T) {
	long := strings.Repeat("x", 5000)

	assert.LessOrEqual(t, len(EventSignature("", long, long, long, long)), 200)
	assert.LessOrEqual(t, len(EventSignature(long, "", "", "", "")), 200)
}

func TestEventSignatureTruncatesOnRuneBoundary(t *testing.T) {
	accented := strings.Repeat("ã", 400) // 2 bytes per rune, crosses both limits

	sig := EventSignature("", "conv-9", "Maria", "text", accented)
	assert.LessOrEqual(t, len(sig), 200)
	assert.True(t, utf8.ValidString(sig))

	assert.True(t, utf8.ValidString(EventSignature(accented, "", "", "", "")))
}
