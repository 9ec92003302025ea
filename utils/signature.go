package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	normalizedPartLimit = 300
	signatureLimit      = 200
)

// EventSignature derives the stable dedup key for an inbound event. When the
// source provides a message identifier it is used directly; otherwise the key
// is built from the normalized conversation id, sender, message type and
// content. The result never exceeds 200 characters, matching the column size
// of the processed-events table.
func EventSignature(messageID, conversationKey, senderName, messageType, content string) string {
	if id := strings.TrimSpace(messageID); id != "" {
		return truncate("msg:"+id, signatureLimit)
	}

	parts := []string{
		normalizePart(conversationKey),
		normalizePart(senderName),
		normalizePart(messageType),
		normalizePart(content),
	}
	return truncate(strings.Join(parts, "|"), signatureLimit)
}

// normalizePart trims, lowercases, collapses whitespace runs and bounds the
// part length so pathological payloads cannot blow up the key.
func normalizePart(s string) string {
	collapsed := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return truncate(collapsed, normalizedPartLimit)
}

// truncate cuts on a rune boundary so accented text near the limit never
// yields an invalid UTF-8 key the store would reject.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
