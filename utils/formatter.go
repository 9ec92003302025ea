package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Message roles
type Role string

const (
	RoleClient Role = "client"
	RoleAgent  Role = "agent"
)

// AudioPlaceholder replaces audio content when no transcription is available
const AudioPlaceholder = "[Áudio]"

// Content kinds reported by ExtractContent
const (
	ContentKindText  = "text"
	ContentKindAudio = "audio"
)

var roleIcons = map[Role]string{
	RoleClient: "👤",
	RoleAgent:  "🧑‍💼",
}

var roleLabels = map[Role]string{
	RoleClient: "Cliente",
	RoleAgent:  "Atendente",
}

// FormatLine renders one conversation-log line. The shape is a contract the
// board and the tests depend on: [HH:MM] {icon} {label} {name}: {content}
func FormatLine(ts time.Time, role Role, senderName, content string) string {
	icon, ok := roleIcons[role]
	if !ok {
		icon = roleIcons[RoleClient]
	}
	label, ok := roleLabels[role]
	if !ok {
		label = roleLabels[RoleClient]
	}
	return fmt.Sprintf("[%s] %s %s %s: %s", ts.Format("15:04"), icon, label, strings.TrimSpace(senderName), content)
}

// ExtractContent pulls display text out of a gateway message variant. The
// probe order is fixed: plain text body, extended text body, image caption,
// document caption, then any remaining key exposing a caption or text field.
// An audio variant returns kind "audio" with empty content; the caller
// substitutes a transcription or the placeholder. ok is false when the
// message carries nothing displayable.
func ExtractContent(message map[string]interface{}) (content string, kind string, ok bool) {
	if message == nil {
		return "", "", false
	}

	if text := stringField(message, "conversation"); text != "" {
		return text, ContentKindText, true
	}
	if text := nestedStringField(message, "extendedTextMessage", "text"); text != "" {
		return text, ContentKindText, true
	}
	if _, has := message["audioMessage"]; has {
		return "", ContentKindAudio, true
	}
	if caption := nestedStringField(message, "imageMessage", "caption"); caption != "" {
		return caption, ContentKindText, true
	}
	if caption := nestedStringField(message, "documentMessage", "caption"); caption != "" {
		return caption, ContentKindText, true
	}

	// Last resort: any remaining variant exposing a caption or text field.
	// Keys are visited in sorted order so extraction stays deterministic.
	keys := make([]string, 0, len(message))
	for key := range message {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch key {
		case "conversation", "extendedTextMessage", "imageMessage", "documentMessage", "audioMessage":
			continue
		}
		inner, isMap := message[key].(map[string]interface{})
		if !isMap {
			continue
		}
		if caption := stringField(inner, "caption"); caption != "" {
			return caption, ContentKindText, true
		}
		if text := stringField(inner, "text"); text != "" {
			return text, ContentKindText, true
		}
	}

	return "", "", false
}

// AudioURL returns the media URL of an audio variant, when present.
func AudioURL(message map[string]interface{}) string {
	return nestedStringField(message, "audioMessage", "url")
}

func stringField(m map[string]interface{}, key string) string {
	if raw, has := m[key]; has {
		if s, isString := raw.(string); isString {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func nestedStringField(m map[string]interface{}, outer, inner string) string {
	if raw, has := m[outer]; has {
		if nested, isMap := raw.(map[string]interface{}); isMap {
			return stringField(nested, inner)
		}
	}
	return ""
}
