package models

import (
	"time"

	"gorm.io/gorm"
)

// Completion classifications. A card has at most one; once set the card is
// excluded from SLA and inactivity evaluation.
const (
	CompletionWon       = "won"
	CompletionLost      = "lost"
	CompletionCompleted = "completed"
)

// Card represents one customer interaction/lead on a board
type Card struct {
	gorm.Model
	ColumnID uint `gorm:"not null;index" json:"column_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"` // append-only conversation log

	// Classification
	CompletionType   *string `json:"completion_type,omitempty"` // won, lost, completed
	ResolutionStatus *string `json:"resolution_status,omitempty"`
	FunnelType       string  `json:"funnel_type"` // vendas, suporte, ...
	Value            float64 `gorm:"default:0" json:"value"`
	ProgressPercent  int     `gorm:"default:0" json:"lifecycle_progress_percent"`

	// External conversation linkage
	ChatwootConversationID *int    `gorm:"index" json:"chatwoot_conversation_id,omitempty"`
	WhatsAppChatID         *string `gorm:"index" json:"whatsapp_chat_id,omitempty"`
	ContactName            string  `json:"contact_name"`

	LastActivityAt *time.Time `json:"last_activity_at"`

	// Relations
	Column PipelineColumn `json:"-"`
}

// IsCompleted reports whether the card carries a completion classification.
func (c *Card) IsCompleted() bool {
	return c.CompletionType != nil && *c.CompletionType != ""
}

// ActivityReference returns the timestamp inactivity is measured against.
func (c *Card) ActivityReference() time.Time {
	if c.LastActivityAt != nil && c.LastActivityAt.After(c.CreatedAt) {
		return *c.LastActivityAt
	}
	return c.CreatedAt
}
