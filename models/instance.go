package models

import (
	"time"

	"gorm.io/gorm"
)

// Instance connection statuses
const (
	InstanceStatusDisconnected = "disconnected"
	InstanceStatusConnecting   = "connecting"
	InstanceStatusConnected    = "connected"
	InstanceStatusError        = "error"
)

// Gateway providers
const (
	ProviderEvolution  = "evolution"
	ProviderWPPConnect = "wppconnect"
)

// WhatsAppInstance represents one gateway connection. Created by user action,
// its status transitions via connect/disconnect calls and webhook-reported
// connection-state events. Deleted on user request with best-effort remote
// teardown first.
type WhatsAppInstance struct {
	gorm.Model
	UserID     uint `gorm:"not null;index" json:"user_id"`
	PipelineID uint `gorm:"not null;index" json:"pipeline_id"` // inbound chats land on this board

	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Provider string `gorm:"default:'evolution'" json:"provider"` // evolution, wppconnect
	BaseURL  string `json:"base_url"`
	APIToken string `json:"-"`

	Status      string `gorm:"default:'disconnected'" json:"status"`
	PhoneNumber string `json:"phone_number"`
	LastError   string `json:"last_error,omitempty"`

	LastConnectedAt *time.Time `json:"last_connected_at,omitempty"`
}
