package models

import (
	"gorm.io/gorm"
)

// ProcessedEvent records the signature of an inbound webhook event exactly
// once. The unique index is the dedup mechanism: a duplicate-key violation on
// insert means the event was already handled. Rows are never read back.
type ProcessedEvent struct {
	gorm.Model
	Signature string `gorm:"uniqueIndex;size:200;not null" json:"signature"`
	Source    string `gorm:"size:32" json:"source"` // chatwoot, evolution, wppconnect
}
