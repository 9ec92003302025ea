package models

import (
	"gorm.io/gorm"
)

// Pipeline represents one Kanban board owned by a workspace
type Pipeline struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// Integration bindings
	ChatwootInboxID *int `gorm:"index" json:"chatwoot_inbox_id,omitempty"` // inbound Chatwoot conversations land here
	AutoCreateCards bool `gorm:"default:true" json:"auto_create_cards"`
	AIEnabled       bool `gorm:"default:false" json:"ai_enabled"`

	// Relations
	Columns         []PipelineColumn `gorm:"foreignKey:PipelineID" json:"columns,omitempty"`
	SLAConfig       *SLAConfig       `gorm:"foreignKey:PipelineID" json:"sla_config,omitempty"`
	InactivityRules []InactivityRule `gorm:"foreignKey:PipelineID" json:"inactivity_rules,omitempty"`
}

// PipelineColumn is a named stage within a pipeline
type PipelineColumn struct {
	gorm.Model
	PipelineID uint `gorm:"not null;index" json:"pipeline_id"`

	Name     string `gorm:"not null" json:"name"`
	Position int    `gorm:"default:0" json:"position"`

	// Relations
	Cards []Card `gorm:"foreignKey:ColumnID" json:"cards,omitempty"`
}

// Well-known column names. SLA and inactivity logic treat the finalized
// column as terminal; the inbox column is the fallback for auto-created cards.
const (
	ColumnNameNewContact = "Novo Contato"
	ColumnNameFinalized  = "Finalizados"
	ColumnNameInbox      = "Entrada"
)
