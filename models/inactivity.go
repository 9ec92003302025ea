package models

import (
	"gorm.io/gorm"
)

// InactivityRule describes one time-based transition for idle cards.
// Rules are evaluated per pipeline in Position order; the first rule that
// matches a card wins and no further rules are considered for it.
type InactivityRule struct {
	gorm.Model
	PipelineID uint `gorm:"not null;index" json:"pipeline_id"`

	Position       int `gorm:"default:0" json:"position"`
	InactivityDays int `gorm:"not null" json:"inactivity_days"`

	// Optional filters
	FunnelType          *string `json:"funnel_type,omitempty"`             // only cards of this funnel
	OnlyIfNonMonetary   bool    `gorm:"default:false" json:"only_if_non_monetary"`
	OnlyIfProgressBelow *int    `json:"only_if_progress_below,omitempty"` // percent ceiling

	// Actions (either or both)
	MoveToColumnName    *string `json:"move_to_column_name,omitempty"`
	SetResolutionStatus *string `json:"set_resolution_status,omitempty"`
}
