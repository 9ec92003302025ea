package models

import (
	"gorm.io/gorm"
)

// Default SLA targets applied when a pipeline has no config row yet
const (
	DefaultFirstResponseMinutes    = 60
	DefaultOngoingResponseMinutes  = 1440
	DefaultWarningThresholdPercent = 80
)

// SLAConfig holds the per-pipeline response targets. Created lazily; the
// calculator falls back to the defaults above when no row exists.
type SLAConfig struct {
	gorm.Model
	PipelineID uint `gorm:"not null;uniqueIndex" json:"pipeline_id"`

	FirstResponseMinutes    int `gorm:"default:60" json:"first_response_minutes"`
	OngoingResponseMinutes  int `gorm:"default:1440" json:"ongoing_response_minutes"`
	WarningThresholdPercent int `gorm:"default:80" json:"warning_threshold_percent"`
}

// DefaultSLAConfig returns an unsaved config carrying the defaults.
func DefaultSLAConfig(pipelineID uint) SLAConfig {
	return SLAConfig{
		PipelineID:              pipelineID,
		FirstResponseMinutes:    DefaultFirstResponseMinutes,
		OngoingResponseMinutes:  DefaultOngoingResponseMinutes,
		WarningThresholdPercent: DefaultWarningThresholdPercent,
	}
}
