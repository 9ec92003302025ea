package utils

import (
	"strings"
	"time"

	"funilzap/models"
)

// SLA statuses
const (
	SLAStatusOK        = "ok"
	SLAStatusWarning   = "warning"
	SLAStatusOverdue   = "overdue"
	SLAStatusCompleted = "completed"
)

// SLAStatus is the result of evaluating a card against its pipeline targets
type SLAStatus struct {
	Status           string `json:"status"`
	ElapsedMinutes   int    `json:"elapsedMinutes"`
	RemainingMinutes int    `json:"remainingMinutes"`
	TargetMinutes    int    `json:"targetMinutes"`
}

// IsFinalColumn reports whether a column name is the well-known terminal stage.
func IsFinalColumn(columnName string) bool {
	return strings.Contains(strings.ToLower(columnName), "finalizado")
}

// IsFirstContactColumn reports whether a column holds brand-new conversations,
// which makes the first-response target apply instead of the ongoing one.
func IsFirstContactColumn(columnName string) bool {
	return strings.Contains(strings.ToLower(columnName), "novo")
}

// CalculateSLA classifies a card against the pipeline SLA config. Pure
// function of (now, card snapshot, column name, config); deterministic for a
// fixed now. Completed cards and cards in the finalized column short-circuit
// with zeroed minute fields.
func CalculateSLA(now time.Time, card models.Card, columnName string, cfg models.SLAConfig) SLAStatus {
	if card.IsCompleted() || IsFinalColumn(columnName) {
		return SLAStatus{Status: SLAStatusCompleted}
	}

	target := cfg.OngoingResponseMinutes
	if IsFirstContactColumn(columnName) {
		target = cfg.FirstResponseMinutes
	}
	if target <= 0 {
		target = models.DefaultOngoingResponseMinutes
	}

	elapsed := int(now.Sub(card.CreatedAt).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := target - elapsed
	if remaining < 0 {
		remaining = 0
	}

	status := SLAStatusOK
	switch {
	case elapsed >= target:
		status = SLAStatusOverdue
	case elapsed*100 >= target*cfg.WarningThresholdPercent:
		status = SLAStatusWarning
	}

	return SLAStatus{
		Status:           status,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: remaining,
		TargetMinutes:    target,
	}
}
