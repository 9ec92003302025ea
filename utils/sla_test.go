package utils

import (
	"testing"
	"time"

	"funilzap/models"

	"github.com/stretchr/testify/assert"
)

func cardCreatedAt(created time.Time) models.Card {
	card := models.Card{}
	card.CreatedAt = created
	return card
}

func TestCalculateSLADefaultFirstResponse(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	card := cardCreatedAt(now.Add(-90 * time.Minute))
	cfg := models.DefaultSLAConfig(1)

	sla := CalculateSLA(now, card, "Novo Contato", cfg)

	assert.Equal(t, SLAStatusOverdue, sla.Status)
	assert.Equal(t, 90, sla.ElapsedMinutes)
	assert.Equal(t, 0, sla.RemainingMinutes)
	assert.Equal(t, 60, sla.TargetMinutes)
}

func TestCalculateSLAOngoingTarget(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	card := cardCreatedAt(now.Add(-90 * time.Minute))
	cfg := models.DefaultSLAConfig(1)

	sla := CalculateSLA(now, card, "Em Atendimento", cfg)

	assert.Equal(t, SLAStatusOK, sla.Status)
	assert.Equal(t, 90, sla.ElapsedMinutes)
	assert.Equal(t, 1350, sla.RemainingMinutes)
	assert.Equal(t, 1440, sla.TargetMinutes)
}

func TestCalculateSLAWarningThreshold(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cfg := models.DefaultSLAConfig(1)

	// 48/60 = 80% hits the warning threshold exactly
	warning := CalculateSLA(now, cardCreatedAt(now.Add(-48*time.Minute)), "Novo Contato", cfg)
	assert.Equal(t, SLAStatusWarning, warning.Status)

	ok := CalculateSLA(now, cardCreatedAt(now.Add(-47*time.Minute)), "Novo Contato", cfg)
	assert.Equal(t, SLAStatusOK, ok.Status)

	overdue := CalculateSLA(now, cardCreatedAt(now.Add(-60*time.Minute)), "Novo Contato", cfg)
	assert.Equal(t, SLAStatusOverdue, overdue.Status)
}

func TestCalculateSLACompletedCard(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cfg := models.DefaultSLAConfig(1)

	card := cardCreatedAt(now.Add(-10000 * time.Minute))
	card.CompletionType = Pointer(models.CompletionWon)

	sla := CalculateSLA(now, card, "Em Atendimento", cfg)
	assert.Equal(t, SLAStatus{Status: SLAStatusCompleted}, sla)
}

func TestCalculateSLAFinalizedColumn(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cfg := models.DefaultSLAConfig(1)
	card := cardCreatedAt(now.Add(-10000 * time.Minute))

	sla := CalculateSLA(now, card, "Finalizados", cfg)

	assert.Equal(t, SLAStatusCompleted, sla.Status)
	assert.Zero(t, sla.ElapsedMinutes)
	assert.Zero(t, sla.RemainingMinutes)
	assert.Zero(t, sla.TargetMinutes)
}

func TestCalculateSLAMonotonic(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	card := cardCreatedAt(created)
	cfg := models.DefaultSLAConfig(1)

	prev := CalculateSLA(created, card, "Em Atendimento", cfg)
	for step := 1; step <= 48; step++ {
		now := created.Add(time.Duration(step) * 37 * time.Minute)
		cur := CalculateSLA(now, card, "Em Atendimento", cfg)

		assert.GreaterOrEqual(t, cur.ElapsedMinutes, prev.ElapsedMinutes)
		assert.LessOrEqual(t, cur.RemainingMinutes, prev.RemainingMinutes)
		prev = cur
	}
}

func TestCalculateSLAZeroTargetFallsBack(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	card := cardCreatedAt(now.Add(-30 * time.Minute))
	cfg := models.SLAConfig{PipelineID: 1, WarningThresholdPercent: 80}

	sla := CalculateSLA(now, card, "Em Atendimento", cfg)

	assert.Equal(t, models.DefaultOngoingResponseMinutes, sla.TargetMinutes)
	assert.Equal(t, SLAStatusOK, sla.Status)
}

func TestColumnClassifiers(t *testing.T) {
	assert.True(t, IsFinalColumn("Finalizados"))
	assert.True(t, IsFinalColumn("FINALIZADO"))
	assert.False(t, IsFinalColumn("Em Atendimento"))

	assert.True(t, IsFirstContactColumn("Novo Contato"))
	assert.True(t, IsFirstContactColumn("novos leads"))
	assert.False(t, IsFirstContactColumn("Entrada"))
}
