package controller

import (
	"testing"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/stretchr/testify/assert"
)

func idleCard(lastActive time.Time) models.Card {
	card := models.Card{}
	card.CreatedAt = lastActive.Add(-30 * 24 * time.Hour)
	card.LastActivityAt = &lastActive
	return card
}

func TestInactiveDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, inactiveDays(now, idleCard(now.Add(-10*24*time.Hour))))
	assert.Equal(t, 0, inactiveDays(now, idleCard(now.Add(-12*time.Hour))))

	// without activity the creation time is the reference
	created := models.Card{}
	created.CreatedAt = now.Add(-5 * 24 * time.Hour)
	assert.Equal(t, 5, inactiveDays(now, created))

	// a clock ahead of now never yields negative days
	assert.Equal(t, 0, inactiveDays(now, idleCard(now.Add(time.Hour))))
}

func TestRuleMatchesNonMonetaryGuard(t *testing.T) {
	rule := models.InactivityRule{
		InactivityDays:    7,
		OnlyIfNonMonetary: true,
		MoveToColumnName:  utils.Pointer("Perdidos"),
	}

	free := models.Card{Value: 0}
	assert.True(t, ruleMatches(rule, free, 10))

	paying := models.Card{Value: 500}
	assert.False(t, ruleMatches(rule, paying, 10))
}

func TestRuleMatchesThresholds(t *testing.T) {
	rule := models.InactivityRule{InactivityDays: 7}

	assert.False(t, ruleMatches(rule, models.Card{}, 6))
	assert.True(t, ruleMatches(rule, models.Card{}, 7))
	assert.True(t, ruleMatches(rule, models.Card{}, 30))
}

func TestRuleMatchesFunnelFilter(t *testing.T) {
	rule := models.InactivityRule{
		InactivityDays: 3,
		FunnelType:     utils.Pointer("vendas"),
	}

	assert.True(t, ruleMatches(rule, models.Card{FunnelType: "vendas"}, 5))
	assert.True(t, ruleMatches(rule, models.Card{FunnelType: "Vendas"}, 5))
	assert.False(t, ruleMatches(rule, models.Card{FunnelType: "suporte"}, 5))
}

func TestRuleMatchesProgressCeiling(t *testing.T) {
	rule := models.InactivityRule{
		InactivityDays:      3,
		OnlyIfProgressBelow: utils.Pointer(50),
	}

	assert.True(t, ruleMatches(rule, models.Card{ProgressPercent: 20}, 5))
	assert.False(t, ruleMatches(rule, models.Card{ProgressPercent: 50}, 5))
	assert.False(t, ruleMatches(rule, models.Card{ProgressPercent: 80}, 5))
}

func TestFirstMatchingRuleOrder(t *testing.T) {
	first := models.InactivityRule{
		InactivityDays:      7,
		MoveToColumnName:    utils.Pointer("Esfriando"),
		SetResolutionStatus: utils.Pointer("sem_resposta"),
	}
	second := models.InactivityRule{
		InactivityDays:   7,
		MoveToColumnName: utils.Pointer("Perdidos"),
	}

	matched := firstMatchingRule([]models.InactivityRule{first, second}, models.Card{}, 10)
	if assert.NotNil(t, matched) {
		assert.Equal(t, "Esfriando", *matched.MoveToColumnName)
		assert.Equal(t, "sem_resposta", *matched.SetResolutionStatus)
	}
}

func TestFirstMatchingRuleSkipsToLaterRule(t *testing.T) {
	strict := models.InactivityRule{InactivityDays: 30}
	loose := models.InactivityRule{InactivityDays: 7, MoveToColumnName: utils.Pointer("Perdidos")}

	matched := firstMatchingRule([]models.InactivityRule{strict, loose}, models.Card{}, 10)
	if assert.NotNil(t, matched) {
		assert.Equal(t, "Perdidos", *matched.MoveToColumnName)
	}
}

func TestFirstMatchingRuleNone(t *testing.T) {
	rules := []models.InactivityRule{{InactivityDays: 30}}
	assert.Nil(t, firstMatchingRule(rules, models.Card{}, 10))
}

func TestFindColumnByName(t *testing.T) {
	columns := []models.PipelineColumn{
		{Name: "Novo Contato"},
		{Name: "Perdidos"},
	}

	assert.NotNil(t, findColumnByName(columns, "perdidos"))
	assert.Nil(t, findColumnByName(columns, "Ganhos"))
}
