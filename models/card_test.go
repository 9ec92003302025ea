package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCardIsCompleted(t *testing.T) {
	card := Card{}
	assert.False(t, card.IsCompleted())

	empty := ""
	card.CompletionType = &empty
	assert.False(t, card.IsCompleted())

	won := CompletionWon
	card.CompletionType = &won
	assert.True(t, card.IsCompleted())
}

func TestCardActivityReference(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	card := Card{}
	card.CreatedAt = created
	assert.Equal(t, created, card.ActivityReference())

	later := created.Add(48 * time.Hour)
	card.LastActivityAt = &later
	assert.Equal(t, later, card.ActivityReference())

	// stale activity timestamps never move the reference backwards
	earlier := created.Add(-time.Hour)
	card.LastActivityAt = &earlier
	assert.Equal(t, created, card.ActivityReference())
}
