package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendLine(t *testing.T) {
	desc, appended := AppendLine("", "[14:32] 👤 Cliente Maria: Olá")
	assert.True(t, appended)
	assert.Equal(t, "[14:32] 👤 Cliente Maria: Olá", desc)

	desc, appended = AppendLine(desc, "[14:33] 🧑‍💼 Atendente João: Oi!")
	assert.True(t, appended)
	assert.Equal(t, "[14:32] 👤 Cliente Maria: Olá\n[14:33] 🧑‍💼 Atendente João: Oi!", desc)
}

func TestAppendLineSkipsVerbatimDuplicate(t *testing.T) {
	desc, appended := AppendLine("[14:32] 👤 Cliente Maria: Olá", "[14:32] 👤 Cliente Maria: Olá")
	assert.False(t, appended)
	assert.Equal(t, "[14:32] 👤 Cliente Maria: Olá", desc)
}

func TestAppendLineSkipsEmpty(t *testing.T) {
	desc, appended := AppendLine("existing", "")
	assert.False(t, appended)
	assert.Equal(t, "existing", desc)
}

func TestAppendLineCapKeepsRecentTail(t *testing.T) {
	var lines []string
	for i := 0; i < 2000; i++ {
		lines = append(lines, strings.Repeat("a", 60))
	}
	desc := strings.Join(lines, "\n")

	final := "[14:32] 👤 Cliente Maria: última mensagem"
	desc, appended := AppendLine(desc, final)

	assert.True(t, appended)
	assert.LessOrEqual(t, len(desc), MaxDescriptionBytes)
	assert.True(t, strings.HasSuffix(desc, final))
}
