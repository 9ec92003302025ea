package utils

import (
	"strings"
)

// MaxDescriptionBytes caps the per-card conversation log. When an append
// would exceed it, the oldest lines are dropped so the board keeps showing
// the recent tail of the conversation.
const MaxDescriptionBytes = 64 * 1024

// AppendLine concatenates a formatted line onto a card description with a
// newline separator. Returns the new description and false when the line
// already occurs verbatim; the dedup check upstream is the primary
// idempotence mechanism, this guard only covers replays it cannot see.
func AppendLine(description, line string) (string, bool) {
	if line == "" {
		return description, false
	}
	if description != "" && strings.Contains(description, line) {
		return description, false
	}

	updated := line
	if description != "" {
		updated = description + "\n" + line
	}

	for len(updated) > MaxDescriptionBytes {
		idx := strings.IndexByte(updated, '\n')
		if idx < 0 {
			updated = updated[len(updated)-MaxDescriptionBytes:]
			break
		}
		updated = updated[idx+1:]
	}

	return updated, true
}
