package branch

import (
	"strings"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// ExtractText returns the rightmost-deepest non-blank leaf text of b,
// trimmed. It returns "" when the block holds no text at all.
func ExtractText(b types.Block) string {
	if b.IsLeaf() {
		return strings.TrimSpace(b.Text)
	}
	for i := len(b.Children) - 1; i >= 0; i-- {
		if text := ExtractText(b.Children[i]); text != "" {
			return text
		}
	}
	return ""
}

// Truncate builds the forked history for a click on block inside
// messages[messageIndex]. It reports false when the index is out of range
// or the anchor text does not occur in the message. The input is never
// modified.
func Truncate(messages []types.Message, messageIndex int, block types.Block) ([]types.Message, bool) {
	if messageIndex < 0 || messageIndex >= len(messages) {
		return nil, false
	}

	anchor := ExtractText(block)
	if anchor == "" {
		return nil, false
	}

	target := messages[messageIndex]
	at := strings.Index(target.Content, anchor)
	if at < 0 {
		return nil, false
	}
	target.Content = target.Content[:at+len(anchor)]

	out := make([]types.Message, 0, messageIndex+1)
	out = append(out, messages[:messageIndex]...)
	return append(out, target), true
}
