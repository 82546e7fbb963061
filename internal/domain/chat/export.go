package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// Format is an export encoding
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

type transcript struct {
	WindowID   int64           `json:"windowId" yaml:"windowId"`
	Operator   string          `json:"operator" yaml:"operator"`
	ExportedAt time.Time       `json:"exportedAt" yaml:"exportedAt"`
	Messages   []types.Message `json:"messages" yaml:"messages"`
}

// Export renders the window's conversation and returns it with its sniffed
// content type
func (s *Service) Export(windowID int64, format Format) ([]byte, string, error) {
	w, err := s.chatWindow(windowID)
	if err != nil {
		return nil, "", err
	}

	doc := transcript{
		WindowID:   w.ID,
		Operator:   w.Data.Chat.ProviderID,
		ExportedAt: s.clock().UTC(),
		Messages:   w.Data.Chat.Messages,
	}

	var data []byte
	switch format {
	case FormatText:
		data = []byte(renderText(doc))
	case FormatMarkdown:
		data = []byte(renderMarkdown(doc))
	case FormatJSON:
		data, err = sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("export %s: %w", format, err)
	}

	return data, mimetype.Detect(data).String(), nil
}

func renderText(doc transcript) string {
	var sb strings.Builder
	for _, m := range doc.Messages {
		fmt.Fprintf(&sb, "[%s] %s\n\n", m.Role, m.Content)
	}
	return sb.String()
}

func renderMarkdown(doc transcript) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Conversation %d\n\n", doc.WindowID)
	fmt.Fprintf(&sb, "_Operator: %s, exported %s_\n\n", doc.Operator, doc.ExportedAt.Format(time.RFC3339))
	for _, m := range doc.Messages {
		title := "User"
		if m.Role == types.RoleAssistant {
			title = "Assistant"
		}
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", title, m.Content)
	}
	return sb.String()
}
