package llm

import (
	"context"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

const (
	// MaxTokens caps every completion
	MaxTokens = 4096
	// SystemPrompt asks every model for markdown so replies render as blocks
	SystemPrompt = "Always format your responses in markdown. Use code blocks with language identifiers when sharing code. Use proper headings, lists, and other markdown formatting for better readability."
)

// Turn is one message of the conversation sent to a provider
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral chat completion request
type Request struct {
	Model     string
	APIKey    string
	System    string
	MaxTokens int
	Messages  []Turn
}

// Provider adapts one provider family's HTTP API
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// CredentialSource resolves the stored API key of a provider family
type CredentialSource interface {
	GetCredential(provider string) (string, bool)
}

// Turns converts chat history into provider turns
func Turns(history []types.Message) []Turn {
	out := make([]Turn, 0, len(history))
	for _, m := range history {
		out = append(out, Turn{Role: string(m.Role), Content: m.Content})
	}
	return out
}
