// Package anthropic adapts the Anthropic messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
)

const (
	// DefaultBaseURL is the public API endpoint
	DefaultBaseURL = "https://api.anthropic.com"
	// APIVersion is sent as the anthropic-version header
	APIVersion = "2023-06-01"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Provider calls Anthropic
type Provider struct {
	client  *llm.Client
	baseURL string
}

// New creates the adapter. An empty baseURL uses DefaultBaseURL.
func New(client *llm.Client, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the provider family
func (p *Provider) Name() string {
	return llm.FamilyAnthropic
}

// Complete sends the conversation and returns the concatenated text parts
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	body := request{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  make([]message, 0, len(req.Messages)),
	}
	for _, t := range req.Messages {
		body.Messages = append(body.Messages, message{Role: t.Role, Content: t.Content})
	}

	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": APIVersion,
	}

	var out response
	if err := p.client.PostJSON(ctx, p.Name(), p.baseURL+"/v1/messages", headers, body, &out); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, part := range out.Content {
		if part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic: empty response", llm.ErrRequestFailed)
	}
	return sb.String(), nil
}
