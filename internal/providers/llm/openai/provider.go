// Package openai adapts OpenAI-compatible chat completion APIs. The same
// adapter serves OpenAI, DeepSeek and Groq.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
)

// Default endpoints per family
var DefaultBaseURLs = map[string]string{
	llm.FamilyOpenAI:   "https://api.openai.com/v1",
	llm.FamilyDeepSeek: "https://api.deepseek.com/v1",
	llm.FamilyGroq:     "https://api.groq.com/openai/v1",
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type response struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Provider calls one OpenAI-compatible family
type Provider struct {
	family  string
	client  *llm.Client
	baseURL string
}

// New creates the adapter for family. An empty baseURL uses the family's
// default endpoint.
func New(family string, client *llm.Client, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURLs[family]
	}
	return &Provider{family: family, client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the provider family
func (p *Provider) Name() string {
	return p.family
}

// Complete sends the system prompt and conversation, returning the first
// choice's content
func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	body := request{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages:  make([]message, 0, len(req.Messages)+1),
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	for _, t := range req.Messages {
		body.Messages = append(body.Messages, message{Role: t.Role, Content: t.Content})
	}

	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}

	var out response
	if err := p.client.PostJSON(ctx, p.family, p.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: %s: empty response", llm.ErrRequestFailed, p.family)
	}
	return out.Choices[0].Message.Content, nil
}
