package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Router resolves an operator to its provider family and sends chats
type Router struct {
	mu        sync.RWMutex
	providers map[string]Provider
	creds     CredentialSource
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewRouter creates a router reading API keys from creds
func NewRouter(creds CredentialSource) *Router {
	return &Router{
		providers: make(map[string]Provider),
		creds:     creds,
		logger:    zap.NewNop(),
	}
}

// WithMetrics records provider request counts and latency
func (r *Router) WithMetrics(m *monitoring.Metrics) *Router {
	r.metrics = m
	return r
}

// WithLogger sets the logger
func (r *Router) WithLogger(l *zap.Logger) *Router {
	if l != nil {
		r.logger = l
	}
	return r
}

// Register adds or replaces the adapter for a provider family
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Provider returns the adapter for a family
func (r *Router) Provider(family string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[family]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, family)
	}
	return p, nil
}

// Available reports whether the operator has an adapter and a stored key
func (r *Router) Available(operatorID string) bool {
	op, ok := LookupOperator(operatorID)
	if !ok {
		return false
	}
	if _, err := r.Provider(op.Provider); err != nil {
		return false
	}
	_, ok = r.creds.GetCredential(op.Provider)
	return ok
}

// SendChat sends text after history to the operator's model and returns
// the reply text
func (r *Router) SendChat(ctx context.Context, operatorID, text string, history []types.Message) (string, error) {
	op, ok := LookupOperator(operatorID)
	if !ok {
		return "", fmt.Errorf("%w: operator %s", ErrUnknownProvider, operatorID)
	}
	p, err := r.Provider(op.Provider)
	if err != nil {
		return "", err
	}
	key, ok := r.creds.GetCredential(op.Provider)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %s", ErrCredentialMissing, op.Provider)
	}

	req := Request{
		Model:     op.Model,
		APIKey:    key,
		System:    SystemPrompt,
		MaxTokens: MaxTokens,
		Messages:  append(Turns(history), Turn{Role: string(types.RoleUser), Content: text}),
	}

	timer := monitoring.NewTimer(r.metrics, op.Provider)
	reply, err := p.Complete(ctx, req)
	if err != nil {
		timer.Stop(statusOf(err))
		r.logger.Warn("provider request failed",
			zap.String("provider", op.Provider),
			zap.String("operator", op.ID),
			zap.Error(err))
		if !errors.Is(err, ErrRequestFailed) {
			err = fmt.Errorf("%w: %s: %v", ErrRequestFailed, op.Provider, err)
		}
		return "", err
	}
	timer.Stop("ok")

	return reply, nil
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	var re *RequestError
	if errors.As(err, &re) && re.StatusCode != 0 {
		return strconv.Itoa(re.StatusCode)
	}
	return "error"
}
