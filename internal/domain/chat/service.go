// Package chat drives chat windows: sending messages to the selected
// operator, switching operators, clearing and exporting history.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/utils"
)

const (
	// Greeting opens every new chat window
	Greeting = "What would you like to discuss today?"
	// FallbackReply is appended when the provider call fails
	FallbackReply = "Sorry, I encountered an error processing your request."
)

// Windows is the part of the workspace manager the service needs
type Windows interface {
	Window(windowID int64) (*types.Window, bool)
	UpdateChat(ctx context.Context, windowID int64, fn func(*types.ChatPayload) error) (*types.Window, error)
	AppendMessages(ctx context.Context, windowID int64, msgs ...types.Message) (*types.Window, error)
}

// Router sends a chat to a provider
type Router interface {
	SendChat(ctx context.Context, operatorID, text string, history []types.Message) (string, error)
	Available(operatorID string) bool
}

// OperatorView is an operator as listed to the user
type OperatorView struct {
	llm.Operator
	Selected bool `json:"selected"`
}

// Service handles chat window operations
type Service struct {
	windows Windows
	router  Router
	logger  *zap.Logger
	clock   func() time.Time

	mu       sync.Mutex
	inflight map[int64]struct{}
}

// NewService creates a chat service
func NewService(windows Windows, router Router) *Service {
	return &Service{
		windows:  windows,
		router:   router,
		logger:   zap.NewNop(),
		clock:    time.Now,
		inflight: make(map[int64]struct{}),
	}
}

// WithLogger sets the logger
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the message timestamp source
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// DefaultPayload is the initial data of a new window. Chat windows start
// on the default operator with the greeting.
func DefaultPayload(t types.WindowType) types.Payload {
	p := types.EmptyPayload(t)
	if p.Chat != nil {
		p.Chat.ProviderID = llm.DefaultOperatorID
		p.Chat.Messages = []types.Message{{Role: types.RoleAssistant, Content: Greeting}}
	}
	return p
}

func (s *Service) chatWindow(windowID int64) (*types.Window, error) {
	w, ok := s.windows.Window(windowID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotChatWindow, windowID)
	}
	if w.Type != types.WindowChat || w.Data.Chat == nil {
		return nil, fmt.Errorf("%w: %d is %s", ErrNotChatWindow, windowID, w.Type)
	}
	return w, nil
}

func (s *Service) acquire(windowID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[windowID]; busy {
		return false
	}
	s.inflight[windowID] = struct{}{}
	return true
}

func (s *Service) release(windowID int64) {
	s.mu.Lock()
	delete(s.inflight, windowID)
	s.mu.Unlock()
}

// Pending reports whether a send is in flight for the window
func (s *Service) Pending(windowID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[windowID]
	return busy
}

// Send appends the user's message, asks the window's operator and appends
// the reply. Provider failures become the fallback reply, not an error.
func (s *Service) Send(ctx context.Context, windowID int64, text string) (*types.Window, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := utils.ValidateSize([]byte(text), "message", utils.MaxMessageSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageTooLong, err)
	}
	w, err := s.chatWindow(windowID)
	if err != nil {
		return nil, err
	}
	if !s.acquire(windowID) {
		return nil, fmt.Errorf("%w: %d", ErrAwaitingResponse, windowID)
	}
	defer s.release(windowID)

	history := w.Data.Chat.Messages
	operator := w.Data.Chat.ProviderID

	user := types.Message{Role: types.RoleUser, Content: text, Timestamp: s.clock().UnixMilli()}
	if _, err := s.windows.AppendMessages(ctx, windowID, user); err != nil {
		return nil, err
	}

	reply, err := s.router.SendChat(ctx, operator, text, history)
	if err != nil {
		s.logger.Warn("chat reply failed",
			zap.Int64("window_id", windowID),
			zap.String("operator", operator),
			zap.Error(err))
		reply = FallbackReply
	}

	// the window may have closed while waiting; that error is the caller's answer
	assistant := types.Message{Role: types.RoleAssistant, Content: reply, Timestamp: s.clock().UnixMilli()}
	return s.windows.AppendMessages(context.WithoutCancel(ctx), windowID, assistant)
}

// Operators lists the operators that can be selected for the window.
// Operators without a stored credential are left out.
func (s *Service) Operators(windowID int64) ([]OperatorView, error) {
	w, err := s.chatWindow(windowID)
	if err != nil {
		return nil, err
	}

	var out []OperatorView
	for _, op := range llm.Operators() {
		if !s.router.Available(op.ID) {
			continue
		}
		out = append(out, OperatorView{Operator: op, Selected: op.ID == w.Data.Chat.ProviderID})
	}
	return out, nil
}

// SelectOperator switches the window to another operator
func (s *Service) SelectOperator(ctx context.Context, windowID int64, operatorID string) (*types.Window, error) {
	if _, ok := llm.LookupOperator(operatorID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, operatorID)
	}
	if !s.router.Available(operatorID) {
		return nil, fmt.Errorf("%w: %s", ErrOperatorUnavailable, operatorID)
	}
	if _, err := s.chatWindow(windowID); err != nil {
		return nil, err
	}

	return s.windows.UpdateChat(ctx, windowID, func(chat *types.ChatPayload) error {
		chat.ProviderID = operatorID
		return nil
	})
}

// ClearScope selects which messages Clear removes
type ClearScope string

const (
	ClearAll       ClearScope = "all"
	ClearUser      ClearScope = "user"
	ClearAssistant ClearScope = "assistant"
)

// Clear removes messages from the window's history
func (s *Service) Clear(ctx context.Context, windowID int64, scope ClearScope) (*types.Window, error) {
	var drop func(types.Role) bool
	switch scope {
	case ClearAll:
		drop = func(types.Role) bool { return true }
	case ClearUser:
		drop = func(r types.Role) bool { return r == types.RoleUser }
	case ClearAssistant:
		drop = func(r types.Role) bool { return r == types.RoleAssistant }
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if _, err := s.chatWindow(windowID); err != nil {
		return nil, err
	}

	return s.windows.UpdateChat(ctx, windowID, func(chat *types.ChatPayload) error {
		kept := make([]types.Message, 0, len(chat.Messages))
		for _, m := range chat.Messages {
			if !drop(m.Role) {
				kept = append(kept, m)
			}
		}
		chat.Messages = kept
		return nil
	})
}
