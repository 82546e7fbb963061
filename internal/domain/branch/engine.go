package branch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// ErrInvalidSource is returned when the source window is not an open chat
var ErrInvalidSource = errors.New("branch: source is not an open chat window")

// ErrUnknownBlock is returned when a block index does not exist
var ErrUnknownBlock = errors.New("branch: unknown block")

// Outcome is the result kind of a branch attempt
type Outcome string

const (
	// OutcomeCreated means a new chat window was opened
	OutcomeCreated Outcome = "created"
	// OutcomeNotFound means the anchor text was not in the message
	OutcomeNotFound Outcome = "not_found"
	// OutcomeIgnored means another branch was running or cooling down
	OutcomeIgnored Outcome = "ignored"
)

// Result of Branch. Window is set only for OutcomeCreated.
type Result struct {
	Outcome Outcome       `json:"outcome"`
	Window  *types.Window `json:"window,omitempty"`
}

// WindowManager is the part of the workspace manager the engine needs
type WindowManager interface {
	Window(windowID int64) (*types.Window, bool)
	ActiveWorkspaceID() int64
	CreateWindow(ctx context.Context, req types.CreateWindowRequest) (*types.Window, error)
}

// Renderer splits message content into clickable blocks
type Renderer interface {
	Block(content string, index int) (types.Block, bool)
}

// Engine opens forked chat windows
type Engine struct {
	windows  WindowManager
	guard    *Guard
	renderer Renderer
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewEngine creates an engine. The guard is owned by the engine's caller so
// one guard can be shared by every entry point that branches.
func NewEngine(windows WindowManager, guard *Guard, renderer Renderer) *Engine {
	if guard == nil {
		guard = NewGuard(DefaultCooldown, nil)
	}
	return &Engine{
		windows:  windows,
		guard:    guard,
		renderer: renderer,
		logger:   zap.NewNop(),
	}
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// WithLogger sets the logger
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Branch forks sourceID at block inside message messageIndex. The new chat
// window opens in the active workspace with the source's provider.
func (e *Engine) Branch(ctx context.Context, sourceID int64, messageIndex int, block types.Block) (Result, error) {
	if !e.guard.TryAcquire() {
		e.record(OutcomeIgnored)
		return Result{Outcome: OutcomeIgnored}, nil
	}
	defer e.guard.Release()

	source, err := e.source(sourceID)
	if err != nil {
		return Result{}, err
	}
	return e.branchLocked(ctx, source, messageIndex, block)
}

// BranchAt is Branch with the block identified by its index among the
// rendered blocks of the message.
func (e *Engine) BranchAt(ctx context.Context, sourceID int64, messageIndex, blockIndex int) (Result, error) {
	if e.renderer == nil {
		return Result{}, fmt.Errorf("%w: no renderer", ErrUnknownBlock)
	}
	if !e.guard.TryAcquire() {
		e.record(OutcomeIgnored)
		return Result{Outcome: OutcomeIgnored}, nil
	}
	defer e.guard.Release()

	source, err := e.source(sourceID)
	if err != nil {
		return Result{}, err
	}
	messages := source.Data.Chat.Messages
	if messageIndex < 0 || messageIndex >= len(messages) {
		e.record(OutcomeNotFound)
		return Result{Outcome: OutcomeNotFound}, nil
	}
	block, ok := e.renderer.Block(messages[messageIndex].Content, blockIndex)
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownBlock, blockIndex)
	}
	return e.branchLocked(ctx, source, messageIndex, block)
}

func (e *Engine) source(sourceID int64) (*types.Window, error) {
	source, ok := e.windows.Window(sourceID)
	if !ok || source.Type != types.WindowChat || source.Data.Chat == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSource, sourceID)
	}
	return source, nil
}

func (e *Engine) branchLocked(ctx context.Context, source *types.Window, messageIndex int, block types.Block) (Result, error) {
	history, ok := Truncate(source.Data.Chat.Messages, messageIndex, block)
	if !ok {
		e.logger.Debug("Branch anchor not found",
			zap.Int64("source", source.ID),
			zap.Int("message", messageIndex))
		e.record(OutcomeNotFound)
		return Result{Outcome: OutcomeNotFound}, nil
	}

	active := e.windows.ActiveWorkspaceID()
	payload := types.Payload{Chat: &types.ChatPayload{
		ProviderID:     source.Data.Chat.ProviderID,
		Messages:       history,
		ScrollToBottom: true,
	}}
	w, err := e.windows.CreateWindow(ctx, types.CreateWindowRequest{
		Type:        types.WindowChat,
		WorkspaceID: &active,
		Payload:     &payload,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to open branch window: %w", err)
	}

	e.logger.Info("Conversation branched",
		zap.Int64("source", source.ID),
		zap.Int64("window", w.ID),
		zap.Int("messages", len(history)))
	e.record(OutcomeCreated)
	return Result{Outcome: OutcomeCreated, Window: w}, nil
}

func (e *Engine) record(o Outcome) {
	if e.metrics != nil {
		e.metrics.RecordBranch(string(o))
	}
}
