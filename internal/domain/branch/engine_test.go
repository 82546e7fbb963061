package branch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

type staticRenderer map[int]types.Block

func (r staticRenderer) Block(_ string, index int) (types.Block, bool) {
	b, ok := r[index]
	return b, ok
}

func setup(t *testing.T) (*workspace.Manager, *types.Window, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	m := workspace.NewManager(session.DefaultState(clock.Now()), nil).WithClock(clock.Now)

	payload := types.Payload{Chat: &types.ChatPayload{
		ProviderID: "deepseek-v3",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: "show me", Timestamp: 1},
			{Role: types.RoleAssistant, Content: "Intro\n\nCode block text\n\nMore text", Timestamp: 2},
		},
	}}
	source, err := m.CreateWindow(context.Background(), types.CreateWindowRequest{Type: types.WindowChat, Payload: &payload})
	require.NoError(t, err)
	return m, source, clock
}

func TestBranchCreatesWindow(t *testing.T) {
	m, source, clock := setup(t)
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), nil)

	res, err := engine.Branch(context.Background(), source.ID, 1, types.TextBlock("Code block text"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, res.Outcome)
	require.NotNil(t, res.Window)

	chat := res.Window.Data.Chat
	assert.Equal(t, "deepseek-v3", chat.ProviderID)
	assert.True(t, chat.ScrollToBottom)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "show me", chat.Messages[0].Content)
	assert.Equal(t, "Intro\n\nCode block text", chat.Messages[1].Content)

	assert.NotEqual(t, source.Position, res.Window.Position)
	focused, _ := m.Focused(types.HomeWorkspaceID)
	assert.Equal(t, res.Window.ID, focused.ID)

	// source is untouched
	orig, _ := m.Window(source.ID)
	assert.Equal(t, "Intro\n\nCode block text\n\nMore text", orig.Data.Chat.Messages[1].Content)
}

func TestBranchSingleMessageScenario(t *testing.T) {
	clock := newFakeClock()
	m := workspace.NewManager(session.DefaultState(clock.Now()), nil)
	payload := types.Payload{Chat: &types.ChatPayload{
		ProviderID: "claude-sonnet",
		Messages:   []types.Message{{Role: types.RoleAssistant, Content: "Intro\n\nCode block text\n\nMore text", Timestamp: 7}},
	}}
	source, err := m.CreateWindow(context.Background(), types.CreateWindowRequest{Type: types.WindowChat, Payload: &payload})
	require.NoError(t, err)

	res, err := NewEngine(m, nil, nil).Branch(context.Background(), source.ID, 0, types.TextBlock("Code block text"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, res.Outcome)
	require.Len(t, res.Window.Data.Chat.Messages, 1)
	assert.Equal(t, "Intro\n\nCode block text", res.Window.Data.Chat.Messages[0].Content)
}

func TestBranchNotFoundCreatesNothing(t *testing.T) {
	m, source, clock := setup(t)
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), nil)

	res, err := engine.Branch(context.Background(), source.ID, 1, types.TextBlock("not in the message"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Nil(t, res.Window)
	assert.Len(t, m.ActiveWindows(), 1)
}

func TestBranchRapidDoubleClick(t *testing.T) {
	m, source, clock := setup(t)
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), nil)
	ctx := context.Background()
	block := types.TextBlock("Code block text")

	first, err := engine.Branch(ctx, source.ID, 1, block)
	require.NoError(t, err)
	clock.Advance(50 * time.Millisecond)
	second, err := engine.Branch(ctx, source.ID, 1, block)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, first.Outcome)
	assert.Equal(t, OutcomeIgnored, second.Outcome)
	assert.Len(t, m.ActiveWindows(), 2)

	clock.Advance(60 * time.Millisecond)
	third, err := engine.Branch(ctx, source.ID, 1, block)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, third.Outcome)
	assert.Len(t, m.ActiveWindows(), 3)
}

func TestBranchInvalidSource(t *testing.T) {
	m, _, clock := setup(t)
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), nil)
	ctx := context.Background()

	_, err := engine.Branch(ctx, 999, 0, types.TextBlock("x"))
	assert.ErrorIs(t, err, ErrInvalidSource)

	settings, err := m.CreateWindow(ctx, types.CreateWindowRequest{Type: types.WindowSettings})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = engine.Branch(ctx, settings.ID, 0, types.TextBlock("x"))
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestBranchOpensInActiveWorkspace(t *testing.T) {
	m, source, clock := setup(t)
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), nil)
	ctx := context.Background()

	ws, err := m.CreateWorkspace(ctx, "Forks")
	require.NoError(t, err)

	res, err := engine.Branch(ctx, source.ID, 1, types.TextBlock("Intro"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, ws.ID, res.Window.WorkspaceID)
}

func TestBranchAt(t *testing.T) {
	m, source, clock := setup(t)
	renderer := staticRenderer{
		0: types.TextBlock("Intro"),
		1: {Kind: types.BlockCode, Children: []types.Block{types.TextBlock("Code block text")}},
	}
	engine := NewEngine(m, NewGuard(DefaultCooldown, clock.Now), renderer)
	ctx := context.Background()

	res, err := engine.BranchAt(ctx, source.ID, 1, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, "Intro\n\nCode block text", res.Window.Data.Chat.Messages[1].Content)

	clock.Advance(time.Second)
	_, err = engine.BranchAt(ctx, source.ID, 1, 5)
	assert.ErrorIs(t, err, ErrUnknownBlock)

	clock.Advance(time.Second)
	res, err = engine.BranchAt(ctx, source.ID, 9, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}
