package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/zorder"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/id"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// DefaultSize is the size of a window opened without one
var DefaultSize = types.Size{Width: 360, Height: 480}

// Persister mirrors the full state to durable storage
type Persister interface {
	Save(ctx context.Context, state types.State) error
}

// Manager orchestrates workspaces and their windows
type Manager struct {
	mu         sync.RWMutex
	workspaces []*types.Workspace // Protected by mu, creation order
	windows    zorder.Groups      // Protected by mu
	owner      map[int64]int64    // Protected by mu, window id -> workspace id
	active     int64              // Protected by mu

	windowIDs    *id.Sequence
	workspaceIDs *id.Sequence
	zorder       *zorder.Controller

	persister   Persister
	publisher   events.Publisher
	metrics     *monitoring.Metrics
	logger      *zap.Logger
	clock       func() time.Time
	defaults    func(types.WindowType) types.Payload
	defaultSize types.Size
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// NewManager restores a manager from state. A zero state yields Home only.
func NewManager(state types.State, persister Persister) *Manager {
	m := &Manager{
		windows:     make(zorder.Groups),
		owner:       make(map[int64]int64),
		active:      state.ActiveWorkspaceID,
		zorder:      zorder.NewController(),
		persister:   persister,
		publisher:   noopPublisher{},
		logger:      zap.NewNop(),
		clock:       time.Now,
		defaults:    types.EmptyPayload,
		defaultSize: DefaultSize,
	}

	if len(state.Workspaces) == 0 {
		state.Workspaces = []types.Workspace{{
			ID:        types.HomeWorkspaceID,
			Name:      types.HomeWorkspaceName,
			CreatedAt: time.Now().UTC(),
		}}
	}

	var maxWorkspace, maxWindow int64 = types.HomeWorkspaceID, 0
	for i := range state.Workspaces {
		ws := state.Workspaces[i]
		m.workspaces = append(m.workspaces, &ws)
		m.windows[ws.ID] = []*types.Window{}
		maxWorkspace = max(maxWorkspace, ws.ID)
	}
	for wsID, list := range state.WindowsByWorkspace {
		if _, ok := m.windows[wsID]; !ok {
			continue
		}
		for i := range list {
			w := list[i].Clone()
			m.windows[wsID] = append(m.windows[wsID], w)
			m.owner[w.ID] = wsID
			maxWindow = max(maxWindow, w.ID)
		}
	}
	if _, ok := m.windows[m.active]; !ok {
		m.active = types.HomeWorkspaceID
	}

	m.windowIDs = id.NewSequence(state.Counters.NextWindowID)
	m.windowIDs.Seed(maxWindow)
	m.workspaceIDs = id.NewSequence(state.Counters.NextWorkspaceID)
	m.workspaceIDs.Seed(maxWorkspace)
	m.zorder.Reset(m.windows)

	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithEvents publishes desktop notifications to p
func (m *Manager) WithEvents(p events.Publisher) *Manager {
	if p != nil {
		m.publisher = p
	}
	return m
}

// WithLogger sets the logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithClock sets the time source for timestamps
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	if clock != nil {
		m.clock = clock
	}
	return m
}

// WithPayloadDefaults sets the payload used when a window is created
// without one
func (m *Manager) WithPayloadDefaults(fn func(types.WindowType) types.Payload) *Manager {
	if fn != nil {
		m.defaults = fn
	}
	return m
}

// WithDefaultSize sets the size of windows created without one
func (m *Manager) WithDefaultSize(size types.Size) *Manager {
	m.defaultSize = clampSize(size)
	return m
}

// WithZOrder replaces the z-order controller, reseeding it from open windows
func (m *Manager) WithZOrder(c *zorder.Controller) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.zorder = c
	m.zorder.Reset(m.windows)
	return m
}

// mutate runs fn under the write lock, persists the new state if fn
// succeeds and publishes the returned events after unlocking.
func (m *Manager) mutate(ctx context.Context, fn func() ([]events.Event, error)) error {
	m.mu.Lock()
	evts, err := fn()
	if err == nil {
		m.persistLocked(ctx)
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	for _, e := range evts {
		m.publisher.Publish(e)
	}
	return nil
}

// persistLocked writes the state through. Failures are logged and counted;
// the next successful write stores the full state again.
func (m *Manager) persistLocked(ctx context.Context) {
	if m.metrics != nil {
		m.metrics.SetDesktop(len(m.owner), len(m.workspaces))
	}
	if m.persister == nil {
		return
	}

	err := m.persister.Save(ctx, m.snapshotLocked())
	if m.metrics != nil {
		m.metrics.RecordPersist(err)
	}
	if err != nil {
		m.logger.Error("Failed to persist desktop state", zap.Error(err))
	}
}

func (m *Manager) snapshotLocked() types.State {
	state := types.State{
		Workspaces:         make([]types.Workspace, 0, len(m.workspaces)),
		WindowsByWorkspace: make(map[int64][]types.Window, len(m.windows)),
		ActiveWorkspaceID:  m.active,
		Counters: types.Counters{
			NextWindowID:    m.windowIDs.Peek(),
			NextWorkspaceID: m.workspaceIDs.Peek(),
		},
	}
	for _, ws := range m.workspaces {
		state.Workspaces = append(state.Workspaces, *ws)
		list := make([]types.Window, 0, len(m.windows[ws.ID]))
		for _, w := range m.windows[ws.ID] {
			list = append(list, *w.Clone())
		}
		state.WindowsByWorkspace[ws.ID] = list
	}
	return state
}

func (m *Manager) workspaceLocked(wsID int64) (*types.Workspace, bool) {
	for _, ws := range m.workspaces {
		if ws.ID == wsID {
			return ws, true
		}
	}
	return nil, false
}

// activeWindowLocked finds a window in the active workspace
func (m *Manager) activeWindowLocked(windowID int64) (*types.Window, error) {
	for _, w := range m.windows[m.active] {
		if w.ID == windowID {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, windowID)
}

// anyWindowLocked finds a window in any workspace
func (m *Manager) anyWindowLocked(windowID int64) (*types.Window, error) {
	wsID, ok := m.owner[windowID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, windowID)
	}
	for _, w := range m.windows[wsID] {
		if w.ID == windowID {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, windowID)
}

func (m *Manager) focusedIDLocked(wsID int64) int64 {
	if w := zorder.Focused(m.windows[wsID]); w != nil {
		return w.ID
	}
	return 0
}

// stampLocked fills missing chat timestamps and masks settings credentials
func (m *Manager) stampLocked(p *types.Payload) {
	if p.Settings != nil {
		p.Settings.MaskCredentials()
	}
	if p.Chat == nil {
		return
	}
	now := m.clock().UnixMilli()
	for i := range p.Chat.Messages {
		if p.Chat.Messages[i].Timestamp == 0 {
			p.Chat.Messages[i].Timestamp = now
		}
	}
}

// Snapshot returns a deep copy of the full state
func (m *Manager) Snapshot() types.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := types.Stats{
		Workspaces:        len(m.workspaces),
		Windows:           len(m.owner),
		ActiveWindows:     len(m.windows[m.active]),
		ActiveWorkspaceID: m.active,
	}
	if focused := m.focusedIDLocked(m.active); focused != 0 {
		stats.FocusedWindowID = &focused
	}
	return stats
}
