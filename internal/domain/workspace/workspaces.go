package workspace

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/utils"
)

// CreateWorkspace adds a workspace and makes it active
func (m *Manager) CreateWorkspace(ctx context.Context, name string) (*types.Workspace, error) {
	var created *types.Workspace
	err := m.mutate(ctx, func() ([]events.Event, error) {
		ws, err := m.createWorkspaceLocked(name)
		if err != nil {
			return nil, err
		}
		c := *ws
		created = &c
		return []events.Event{{Type: events.WorkspaceChanged, WorkspaceID: ws.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (m *Manager) createWorkspaceLocked(name string) (*types.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := utils.ValidateString(name, "workspace name", 1, utils.MaxNameLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	for _, ws := range m.workspaces {
		if strings.EqualFold(ws.Name, name) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	ws := &types.Workspace{
		ID:        m.workspaceIDs.Next(),
		Name:      name,
		CreatedAt: m.clock().UTC(),
	}
	m.workspaces = append(m.workspaces, ws)
	m.windows[ws.ID] = []*types.Window{}
	m.active = ws.ID

	m.logger.Debug("Workspace created", zap.Int64("workspace", ws.ID), zap.String("name", ws.Name))
	return ws, nil
}

// DeleteWorkspace removes a workspace and all of its windows. Deleting the
// active workspace switches to Home.
func (m *Manager) DeleteWorkspace(ctx context.Context, wsID int64) error {
	return m.mutate(ctx, func() ([]events.Event, error) {
		if wsID == types.HomeWorkspaceID {
			return nil, ErrProtectedWorkspace
		}
		idx := -1
		for i, ws := range m.workspaces {
			if ws.ID == wsID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWorkspace, wsID)
		}

		var evts []events.Event
		for _, w := range m.windows[wsID] {
			delete(m.owner, w.ID)
			evts = append(evts, events.Event{Type: events.WindowClosed, WorkspaceID: wsID, WindowID: w.ID})
		}
		delete(m.windows, wsID)
		m.workspaces = append(m.workspaces[:idx:idx], m.workspaces[idx+1:]...)
		evts = append(evts, events.Event{Type: events.WorkspaceDeleted, WorkspaceID: wsID})

		if m.active == wsID {
			m.active = types.HomeWorkspaceID
			evts = append(evts, events.Event{Type: events.WorkspaceChanged, WorkspaceID: m.active})
		}

		m.logger.Debug("Workspace deleted", zap.Int64("workspace", wsID), zap.Int64("active", m.active))
		return evts, nil
	})
}

// SwitchWorkspace makes wsID the active workspace
func (m *Manager) SwitchWorkspace(ctx context.Context, wsID int64) error {
	return m.mutate(ctx, func() ([]events.Event, error) {
		if _, ok := m.workspaceLocked(wsID); !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWorkspace, wsID)
		}
		m.active = wsID
		return []events.Event{{Type: events.WorkspaceChanged, WorkspaceID: wsID}}, nil
	})
}

// SubmitWorkspaceForm turns a workspace-creation window of the active
// workspace into a workspace: the trimmed name is validated, the workspace
// is created and activated, and the form window is closed.
func (m *Manager) SubmitWorkspaceForm(ctx context.Context, windowID int64) (*types.Workspace, error) {
	var created *types.Workspace
	err := m.mutate(ctx, func() ([]events.Event, error) {
		w, err := m.activeWindowLocked(windowID)
		if err != nil {
			return nil, err
		}
		if w.Type != types.WindowWorkspaceCreation || w.Data.Form == nil {
			return nil, fmt.Errorf("%w: window %d is %s", ErrPayloadMismatch, windowID, w.Type)
		}

		ws, err := m.createWorkspaceLocked(w.Data.Form.Name)
		if err != nil {
			return nil, err
		}
		evts, err := m.closeWindowLocked(windowID)
		if err != nil {
			return nil, err
		}

		c := *ws
		created = &c
		return append(evts, events.Event{Type: events.WorkspaceChanged, WorkspaceID: ws.ID}), nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Workspaces returns all workspaces in creation order
func (m *Manager) Workspaces() []types.Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Workspace, len(m.workspaces))
	for i, ws := range m.workspaces {
		out[i] = *ws
	}
	return out
}

// Workspace returns a workspace by id
func (m *Manager) Workspace(wsID int64) (types.Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws, ok := m.workspaceLocked(wsID)
	if !ok {
		return types.Workspace{}, false
	}
	return *ws, true
}

// ActiveWorkspace returns the active workspace
func (m *Manager) ActiveWorkspace() types.Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ws, _ := m.workspaceLocked(m.active)
	return *ws
}

// ActiveWorkspaceID returns the id of the active workspace
func (m *Manager) ActiveWorkspaceID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}
