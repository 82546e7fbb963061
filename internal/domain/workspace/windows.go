package workspace

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/layout"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/zorder"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// MinSize is the smallest size a window can be resized to
var MinSize = types.Size{Width: 300, Height: 400}

// CreateWindow opens a window in the requested workspace (the active one
// when unset) and focuses it.
func (m *Manager) CreateWindow(ctx context.Context, req types.CreateWindowRequest) (*types.Window, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWindowType, req.Type)
	}

	var payload types.Payload
	if req.Payload != nil {
		payload = req.Payload.Clone()
	} else {
		payload = m.defaults(req.Type)
	}
	if !payload.Matches(req.Type) {
		return nil, fmt.Errorf("%w: %s", ErrPayloadMismatch, req.Type)
	}

	var created *types.Window
	err := m.mutate(ctx, func() ([]events.Event, error) {
		wsID := m.active
		if req.WorkspaceID != nil {
			wsID = *req.WorkspaceID
		}
		if _, ok := m.workspaceLocked(wsID); !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWorkspace, wsID)
		}

		size := m.defaultSize
		if req.Size != nil {
			size = clampSize(*req.Size)
		}
		m.stampLocked(&payload)

		w := &types.Window{
			ID:          m.windowIDs.Next(),
			Type:        req.Type,
			WorkspaceID: wsID,
			Position:    layout.Allocate(m.windows[wsID], req.Position),
			Size:        size,
			Data:        payload,
		}
		m.windows[wsID] = append(m.windows[wsID], w)
		m.owner[w.ID] = wsID
		if _, err := m.zorder.BringToFront(m.windows, wsID, w.ID); err != nil {
			return nil, err
		}

		if m.metrics != nil {
			m.metrics.IncWindowsCreated(string(w.Type))
		}
		m.logger.Debug("Window created",
			zap.Int64("window", w.ID),
			zap.String("type", string(w.Type)),
			zap.Int64("workspace", wsID),
			zap.Int("x", w.Position.X),
			zap.Int("y", w.Position.Y))

		created = w.Clone()
		return []events.Event{
			{Type: events.WindowCreated, WorkspaceID: wsID, WindowID: w.ID},
			{Type: events.FocusChanged, WorkspaceID: wsID, WindowID: w.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateWindowData replaces a window's payload wholesale. Callers merge the
// fields they want to keep. Only windows of the active workspace qualify.
func (m *Manager) UpdateWindowData(ctx context.Context, windowID int64, payload types.Payload) error {
	payload = payload.Clone()

	return m.mutate(ctx, func() ([]events.Event, error) {
		w, err := m.activeWindowLocked(windowID)
		if err != nil {
			return nil, err
		}
		if !payload.Matches(w.Type) {
			return nil, fmt.Errorf("%w: %s", ErrPayloadMismatch, w.Type)
		}

		m.stampLocked(&payload)
		w.Data = payload
		return []events.Event{{Type: events.WindowUpdated, WorkspaceID: w.WorkspaceID, WindowID: w.ID}}, nil
	})
}

// UpdateChat edits a chat window's payload in place through fn, in any
// workspace. fn receives a copy; returning an error discards the edit.
func (m *Manager) UpdateChat(ctx context.Context, windowID int64, fn func(*types.ChatPayload) error) (*types.Window, error) {
	var updated *types.Window
	err := m.mutate(ctx, func() ([]events.Event, error) {
		w, err := m.anyWindowLocked(windowID)
		if err != nil {
			return nil, err
		}
		if w.Type != types.WindowChat || w.Data.Chat == nil {
			return nil, fmt.Errorf("%w: window %d is %s", ErrPayloadMismatch, windowID, w.Type)
		}

		next := w.Data.Clone()
		if err := fn(next.Chat); err != nil {
			return nil, err
		}
		m.stampLocked(&next)
		w.Data = next

		updated = w.Clone()
		return []events.Event{{Type: events.WindowUpdated, WorkspaceID: w.WorkspaceID, WindowID: w.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendMessages adds messages to the end of a chat window's history
func (m *Manager) AppendMessages(ctx context.Context, windowID int64, msgs ...types.Message) (*types.Window, error) {
	return m.UpdateChat(ctx, windowID, func(chat *types.ChatPayload) error {
		chat.Messages = append(chat.Messages, msgs...)
		return nil
	})
}

// SetGeometry moves and/or resizes a window of the active workspace.
// Positions are clamped at 0 and sizes at MinSize.
func (m *Manager) SetGeometry(ctx context.Context, windowID int64, pos *types.Position, size *types.Size) (*types.Window, error) {
	var updated *types.Window
	err := m.mutate(ctx, func() ([]events.Event, error) {
		w, err := m.activeWindowLocked(windowID)
		if err != nil {
			return nil, err
		}
		if pos != nil {
			w.Position = layout.Clamp(*pos)
		}
		if size != nil {
			w.Size = clampSize(*size)
		}

		updated = w.Clone()
		return []events.Event{{Type: events.WindowUpdated, WorkspaceID: w.WorkspaceID, WindowID: w.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BringToFront focuses a window of the active workspace
func (m *Manager) BringToFront(ctx context.Context, windowID int64) error {
	return m.mutate(ctx, func() ([]events.Event, error) {
		if _, err := m.activeWindowLocked(windowID); err != nil {
			return nil, err
		}

		before := m.focusedIDLocked(m.active)
		if _, err := m.zorder.BringToFront(m.windows, m.active, windowID); err != nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, windowID)
		}
		if before == windowID {
			return nil, nil
		}
		return []events.Event{{Type: events.FocusChanged, WorkspaceID: m.active, WindowID: windowID}}, nil
	})
}

// CloseWindow removes a window from whichever workspace holds it. If it was
// focused, the next-highest window of that workspace becomes focused.
func (m *Manager) CloseWindow(ctx context.Context, windowID int64) error {
	return m.mutate(ctx, func() ([]events.Event, error) {
		return m.closeWindowLocked(windowID)
	})
}

func (m *Manager) closeWindowLocked(windowID int64) ([]events.Event, error) {
	wsID, ok := m.owner[windowID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWindow, windowID)
	}

	before := m.focusedIDLocked(wsID)
	list := m.windows[wsID]
	for i, w := range list {
		if w.ID == windowID {
			m.windows[wsID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	delete(m.owner, windowID)

	m.logger.Debug("Window closed", zap.Int64("window", windowID), zap.Int64("workspace", wsID))

	evts := []events.Event{{Type: events.WindowClosed, WorkspaceID: wsID, WindowID: windowID}}
	if before == windowID {
		evts = append(evts, events.Event{Type: events.FocusChanged, WorkspaceID: wsID, WindowID: m.focusedIDLocked(wsID)})
	}
	return evts, nil
}

// Window returns a copy of a window from any workspace
func (m *Manager) Window(windowID int64) (*types.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, err := m.anyWindowLocked(windowID)
	if err != nil {
		return nil, false
	}
	return w.Clone(), true
}

// Windows returns copies of a workspace's windows in creation order
func (m *Manager) Windows(wsID int64) ([]*types.Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list, ok := m.windows[wsID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkspace, wsID)
	}
	return cloneAll(list), nil
}

// ActiveWindows returns copies of the active workspace's windows
func (m *Manager) ActiveWindows() []*types.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.windows[m.active])
}

func cloneAll(list []*types.Window) []*types.Window {
	out := make([]*types.Window, len(list))
	for i, w := range list {
		out[i] = w.Clone()
	}
	return out
}

// Focused returns the focused window of a workspace, if any
func (m *Manager) Focused(wsID int64) (*types.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	top := zorder.Focused(m.windows[wsID])
	if top == nil {
		return nil, false
	}
	return top.Clone(), true
}

func clampSize(s types.Size) types.Size {
	return types.Size{
		Width:  max(MinSize.Width, s.Width),
		Height: max(MinSize.Height, s.Height),
	}
}
