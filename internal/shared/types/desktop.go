package types

import "time"

// HomeWorkspaceID is reserved for the protected Home workspace.
const HomeWorkspaceID int64 = 1

// HomeWorkspaceName is the name of the protected workspace.
const HomeWorkspaceName = "Home"

// WindowType represents the kind of session a window hosts
type WindowType string

const (
	WindowChat              WindowType = "chat"
	WindowWorkspaceCreation WindowType = "workspace-creation"
	WindowSettings          WindowType = "settings"
)

// Valid reports whether t is a known window type
func (t WindowType) Valid() bool {
	switch t {
	case WindowChat, WindowWorkspaceCreation, WindowSettings:
		return true
	}
	return false
}

// Position represents window position on screen
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size represents window dimensions
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Workspace is a named, isolated collection of windows
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsHome reports whether this is the protected Home workspace
func (w Workspace) IsHome() bool {
	return w.ID == HomeWorkspaceID
}

// Window is a positioned, stackable UI session owned by one workspace
type Window struct {
	ID          int64      `json:"id"`
	Type        WindowType `json:"type"`
	WorkspaceID int64      `json:"workspaceId"`
	Position    Position   `json:"position"`
	Size        Size       `json:"size"`
	ZIndex      int64      `json:"zIndex"`
	Data        Payload    `json:"data"`
}

// Clone returns a deep copy so callers cannot mutate manager state
func (w *Window) Clone() *Window {
	c := *w
	c.Data = w.Data.Clone()
	return &c
}

// Stats contains window manager statistics
type Stats struct {
	Workspaces        int    `json:"workspaces"`
	Windows           int    `json:"windows"`
	ActiveWindows     int    `json:"active_windows"`
	ActiveWorkspaceID int64  `json:"active_workspace_id"`
	FocusedWindowID   *int64 `json:"focused_window_id,omitempty"`
}
