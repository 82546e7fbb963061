package types

// State is the complete desktop state mirrored to durable storage
type State struct {
	Workspaces         []Workspace        `json:"workspaces"`
	WindowsByWorkspace map[int64][]Window `json:"windowsByWorkspace"`
	ActiveWorkspaceID  int64              `json:"activeWorkspaceId"`
	Counters           Counters           `json:"counters"`
}

// Counters keeps identifier sequences alive across restarts
type Counters struct {
	NextWindowID    int64 `json:"nextWindowId"`
	NextWorkspaceID int64 `json:"nextWorkspaceId"`
}

// Workspace returns the workspace with the given id
func (s *State) Workspace(id int64) (Workspace, bool) {
	for _, ws := range s.Workspaces {
		if ws.ID == id {
			return ws, true
		}
	}
	return Workspace{}, false
}

// WindowCount returns the total number of windows across workspaces
func (s *State) WindowCount() int {
	n := 0
	for _, windows := range s.WindowsByWorkspace {
		n += len(windows)
	}
	return n
}
