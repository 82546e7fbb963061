package workspace

import "errors"

var (
	// ErrInvalidWorkspace is returned for an unknown workspace id
	ErrInvalidWorkspace = errors.New("workspace: invalid workspace")
	// ErrProtectedWorkspace is returned when deleting Home
	ErrProtectedWorkspace = errors.New("workspace: home workspace cannot be deleted")
	// ErrDuplicateName is returned when a workspace name is taken
	ErrDuplicateName = errors.New("workspace: duplicate name")
	// ErrInvalidName is returned for a blank or oversized workspace name
	ErrInvalidName = errors.New("workspace: invalid name")
	// ErrUnknownWindow is returned when the window is not open where required
	ErrUnknownWindow = errors.New("workspace: unknown window")
	// ErrInvalidWindowType is returned for an unrecognized window type
	ErrInvalidWindowType = errors.New("workspace: invalid window type")
	// ErrPayloadMismatch is returned when a payload does not fit the window type
	ErrPayloadMismatch = errors.New("workspace: payload does not match window type")
)
