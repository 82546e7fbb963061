// Package layout places new windows so that no two windows in a workspace
// open on exactly the same coordinates.
package layout

import "github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"

const (
	// Step is how far a colliding window is shifted along both axes.
	Step = 10
)

// DefaultPosition is used when the caller does not request one.
var DefaultPosition = types.Position{X: 20, Y: 20}

// Allocate returns the first free position starting at requested (or
// DefaultPosition), stepping diagonally while an existing window occupies
// the exact coordinates. Coordinates are clamped at 0. The loop ends
// because every step strictly increases y and the occupied set is finite.
func Allocate(existing []*types.Window, requested *types.Position) types.Position {
	pos := DefaultPosition
	if requested != nil {
		pos = *requested
	}
	pos = clamp(pos)

	occupied := make(map[types.Position]struct{}, len(existing))
	for _, w := range existing {
		occupied[w.Position] = struct{}{}
	}

	for {
		if _, taken := occupied[pos]; !taken {
			return pos
		}
		pos = clamp(types.Position{X: pos.X + Step, Y: pos.Y + Step})
	}
}

// Clamp keeps a position inside the non-negative quadrant
func Clamp(p types.Position) types.Position {
	return clamp(p)
}

func clamp(p types.Position) types.Position {
	return types.Position{X: max(0, p.X), Y: max(0, p.Y)}
}
