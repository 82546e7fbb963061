// Package zorder assigns front-to-back stacking order to windows.
//
// The counter is process-wide and only moves forward. The focused window of
// a workspace is the window holding the highest zIndex there, so closing the
// focused window implicitly promotes the next-highest one.
//
// A Controller is not safe for concurrent use; the workspace manager
// serializes all calls under its own lock.
package zorder

import (
	"errors"
	"math"
	"sort"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// ErrUnknownWindow is returned when focusing an id that is not open
var ErrUnknownWindow = errors.New("zorder: unknown window")

// Groups is the set of open windows keyed by workspace id
type Groups map[int64][]*types.Window

// Controller hands out zIndex values
type Controller struct {
	next    int64
	ceiling int64
}

// Option configures a Controller
type Option func(*Controller)

// WithCeiling sets the value past which all z-indices are renormalized
func WithCeiling(ceiling int64) Option {
	return func(c *Controller) {
		if ceiling > 0 {
			c.ceiling = ceiling
		}
	}
}

// NewController creates a controller whose first value is 1
func NewController(opts ...Option) *Controller {
	c := &Controller{next: 1, ceiling: math.MaxInt64}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next returns the value the next BringToFront will assign
func (c *Controller) Next() int64 {
	return c.next
}

// BringToFront gives the window the highest zIndex in the process, making
// it the focused window of its workspace.
func (c *Controller) BringToFront(groups Groups, workspaceID, windowID int64) (int64, error) {
	target := find(groups[workspaceID], windowID)
	if target == nil {
		return 0, ErrUnknownWindow
	}

	if c.next >= c.ceiling {
		c.Renormalize(groups)
	}

	target.ZIndex = c.next
	c.next++
	return target.ZIndex, nil
}

// Renormalize rewrites every workspace's z-indices to their rank order
// (1..n) and resets the counter just past the largest rank.
func (c *Controller) Renormalize(groups Groups) {
	var highest int64
	for _, windows := range groups {
		ranked := make([]*types.Window, len(windows))
		copy(ranked, windows)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ZIndex < ranked[j].ZIndex
		})
		for i, w := range ranked {
			w.ZIndex = int64(i + 1)
		}
		if n := int64(len(ranked)); n > highest {
			highest = n
		}
	}
	c.next = highest + 1
}

// Reset seeds the counter from restored windows
func (c *Controller) Reset(groups Groups) {
	c.next = 1
	for _, windows := range groups {
		for _, w := range windows {
			if w.ZIndex >= c.next {
				c.next = w.ZIndex + 1
			}
		}
	}
	if c.next >= c.ceiling {
		c.Renormalize(groups)
	}
}

// Focused returns the window with the highest zIndex, or nil if none
func Focused(windows []*types.Window) *types.Window {
	var top *types.Window
	for _, w := range windows {
		if top == nil || w.ZIndex > top.ZIndex {
			top = w
		}
	}
	return top
}

func find(windows []*types.Window, id int64) *types.Window {
	for _, w := range windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}
