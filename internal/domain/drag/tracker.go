// Package drag models pointer drag and resize sessions on windows.
//
// A session starts on pointer press, receives move updates and ends on
// release. Moves are written through at most once per commit interval;
// the final geometry is always written on release. Sessions whose window
// is closed, or whose workspace stops being active, are dropped and any
// further updates fail with ErrUnknownSession.
package drag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// DefaultInterval is one frame at 60Hz
const DefaultInterval = 16 * time.Millisecond

// ErrUnknownSession is returned for an ended, cancelled or invented session
var ErrUnknownSession = errors.New("drag: unknown session")

// ErrInvalidKind is returned for an unrecognized session kind
var ErrInvalidKind = errors.New("drag: invalid kind")

// Kind selects what a session changes
type Kind string

const (
	KindMove   Kind = "move"
	KindResize Kind = "resize"
)

// Point is a pointer location in desktop coordinates
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Windows is the part of the workspace manager the tracker drives
type Windows interface {
	Window(windowID int64) (*types.Window, bool)
	BringToFront(ctx context.Context, windowID int64) error
	SetGeometry(ctx context.Context, windowID int64, pos *types.Position, size *types.Size) (*types.Window, error)
}

type session struct {
	id       string
	windowID int64
	kind     Kind
	start    Point
	origin   types.Position
	size     types.Size
	limiter  *rate.Limiter
}

// Tracker owns the live drag sessions
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session

	windows  Windows
	interval time.Duration
	clock    func() time.Time
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewTracker creates a tracker committing moves at most once per interval
func NewTracker(windows Windows, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		sessions: make(map[string]*session),
		windows:  windows,
		interval: interval,
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
}

// WithClock sets the time source used by the write limiter
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	if clock != nil {
		t.clock = clock
	}
	return t
}

// WithMetrics adds metrics tracking to the tracker
func (t *Tracker) WithMetrics(metrics *monitoring.Metrics) *Tracker {
	t.metrics = metrics
	return t
}

// WithLogger sets the logger
func (t *Tracker) WithLogger(logger *zap.Logger) *Tracker {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// Attach ends sessions when their window closes or the active workspace
// changes. It returns the unsubscribe function.
func (t *Tracker) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(e events.Event) {
		switch e.Type {
		case events.WindowClosed:
			t.cancelWindow(e.WindowID)
		case events.WorkspaceChanged, events.WorkspaceDeleted:
			t.cancelAll()
		}
	})
}

// Begin starts a session on pointer press and focuses the window
func (t *Tracker) Begin(ctx context.Context, windowID int64, kind Kind, pointer Point) (string, error) {
	if kind != KindMove && kind != KindResize {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := t.windows.BringToFront(ctx, windowID); err != nil {
		return "", err
	}
	w, ok := t.windows.Window(windowID)
	if !ok {
		return "", fmt.Errorf("%w: window %d", ErrUnknownSession, windowID)
	}

	s := &session{
		id:       uuid.New().String(),
		windowID: windowID,
		kind:     kind,
		start:    pointer,
		origin:   w.Position,
		size:     w.Size,
		limiter:  rate.NewLimiter(rate.Every(t.interval), 1),
	}

	t.mu.Lock()
	for sid, other := range t.sessions {
		if other.windowID == windowID {
			delete(t.sessions, sid)
		}
	}
	t.sessions[s.id] = s
	t.mu.Unlock()

	t.logger.Debug("Drag started", zap.String("session", s.id), zap.Int64("window", windowID), zap.String("kind", string(kind)))
	return s.id, nil
}

// Move applies a pointer update. It reports whether the geometry was
// written; skipped updates are superseded by later moves or by End.
func (t *Tracker) Move(ctx context.Context, sessionID string, pointer Point) (bool, error) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	if !ok {
		t.mu.Unlock()
		return false, ErrUnknownSession
	}
	allowed := s.limiter.AllowN(t.clock(), 1)
	t.mu.Unlock()

	if !allowed {
		return false, nil
	}
	if err := t.commit(ctx, s, pointer); err != nil {
		return false, err
	}
	t.record("move")
	return true, nil
}

// End writes the final geometry and closes the session
func (t *Tracker) End(ctx context.Context, sessionID string, pointer Point) (*types.Window, error) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	delete(t.sessions, sessionID)
	t.mu.Unlock()

	if !ok {
		return nil, ErrUnknownSession
	}
	pos, size := s.geometry(pointer)
	w, err := t.windows.SetGeometry(ctx, s.windowID, pos, size)
	if err != nil {
		return nil, err
	}
	t.record("end")
	return w, nil
}

// Cancel drops a session without writing
func (t *Tracker) Cancel(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}

// Active returns the number of live sessions
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) commit(ctx context.Context, s *session, pointer Point) error {
	pos, size := s.geometry(pointer)
	if _, err := t.windows.SetGeometry(ctx, s.windowID, pos, size); err != nil {
		t.Cancel(s.id)
		return err
	}
	return nil
}

func (t *Tracker) cancelWindow(windowID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sid, s := range t.sessions {
		if s.windowID == windowID {
			delete(t.sessions, sid)
			t.logger.Debug("Drag cancelled", zap.String("session", sid), zap.Int64("window", windowID))
		}
	}
}

func (t *Tracker) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.sessions)
}

func (t *Tracker) record(phase string) {
	if t.metrics != nil {
		t.metrics.RecordDragCommit(phase)
	}
}

// geometry returns the new position or size for a pointer location
func (s *session) geometry(pointer Point) (*types.Position, *types.Size) {
	dx, dy := pointer.X-s.start.X, pointer.Y-s.start.Y
	if s.kind == KindResize {
		return nil, &types.Size{Width: s.size.Width + dx, Height: s.size.Height + dy}
	}
	return &types.Position{X: s.origin.X + dx, Y: s.origin.Y + dy}, nil
}
