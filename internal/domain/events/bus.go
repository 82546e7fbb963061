// Package events fans desktop notifications out to presentation layers.
package events

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/id"
)

// Type identifies a desktop notification
type Type string

const (
	WindowCreated    Type = "window.created"
	WindowClosed     Type = "window.closed"
	WindowUpdated    Type = "window.updated"
	FocusChanged     Type = "focus.changed"
	WorkspaceChanged Type = "workspace.changed"
	WorkspaceDeleted Type = "workspace.deleted"
)

// Event is a single notification. WindowID is zero for workspace events.
type Event struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	WorkspaceID int64     `json:"workspaceId"`
	WindowID    int64     `json:"windowId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Handler receives published events
type Handler func(Event)

// Publisher is the sending side of a Bus
type Publisher interface {
	Publish(Event)
}

// Bus delivers events synchronously to every subscriber in subscription order
type Bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	order    []uint64
	seq      uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]Handler)}
}

// Subscribe registers h and returns a function that removes it
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	key := b.seq
	b.handlers[key] = h
	b.order = append(b.order, key)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, key)
			for i, k := range b.order {
				if k == key {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish stamps the event and hands it to each subscriber. Handlers must
// not block; they run on the publisher's goroutine.
func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = id.NewEventID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, k := range b.order {
		handlers = append(handlers, b.handlers[k])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
