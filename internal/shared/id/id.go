// Package id provides identifier generation for the desktop backend.
//
// Two kinds of identifiers live here:
//   - Sequence: monotonic int64 counters for windows and workspaces.
//     Values are never handed out twice, even after the entity is gone.
//   - ULID strings with a type prefix for events (evt_*) and requests (req_*).
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	EventPrefix   = "evt"
	RequestPrefix = "req"
)

// Sequence hands out strictly increasing int64 identifiers
type Sequence struct {
	mu   sync.Mutex
	next int64
}

// NewSequence creates a sequence whose first value is start (minimum 1)
func NewSequence(start int64) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{next: start}
}

// Next returns the next identifier
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.next
	s.next++
	return v
}

// Peek returns the value Next would return without consuming it
func (s *Sequence) Peek() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Seed moves the sequence forward so that it never returns a value <= seen.
// It never moves the sequence backwards.
func (s *Sequence) Seed(seen int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seen >= s.next {
		s.next = seen + 1
	}
}

// ULIDs from one monotonic source sort in creation order even within a millisecond
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID(now time.Time) ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy)
}

func prefixed(prefix string) string {
	return prefix + "_" + newULID(time.Now()).String()
}

// NewEventID returns an id for a bus event, e.g. evt_01HY...
func NewEventID() string {
	return prefixed(EventPrefix)
}

// NewRequestID returns an id for a traced request, e.g. req_01HY...
func NewRequestID() string {
	return prefixed(RequestPrefix)
}
