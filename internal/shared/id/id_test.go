package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceMonotonic(t *testing.T) {
	seq := NewSequence(1)

	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(3), seq.Peek())
}

func TestSequenceStartFloor(t *testing.T) {
	assert.Equal(t, int64(1), NewSequence(0).Next())
	assert.Equal(t, int64(1), NewSequence(-5).Next())
}

func TestSequenceSeedNeverRewinds(t *testing.T) {
	seq := NewSequence(10)

	seq.Seed(3)
	assert.Equal(t, int64(10), seq.Peek())

	seq.Seed(42)
	assert.Equal(t, int64(43), seq.Next())
}

func TestSequenceConcurrentUnique(t *testing.T) {
	seq := NewSequence(1)

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				v := seq.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 2000)
}

func TestPrefixedIDs(t *testing.T) {
	for prefix, gen := range map[string]func() string{
		EventPrefix:   NewEventID,
		RequestPrefix: NewRequestID,
	} {
		value := gen()
		head, tail, ok := strings.Cut(value, "_")
		require.True(t, ok, value)
		assert.Equal(t, prefix, head)
		_, err := ulid.Parse(tail)
		assert.NoError(t, err)
	}
}

func TestEventIDsSortInCreationOrder(t *testing.T) {
	prev := NewEventID()
	for i := 0; i < 100; i++ {
		next := NewEventID()
		require.Less(t, prev, next)
		prev = next
	}
}
