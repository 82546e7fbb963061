package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{"closed", "half-open", "open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// MaxRequests is the number of trial requests allowed while half-open
	MaxRequests uint32
	// Interval clears the counts periodically while closed
	Interval time.Duration
	// Timeout is how long the breaker stays open before trying again
	Timeout time.Duration
	// ReadyToTrip decides, after a failure while closed, whether to open
	ReadyToTrip func(counts Counts) bool
	// IsFailure decides whether an error counts against the breaker.
	// Errors it rejects are returned but recorded as successes.
	IsFailure func(err error) bool
	// OnStateChange is called whenever the state changes, with the lock held
	OnStateChange func(name string, from State, to State)
	// Now is the time source
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = time.Minute
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = func(counts Counts) bool { return counts.ConsecutiveFailures > 5 }
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Counts holds the statistics of the current generation
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

type outcome int

const (
	succeeded outcome = iota
	failed
	// abandoned calls were cancelled by the caller and say nothing about the provider
	abandoned
)

// Breaker guards calls to one provider
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	counts     Counts
	expiry     time.Time
	generation uint64
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	settings = settings.withDefaults()
	return &Breaker{
		name:     name,
		settings: settings,
		expiry:   settings.Now().Add(settings.Interval),
	}
}

func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving open to half-open once the timeout passed
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.current(b.settings.Now())
	return state
}

// Counts returns a copy of the current generation's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs fn if the breaker admits the call. A call whose context is
// already done is never started; one that fails because ctx ended is not
// held against the provider.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	generation, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.record(generation, failed)
			panic(e)
		}
	}()

	err = fn(ctx)
	b.record(generation, b.classify(ctx, err))
	return err
}

func (b *Breaker) classify(ctx context.Context, err error) outcome {
	switch {
	case err == nil:
		return succeeded
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return abandoned
	case !b.settings.IsFailure(err):
		return succeeded
	default:
		return failed
	}
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current(b.settings.Now())
	switch {
	case state == StateOpen:
		return generation, ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return generation, ErrTooManyRequests
	}
	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) record(admitted uint64, result outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.settings.Now()
	state, generation := b.current(now)
	if generation != admitted {
		return
	}

	switch result {
	case abandoned:
		// free the trial slot so half-open can admit another call
		if b.counts.Requests > 0 {
			b.counts.Requests--
		}
	case succeeded:
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
	case failed:
		if state == StateHalfOpen {
			b.transition(StateOpen, now)
			return
		}
		b.counts.TotalFailures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.settings.ReadyToTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	}
}

func (b *Breaker) current(now time.Time) (State, uint64) {
	switch {
	case b.state == StateClosed && !b.expiry.IsZero() && b.expiry.Before(now):
		b.reset(now)
	case b.state == StateOpen && b.expiry.Before(now):
		b.transition(StateHalfOpen, now)
	}
	return b.state, b.generation
}

func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.reset(now)

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// reset starts a new generation; results of calls admitted earlier are dropped
func (b *Breaker) reset(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.expiry = now.Add(b.settings.Interval)
	case StateOpen:
		b.expiry = now.Add(b.settings.Timeout)
	default:
		b.expiry = time.Time{}
	}
}

// Group lazily creates one breaker per provider family from shared settings
type Group struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*Breaker
}

func NewGroup(settings Settings) *Group {
	return &Group{settings: settings, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for name, creating it on first use
func (g *Group) Get(name string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[name]
	if !ok {
		b = New(name, g.settings)
		g.breakers[name] = b
	}
	return b
}

// States returns the state of every breaker created so far
func (g *Group) States() map[string]string {
	g.mu.Lock()
	breakers := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		breakers = append(breakers, b)
	}
	g.mu.Unlock()

	out := make(map[string]string, len(breakers))
	for _, b := range breakers {
		out[b.name] = b.State().String()
	}
	return out
}
