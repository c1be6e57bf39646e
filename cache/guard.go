package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStoreUnavailable is returned by a Guarded store whose guard is open.
var ErrStoreUnavailable = errors.New("cache: store unavailable")

// GuardState is the state of a Guarded store.
type GuardState int

const (
	// GuardClosed passes every operation to the underlying store.
	GuardClosed GuardState = iota
	// GuardOpen skips the underlying store: Get misses, Set fails fast.
	GuardOpen
	// GuardHalfOpen lets a limited number of writes probe the store.
	GuardHalfOpen
)

// String returns the string representation of the state.
func (s GuardState) String() string {
	switch s {
	case GuardClosed:
		return "closed"
	case GuardOpen:
		return "open"
	case GuardHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// GuardConfig configures a Guarded store.
type GuardConfig struct {
	// MaxFailures is the number of consecutive failed writes that opens the guard.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the guard stays open before probing again.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxProbes is the number of writes allowed while half-open.
	// Default: 1
	HalfOpenMaxProbes int

	// OnStateChange is called when the guard changes state.
	OnStateChange func(from, to GuardState)
}

// Guarded wraps a remote store with a circuit breaker so that a store that
// keeps failing stops costing a round trip per call. Failures are observed on
// Set, since Get reports errors as misses.
type Guarded struct {
	next   Store
	config GuardConfig
	now    func() time.Time

	mu          sync.Mutex
	state       GuardState
	failures    int
	lastFailure time.Time
	probes      int
}

// NewGuarded wraps next.
func NewGuarded(next Store, config GuardConfig) (*Guarded, error) {
	if next == nil {
		return nil, ErrNilStore
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxProbes <= 0 {
		config.HalfOpenMaxProbes = 1
	}
	return &Guarded{next: next, config: config, now: time.Now}, nil
}

// Get reads from the underlying store unless the guard is open.
func (g *Guarded) Get(ctx context.Context, key any) (any, bool) {
	if g.State() == GuardOpen {
		return nil, false
	}
	return g.next.Get(ctx, key)
}

// Set writes through the guard. While open it returns ErrStoreUnavailable
// without touching the underlying store.
func (g *Guarded) Set(ctx context.Context, key any, value any) error {
	if err := g.beforeWrite(); err != nil {
		return err
	}
	err := g.next.Set(ctx, key, value)
	g.afterWrite(err)
	return err
}

// State returns the current guard state.
func (g *Guarded) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentStateLocked()
}

// Reset closes the guard.
func (g *Guarded) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.probes = 0
	g.setStateLocked(GuardClosed)
}

// Unwrap returns the underlying store.
func (g *Guarded) Unwrap() Store {
	return g.next
}

func (g *Guarded) beforeWrite() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.currentStateLocked() {
	case GuardOpen:
		return ErrStoreUnavailable
	case GuardHalfOpen:
		if g.probes >= g.config.HalfOpenMaxProbes {
			return ErrStoreUnavailable
		}
		g.probes++
	}
	return nil
}

func (g *Guarded) afterWrite(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case GuardClosed:
		if err == nil {
			g.failures = 0
			return
		}
		g.failures++
		g.lastFailure = g.now()
		if g.failures >= g.config.MaxFailures {
			g.setStateLocked(GuardOpen)
		}

	case GuardHalfOpen:
		if err != nil {
			// Failed probe restarts the open period.
			g.lastFailure = g.now()
			g.setStateLocked(GuardOpen)
			return
		}
		g.failures = 0
		g.setStateLocked(GuardClosed)
	}
}

func (g *Guarded) currentStateLocked() GuardState {
	if g.state == GuardOpen && g.now().Sub(g.lastFailure) >= g.config.ResetTimeout {
		g.setStateLocked(GuardHalfOpen)
	}
	return g.state
}

func (g *Guarded) setStateLocked(state GuardState) {
	from := g.state
	g.state = state
	if state == GuardHalfOpen {
		g.probes = 0
	}
	if from != state && g.config.OnStateChange != nil {
		g.config.OnStateChange(from, state)
	}
}

// Ensure Guarded implements Store
var _ Store = (*Guarded)(nil)
