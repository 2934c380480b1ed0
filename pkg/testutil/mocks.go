// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
)

// ErrUnavailable is the default failure returned by the failing mocks.
var ErrUnavailable = errors.New("store unavailable")

// Clock is a manually advanced time source safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FailingPinger reports the store as unreachable.
type FailingPinger struct {
	Err error
}

// Ping returns Err, or ErrUnavailable when unset.
func (p FailingPinger) Ping(context.Context) error {
	if p.Err != nil {
		return p.Err
	}
	return ErrUnavailable
}

// FailingSolutionStore wraps a SolutionStore and fails every read. Writes
// pass through to the wrapped store.
type FailingSolutionStore struct {
	storage.SolutionStore
	Err error
}

var _ storage.SolutionStore = (*FailingSolutionStore)(nil)

func (s *FailingSolutionStore) err() error {
	if s.Err != nil {
		return s.Err
	}
	return ErrUnavailable
}

// GetSolution always fails.
func (s *FailingSolutionStore) GetSolution(context.Context, int64) (solution.Solution, error) {
	return solution.Solution{}, s.err()
}

// ListSolutions always fails.
func (s *FailingSolutionStore) ListSolutions(context.Context, storage.SolutionFilter) ([]solution.Solution, error) {
	return nil, s.err()
}

// CountSolutions always fails.
func (s *FailingSolutionStore) CountSolutions(context.Context) (int64, error) {
	return 0, s.err()
}
