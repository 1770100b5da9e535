package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/pkg/logger"
)

type window struct{ from, to time.Time }

type fakeSweeper struct {
	mu    sync.Mutex
	calls []window
	err   error
}

func (f *fakeSweeper) SweepTransitions(_ context.Context, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, window{from, to})
	return 1, f.err
}

func (f *fakeSweeper) snapshot() []window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]window(nil), f.calls...)
}

// steppingClock 每次调用前进一分钟
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Minute)
	return t
}

func TestLifecycleSchedulerContiguousWindows(t *testing.T) {
	sweeper := &fakeSweeper{}
	clock := &steppingClock{now: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	s := NewLifecycleScheduler(sweeper, 5*time.Millisecond, logger.NewNop()).WithClock(clock.Now)

	s.Start()
	require.Eventually(t, func() bool { return len(sweeper.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	calls := sweeper.snapshot()
	for i := 1; i < len(calls); i++ {
		assert.Equal(t, calls[i-1].to, calls[i].from)
		assert.Equal(t, time.Minute, calls[i].to.Sub(calls[i].from))
	}
}

func TestLifecycleSchedulerRetriesFailedWindow(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("redis down")}
	clock := &steppingClock{now: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	s := NewLifecycleScheduler(sweeper, 5*time.Millisecond, logger.NewNop()).WithClock(clock.Now)

	s.Start()
	require.Eventually(t, func() bool { return len(sweeper.snapshot()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	calls := sweeper.snapshot()
	for _, c := range calls {
		assert.Equal(t, calls[0].from, c.from)
	}
}
