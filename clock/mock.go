package clock

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Mock is a manually-advanced clock for deterministic tests of timer and
// interpreter scheduling, in the spirit of the teacher's simulation clock
// (TimeScale/Advance/Pause/Resume) but trimmed to what the timer facility
// actually needs: After/NewTimer/NewTicker driven by Advance.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*mockWaiter
}

type mockWaiter struct {
	fireAt   time.Time
	ch       chan time.Time
	period   time.Duration // 0 for one-shot
	stopped  bool
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Since(t time.Time) time.Duration { return m.Now().Sub(t) }

func (m *Mock) Sleep(ctx context.Context, d time.Duration) error {
	ch := m.After(d)
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &mockWaiter{fireAt: m.now.Add(d), ch: make(chan time.Time, 1)}
	m.waiters = append(m.waiters, w)
	return w.ch
}

func (m *Mock) NewTimer(d time.Duration) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &mockWaiter{fireAt: m.now.Add(d), ch: make(chan time.Time, 1)}
	m.waiters = append(m.waiters, w)
	return &mockTimer{m: m, w: w}
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &mockWaiter{fireAt: m.now.Add(d), ch: make(chan time.Time, 1), period: d}
	m.waiters = append(m.waiters, w)
	return &mockTicker{m: m, w: w}
}

// Advance moves the clock forward by d, firing every waiter whose fireAt
// has passed, rescheduling periodic ones, in fire-time order.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)

	sort.Slice(m.waiters, func(i, j int) bool { return m.waiters[i].fireAt.Before(m.waiters[j].fireAt) })
	var remaining []*mockWaiter
	for _, w := range m.waiters {
		if w.stopped {
			continue
		}
		if w.fireAt.After(m.now) {
			remaining = append(remaining, w)
			continue
		}
		select {
		case w.ch <- m.now:
		default:
		}
		if w.period > 0 {
			w.fireAt = w.fireAt.Add(w.period)
			remaining = append(remaining, w)
		}
	}
	m.waiters = remaining
}

type mockTimer struct {
	m *Mock
	w *mockWaiter
}

func (t *mockTimer) C() <-chan time.Time { return t.w.ch }

func (t *mockTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	wasRunning := !t.w.stopped
	t.w.stopped = true
	return wasRunning
}

func (t *mockTimer) Reset(d time.Duration) bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	wasRunning := !t.w.stopped
	t.w.stopped = false
	t.w.fireAt = t.m.now.Add(d)
	// Advance drops fired and stopped one-shot waiters; re-arm this one.
	for _, w := range t.m.waiters {
		if w == t.w {
			return wasRunning
		}
	}
	t.m.waiters = append(t.m.waiters, t.w)
	return wasRunning
}

type mockTicker struct {
	m *Mock
	w *mockWaiter
}

func (t *mockTicker) C() <-chan time.Time { return t.w.ch }

func (t *mockTicker) Stop() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.w.stopped = true
}

func (t *mockTicker) Reset(d time.Duration) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.w.period = d
	t.w.fireAt = t.m.now.Add(d)
	t.w.stopped = false
}
