package timer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/purc-run/hvml/clock"
	"github.com/purc-run/hvml/timer"
	"github.com/purc-run/hvml/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMember(id string, intervalMS int64, active string) *variant.Value {
	v, err := variant.NewObjectFromPairs(
		"id", variant.MustString(id),
		"interval", variant.NewLongInt(intervalMS),
		"active", variant.MustString(active),
	)
	if err != nil {
		panic(err)
	}
	return v
}

func TestGrowStartsActiveTimerAndFiresExpired(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	var mu sync.Mutex
	var fired []string
	ts := timer.New(mock, func(id string) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	})

	member := newMember("tick", 100, "yes")
	require.NoError(t, ts.Variant().SetInsert(member, variant.PolicyStrict))
	member.Unref()

	waitUntil(t, func() bool {
		mock.Advance(100 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		return len(fired) >= 1
	})

	mu.Lock()
	assert.Equal(t, "tick", fired[0])
	mu.Unlock()
	ts.Shutdown()
}

func TestShrinkStopsTimer(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	var mu sync.Mutex
	fireCount := 0
	ts := timer.New(mock, func(id string) {
		mu.Lock()
		fireCount++
		mu.Unlock()
	})

	member := newMember("once", 50, "yes")
	require.NoError(t, ts.Variant().SetInsert(member, variant.PolicyStrict))
	require.True(t, ts.Variant().SetRemove(member))
	member.Unref()

	mock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, fireCount)
}

func TestChangeTogglesActive(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	var mu sync.Mutex
	fireCount := 0
	ts := timer.New(mock, func(id string) {
		mu.Lock()
		fireCount++
		mu.Unlock()
	})

	member := newMember("x", 100, "no")
	require.NoError(t, ts.Variant().SetInsert(member, variant.PolicyStrict))
	member.Unref()

	updated := newMember("x", 100, "yes")
	require.NoError(t, ts.Variant().SetInsert(updated, variant.PolicyOverwrite))
	updated.Unref()

	waitUntil(t, func() bool {
		mock.Advance(100 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		return fireCount >= 1
	})
	ts.Shutdown()
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
