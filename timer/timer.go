// Package timer implements the $TIMERS facility of spec §4.4: a variant
// set of {id, interval, active} objects whose grow/shrink/change listener
// drives a bank of internal clock-backed timers, each firing an "expired"
// observation event when it elapses.
package timer

import (
	"sync"
	"time"

	"github.com/purc-run/hvml/clock"
	"github.com/purc-run/hvml/variant"
)

// ExpiredFunc is invoked when a timer fires, carrying the timer's id so the
// caller (the observer bus) can dispatch (source=$TIMERS, event="expired",
// sub=id).
type ExpiredFunc func(id string)

// Set binds a live $TIMERS variant set to a bank of clock-driven timers.
type Set struct {
	clk        clock.Clock
	onExpired  ExpiredFunc
	variant    *variant.Value // the $TIMERS set itself
	listenerID uint64

	mu     sync.Mutex
	timers map[string]*entry
}

type entry struct {
	id       string
	interval time.Duration
	active   bool
	t        clock.Timer
	stopCh   chan struct{}
}

// New creates the $TIMERS set and wires its listener. onExpired is called
// from an internal goroutine per firing timer; callers must not block in it
// for long (the observer bus should just enqueue the event).
func New(clk clock.Clock, onExpired ExpiredFunc) *Set {
	s := &Set{
		clk:       clk,
		onExpired: onExpired,
		variant:   variant.NewSet(variant.KeyByProperty("id")),
		timers:    make(map[string]*entry),
	}
	s.variant.RegisterListener(variant.OpGrow, s.onGrow, nil)
	s.variant.RegisterListener(variant.OpShrink, s.onShrink, nil)
	s.variant.RegisterListener(variant.OpChange, s.onChange, nil)
	return s
}

// Variant returns the underlying $TIMERS set, for binding into document
// scope.
func (s *Set) Variant() *variant.Value { return s.variant }

func memberFields(member *variant.Value) (id string, interval time.Duration, active bool) {
	idVal := member.ObjectGet("id")
	if idVal != nil {
		id = variant.Stringify(idVal)
	}
	ivVal := member.ObjectGet("interval")
	if ivVal != nil {
		interval = time.Duration(variant.Numberify(ivVal)) * time.Millisecond
	}
	activeVal := member.ObjectGet("active")
	active = activeVal != nil && variant.Stringify(activeVal) == "yes"
	return
}

func (s *Set) onGrow(container *variant.Value, op variant.Op, member *variant.Value, ctxt any) bool {
	id, interval, active := memberFields(member)
	s.mu.Lock()
	e := &entry{id: id, interval: interval, active: active}
	s.timers[id] = e
	s.mu.Unlock()
	if active {
		s.start(e)
	}
	return true
}

func (s *Set) onShrink(container *variant.Value, op variant.Op, member *variant.Value, ctxt any) bool {
	id, _, _ := memberFields(member)
	s.mu.Lock()
	e, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if ok {
		s.stop(e)
	}
	return true
}

func (s *Set) onChange(container *variant.Value, op variant.Op, member *variant.Value, ctxt any) bool {
	if member == nil {
		// whole-set displace: restart everything from scratch.
		s.mu.Lock()
		old := s.timers
		s.timers = make(map[string]*entry)
		s.mu.Unlock()
		for _, e := range old {
			s.stop(e)
		}
		container.SetEach(func(m *variant.Value) bool {
			s.onGrow(container, variant.OpGrow, m, nil)
			return true
		})
		return true
	}

	id, interval, active := memberFields(member)
	s.mu.Lock()
	e, ok := s.timers[id]
	if !ok {
		e = &entry{id: id}
		s.timers[id] = e
	}
	intervalChanged := e.interval != interval
	wasActive := e.active
	e.interval = interval
	e.active = active
	s.mu.Unlock()

	switch {
	case active && !wasActive:
		s.start(e)
	case !active && wasActive:
		s.stop(e)
	case active && wasActive && intervalChanged:
		s.stop(e)
		s.start(e)
	}
	return true
}

func (s *Set) start(e *entry) {
	if e.interval <= 0 {
		return
	}
	t := s.clk.NewTimer(e.interval)
	stop := make(chan struct{})
	s.mu.Lock()
	e.t = t
	e.stopCh = stop
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.C():
				if s.onExpired != nil {
					s.onExpired(e.id)
				}
				t.Reset(e.interval)
			case <-stop:
				t.Stop()
				return
			}
		}
	}()
}

func (s *Set) stop(e *entry) {
	s.mu.Lock()
	stop := e.stopCh
	e.stopCh = nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

// Shutdown stops every running timer, for coroutine teardown.
func (s *Set) Shutdown() {
	s.mu.Lock()
	all := make([]*entry, 0, len(s.timers))
	for _, e := range s.timers {
		all = append(all, e)
	}
	s.mu.Unlock()
	for _, e := range all {
		s.stop(e)
	}
}
