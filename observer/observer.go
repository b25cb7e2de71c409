// Package observer implements the observation bus of spec §4.5:
// registrations are triples (source-variant, event-name, sub-name). Firing
// calls every matching handler synchronously on the firing goroutine; the
// bus keeps no event queue and does not check the owning coroutine's stage.
package observer

import (
	"sort"
	"sync"

	"github.com/purc-run/hvml/variant"
)

// Event is what a firing produces: the source variant, the event name
// ("grow", "shrink", "change", "expired", or a custom verb-raised name),
// the sub-name the firing matched on, and an optional payload.
type Event struct {
	Source  *variant.Value
	Name    string
	Sub     string
	Payload *variant.Value
}

// Handler receives a fired event. Fire calls it synchronously on the
// goroutine that fired the event, after the bus lock has been released.
type Handler func(ev Event)

type registration struct {
	id      uint64
	source  *variant.Value
	name    string
	sub     string
	handler Handler
}

// Bus holds every observer registration for one coroutine.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	regs     map[uint64]*registration
	bySource map[*variant.Value][]uint64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		regs:     make(map[uint64]*registration),
		bySource: make(map[*variant.Value][]uint64),
	}
}

// Register subscribes handler to (source, name, sub). sub may be "*" to
// match any sub-name. Returns an id usable with Forget.
func (b *Bus) Register(source *variant.Value, name, sub string, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	reg := &registration{id: id, source: source, name: name, sub: sub, handler: handler}
	b.regs[id] = reg
	if source != nil {
		b.bySource[source] = append(b.bySource[source], id)
	}
	return id
}

// Forget cancels a single registration by id (the explicit `forget(source,
// event)` verb path resolves to the id it was given at registration time).
func (b *Bus) Forget(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg, ok := b.regs[id]
	if !ok {
		return false
	}
	delete(b.regs, id)
	if reg.source != nil {
		ids := b.bySource[reg.source]
		for i, rid := range ids {
			if rid == id {
				b.bySource[reg.source] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	return true
}

// ForgetSource cancels every registration against source, called when the
// source variant is destroyed (spec §4.5: "automatic when the source
// variant is destroyed, listener revoked by reverse index").
func (b *Bus) ForgetSource(source *variant.Value) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.bySource[source] {
		delete(b.regs, id)
	}
	delete(b.bySource, source)
}

// Fire dispatches name/sub on source to every matching registration, in
// registration order. sub-name matching: exact match, or a registration's
// sub of "*" matches any fired sub, or a fired sub of "*" matches any
// registration's sub (container-wide events).
func (b *Bus) Fire(source *variant.Value, name, sub string, payload *variant.Value) {
	b.mu.Lock()
	var matched []*registration
	for _, reg := range b.regs {
		if reg.source != source || reg.name != name {
			continue
		}
		if reg.sub == "*" || sub == "*" || reg.sub == sub {
			matched = append(matched, reg)
		}
	}
	b.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, reg := range matched {
		reg.handler(Event{Source: source, Name: name, Sub: sub, Payload: payload})
	}
}

// WatchContainer bridges a variant container's grow/shrink/change listener
// mechanism (§4.1) into observation events (§4.5), deriving each firing's
// sub-name from the mutated member via keyFn. A nil keyFn uses "*", i.e.
// every firing is a wildcard sub-name.
func (b *Bus) WatchContainer(source *variant.Value, keyFn func(member *variant.Value) string) {
	if keyFn == nil {
		keyFn = func(*variant.Value) string { return "*" }
	}
	bridge := func(container *variant.Value, op variant.Op, member *variant.Value, ctxt any) bool {
		sub := "*"
		if member != nil {
			sub = keyFn(member)
		}
		b.Fire(source, op.String(), sub, member)
		return true
	}
	source.RegisterListener(variant.OpGrow, bridge, nil)
	source.RegisterListener(variant.OpShrink, bridge, nil)
	source.RegisterListener(variant.OpChange, bridge, nil)
}
