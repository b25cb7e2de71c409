package variant

// Op identifies the structural mutation a listener observes.
type Op int

const (
	OpGrow Op = iota
	OpShrink
	OpChange
)

func (o Op) String() string {
	switch o {
	case OpGrow:
		return "grow"
	case OpShrink:
		return "shrink"
	case OpChange:
		return "change"
	default:
		return "unknown"
	}
}

// Handler is invoked post-mutation with the container, the affected member
// (nil for whole-container operations such as set displace), and the
// handler's registration context. Returning false aborts further listeners
// for this firing but never undoes the mutation already applied.
type Handler func(container *Value, op Op, member *Value, ctxt any) bool

type listener struct {
	op      Op
	handler Handler
	ctxt    any
	id      uint64
}

// listenerSet is embedded in every container kind. Registration is ordered;
// firing snapshots the slice first so a handler that registers or revokes
// listeners during dispatch never corrupts the in-progress firing, and fire
// holds a reference on the container for the whole dispatch so a handler's
// Unref cannot destroy it mid-firing.
type listenerSet struct {
	items   []listener
	nextID  uint64
	firing  int
	pending []listener // unused: revoke removes a listener immediately
}

func (ls *listenerSet) register(op Op, h Handler, ctxt any) uint64 {
	ls.nextID++
	id := ls.nextID
	ls.items = append(ls.items, listener{op: op, handler: h, ctxt: ctxt, id: id})
	return id
}

func (ls *listenerSet) revoke(id uint64) bool {
	for i, l := range ls.items {
		if l.id == id {
			ls.items = append(ls.items[:i], ls.items[i+1:]...)
			return true
		}
	}
	return false
}

// fire dispatches op to every matching listener, in registration order,
// against a snapshot of the listener slice so re-entrant register/revoke
// calls triggered by a handler never affect the firing in progress.
func (ls *listenerSet) fire(container *Value, op Op, member *Value) {
	if len(ls.items) == 0 {
		return
	}
	snapshot := make([]listener, len(ls.items))
	copy(snapshot, ls.items)
	container.Ref()
	defer container.Unref()
	ls.firing++
	defer func() { ls.firing-- }()
	for _, l := range snapshot {
		if l.op != op {
			continue
		}
		if !l.handler(container, op, member, l.ctxt) {
			break
		}
	}
}

// RegisterListener subscribes h to op-events on container v. Returns the
// listener id used to Revoke it, or 0 if v is not a container kind.
func (v *Value) RegisterListener(op Op, h Handler, ctxt any) uint64 {
	switch v.kind {
	case Object:
		return v.object.listeners.register(op, h, ctxt)
	case Array:
		return v.array.listeners.register(op, h, ctxt)
	case Set:
		return v.set.listeners.register(op, h, ctxt)
	default:
		return 0
	}
}

// RevokeListener removes a previously registered listener by id.
func (v *Value) RevokeListener(id uint64) bool {
	switch v.kind {
	case Object:
		return v.object.listeners.revoke(id)
	case Array:
		return v.array.listeners.revoke(id)
	case Set:
		return v.set.listeners.revoke(id)
	default:
		return false
	}
}
