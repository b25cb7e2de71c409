package variant

import "github.com/purc-run/hvml/herr"

type arrayData struct {
	items     []*Value
	listeners listenerSet
}

func NewArray(items ...*Value) *Value {
	v := newValue(Array)
	v.array = &arrayData{}
	for _, it := range items {
		it.Ref()
		v.array.items = append(v.array.items, it)
	}
	return v
}

// ArrayGet returns the element at index, resolving negative indices from
// the end (PurC convention); returns nil if out of range.
func (v *Value) ArrayGet(index int) *Value {
	if v.kind != Array {
		return nil
	}
	n := len(v.array.items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil
	}
	return v.array.items[index]
}

// ArraySet replaces the element at index, firing change. Out-of-range
// indices are a no-op returning false.
func (v *Value) ArraySet(index int, val *Value) bool {
	if v.kind != Array {
		return false
	}
	n := len(v.array.items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return false
	}
	val.Ref()
	old := v.array.items[index]
	v.array.items[index] = val
	old.Unref()
	v.array.listeners.fire(v, OpChange, val)
	return true
}

// ArrayAppend adds val at the end, firing grow.
func (v *Value) ArrayAppend(val *Value) {
	if v.kind != Array {
		return
	}
	val.Ref()
	v.array.items = append(v.array.items, val)
	v.array.listeners.fire(v, OpGrow, val)
}

// ArrayPrepend adds val at the start, firing grow.
func (v *Value) ArrayPrepend(val *Value) {
	if v.kind != Array {
		return
	}
	val.Ref()
	v.array.items = append([]*Value{val}, v.array.items...)
	v.array.listeners.fire(v, OpGrow, val)
}

// ArrayInsertBefore inserts val before index; an out-of-range index appends
// (spec §8 boundary behavior).
func (v *Value) ArrayInsertBefore(index int, val *Value) {
	if v.kind != Array {
		return
	}
	n := len(v.array.items)
	if index < 0 || index >= n {
		v.ArrayAppend(val)
		return
	}
	val.Ref()
	items := make([]*Value, 0, n+1)
	items = append(items, v.array.items[:index]...)
	items = append(items, val)
	items = append(items, v.array.items[index:]...)
	v.array.items = items
	v.array.listeners.fire(v, OpGrow, val)
}

// ArrayInsertAfter inserts val after index; an out-of-range index appends.
func (v *Value) ArrayInsertAfter(index int, val *Value) {
	if v.kind != Array {
		return
	}
	n := len(v.array.items)
	if index < 0 || index >= n-1 {
		v.ArrayAppend(val)
		return
	}
	v.ArrayInsertBefore(index+1, val)
}

// ArrayRemove deletes the element at index, firing shrink. Out-of-range is
// a no-op returning false.
func (v *Value) ArrayRemove(index int) bool {
	if v.kind != Array {
		return false
	}
	n := len(v.array.items)
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return false
	}
	removed := v.array.items[index]
	v.array.items = append(v.array.items[:index], v.array.items[index+1:]...)
	v.array.listeners.fire(v, OpShrink, removed)
	removed.Unref()
	return true
}

// ArrayDisplace atomically replaces the whole membership with other's
// elements (an array or any iterable container), firing one change.
func (v *Value) ArrayDisplace(other *Value) error {
	if v.kind != Array {
		return herr.New(herr.KindInvalidValue, "displace target must be an array")
	}
	elems := elementsOf(other)
	if elems == nil {
		return herr.New(herr.KindInvalidValue, "displace source must be iterable")
	}
	for _, m := range v.array.items {
		m.Unref()
	}
	v.array.items = nil
	for _, m := range elems {
		m.Ref()
		v.array.items = append(v.array.items, m)
	}
	v.array.listeners.fire(v, OpChange, nil)
	return nil
}

func elementsOf(v *Value) []*Value {
	switch v.kind {
	case Array:
		return v.array.items
	case Set:
		return v.set.order
	case Tuple:
		return v.tuple
	default:
		return nil
	}
}

// NewTuple builds a fixed-size tuple value (arity fixed at construction,
// unlike array).
func NewTuple(items ...*Value) *Value {
	v := newValue(Tuple)
	for _, it := range items {
		it.Ref()
		v.tuple = append(v.tuple, it)
	}
	return v
}

func (v *Value) TupleGet(index int) *Value {
	if v.kind != Tuple || index < 0 || index >= len(v.tuple) {
		return nil
	}
	return v.tuple[index]
}
