package variant

import "github.com/purc-run/hvml/herr"

type objectEntry struct {
	key   string
	value *Value
}

// objectData backs an Object value: a hash index plus an insertion-ordered
// list, so iteration order matches construction order (PurC objects
// preserve insertion order across merge_another) while lookup stays O(1).
type objectData struct {
	index     map[string]int // key -> index into order
	order     []objectEntry
	listeners listenerSet
}

func NewObject() *Value {
	v := newValue(Object)
	v.object = &objectData{index: make(map[string]int)}
	return v
}

// NewObjectFromPairs builds an object from alternating key/value pairs,
// last-write-wins on duplicate keys, matching VCM object-ctor evaluation.
func NewObjectFromPairs(pairs ...any) (*Value, error) {
	if len(pairs)%2 != 0 {
		return nil, herr.New(herr.KindInvalidValue, "object literal requires an even number of key/value items")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, herr.New(herr.KindInvalidValue, "object key must be a string")
		}
		val, ok := pairs[i+1].(*Value)
		if !ok {
			return nil, herr.New(herr.KindInvalidValue, "object value must be a *Value")
		}
		o.ObjectSet(k, val)
	}
	return o, nil
}

// Size reports the number of key/value pairs.
func (v *Value) Size() int {
	switch v.kind {
	case Object:
		return len(v.object.order)
	case Array:
		return len(v.array.items)
	case Set:
		return len(v.set.order)
	case Tuple:
		return len(v.tuple)
	default:
		return 0
	}
}

// ObjectGet returns the value bound to key, or nil if absent. The returned
// value is not additionally ref'd; callers that retain it beyond the
// current evaluation must Ref it themselves.
func (v *Value) ObjectGet(key string) *Value {
	if v.kind != Object {
		return nil
	}
	if i, ok := v.object.index[key]; ok {
		return v.object.order[i].value
	}
	return nil
}

// ObjectSet binds key to val, firing grow (new key) or change (existing
// key) exactly once. The object takes a strong reference on val and
// releases its previous binding's reference, if any.
func (v *Value) ObjectSet(key string, val *Value) {
	if v.kind != Object {
		return
	}
	val.Ref()
	if i, ok := v.object.index[key]; ok {
		old := v.object.order[i].value
		v.object.order[i].value = val
		old.Unref()
		v.object.listeners.fire(v, OpChange, val)
		return
	}
	v.object.index[key] = len(v.object.order)
	v.object.order = append(v.object.order, objectEntry{key: key, value: val})
	v.object.listeners.fire(v, OpGrow, val)
}

// ObjectErase removes key, firing shrink. Reports whether the key existed.
func (v *Value) ObjectErase(key string) bool {
	if v.kind != Object {
		return false
	}
	i, ok := v.object.index[key]
	if !ok {
		return false
	}
	removed := v.object.order[i].value
	v.object.order = append(v.object.order[:i], v.object.order[i+1:]...)
	delete(v.object.index, key)
	for k, idx := range v.object.index {
		if idx > i {
			v.object.index[k] = idx - 1
		}
	}
	v.object.listeners.fire(v, OpShrink, removed)
	removed.Unref()
	return true
}

// ObjectKeys returns the keys in insertion order.
func (v *Value) ObjectKeys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.object.order))
	for i, e := range v.object.order {
		keys[i] = e.key
	}
	return keys
}

// ObjectEach iterates entries in insertion order; fn returning false stops
// the iteration early.
func (v *Value) ObjectEach(fn func(key string, val *Value) bool) {
	if v.kind != Object {
		return
	}
	for _, e := range v.object.order {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// MergeAnother merges other's entries into v in other's insertion order,
// last-write-wins on key conflicts, preserving v's existing key positions
// and appending genuinely new keys at the end (PurC object_merge_another
// semantics).
func (v *Value) MergeAnother(other *Value) error {
	if v.kind != Object || other.kind != Object {
		return herr.New(herr.KindInvalidValue, "merge_another requires two objects")
	}
	other.object.listeners.firing++
	defer func() { other.object.listeners.firing-- }()
	for _, e := range other.object.order {
		v.ObjectSet(e.key, e.value)
	}
	return nil
}

// ObjectDisplace atomically replaces the entire membership of v with the
// key/value pairs of other, firing a single change event regardless of
// member-count delta (spec §4.1: "displace replaces the entire membership
// in one atomic step that fires a single change").
func (v *Value) ObjectDisplace(other *Value) error {
	if v.kind != Object || other.kind != Object {
		return herr.New(herr.KindInvalidValue, "displace requires two objects")
	}
	for _, e := range v.object.order {
		e.value.Unref()
	}
	v.object.index = make(map[string]int)
	v.object.order = nil
	for _, e := range other.object.order {
		e.value.Ref()
		v.object.index[e.key] = len(v.object.order)
		v.object.order = append(v.object.order, objectEntry{key: e.key, value: e.value})
	}
	v.object.listeners.fire(v, OpChange, nil)
	return nil
}

// Clear empties the container, firing shrink once with a nil member to
// signal a bulk removal.
func (v *Value) Clear() {
	switch v.kind {
	case Object:
		for _, e := range v.object.order {
			e.value.Unref()
		}
		v.object.index = make(map[string]int)
		v.object.order = nil
		v.object.listeners.fire(v, OpShrink, nil)
	case Array:
		for _, m := range v.array.items {
			m.Unref()
		}
		v.array.items = nil
		v.array.listeners.fire(v, OpShrink, nil)
	case Set:
		for _, m := range v.set.order {
			m.Unref()
		}
		v.set.order = nil
		v.set.index = make(map[string]int)
		v.set.listeners.fire(v, OpShrink, nil)
	}
}
