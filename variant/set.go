package variant

import "github.com/purc-run/hvml/herr"

// KeyFunc projects a member value to its uniqueness key. The common case —
// unique-by-property — is built by KeyByProperty; a set declared with a
// blank unique key (KeyByIdentity) falls back to structural equality.
type KeyFunc func(member *Value) string

// KeyByProperty returns a KeyFunc that projects an object member's named
// property, stringified, as its uniqueness key — the common specialization
// spec §4.1 calls out ("commonly a property name").
func KeyByProperty(name string) KeyFunc {
	return func(m *Value) string {
		if m.kind != Object {
			return ""
		}
		prop := m.ObjectGet(name)
		if prop == nil {
			return ""
		}
		return Stringify(prop)
	}
}

// KeyByIdentity projects a member to its full stringified structural form,
// used when a set is declared without an explicit unique-key property.
func KeyByIdentity(m *Value) string { return Stringify(m) }

// DuplicatePolicy controls what set insertion does when a projected key
// already exists in the set.
type DuplicatePolicy int

const (
	// PolicyStrict rejects the insert with herr.KindDuplicated.
	PolicyStrict DuplicatePolicy = iota
	// PolicyOverwrite replaces the existing member with the same key.
	PolicyOverwrite
	// PolicyUnite merges the new object's properties into the existing
	// member (used by `update to=unite` on a set target).
	PolicyUnite
)

type setData struct {
	keyFn     KeyFunc
	index     map[string]int // key -> index into order
	order     []*Value
	listeners listenerSet
}

// NewSet creates an empty set with the given uniqueness projection. A nil
// keyFn defaults to KeyByIdentity.
func NewSet(keyFn KeyFunc) *Value {
	if keyFn == nil {
		keyFn = KeyByIdentity
	}
	v := newValue(Set)
	v.set = &setData{keyFn: keyFn, index: make(map[string]int)}
	return v
}

// SetInsert adds a member under policy, firing grow on a genuinely new key
// or change when an existing key is overwritten/united.
func (v *Value) SetInsert(member *Value, policy DuplicatePolicy) error {
	if v.kind != Set {
		return herr.New(herr.KindInvalidValue, "insert target is not a set")
	}
	key := v.set.keyFn(member)
	if i, ok := v.set.index[key]; ok {
		switch policy {
		case PolicyStrict:
			return herr.New(herr.KindDuplicated, "duplicate set member for key "+key)
		case PolicyOverwrite:
			member.Ref()
			old := v.set.order[i]
			v.set.order[i] = member
			old.Unref()
			v.set.listeners.fire(v, OpChange, member)
			return nil
		case PolicyUnite:
			existing := v.set.order[i]
			if existing.kind == Object && member.kind == Object {
				if err := existing.MergeAnother(member); err != nil {
					return err
				}
			}
			v.set.listeners.fire(v, OpChange, existing)
			return nil
		}
	}
	member.Ref()
	v.set.index[key] = len(v.set.order)
	v.set.order = append(v.set.order, member)
	v.set.listeners.fire(v, OpGrow, member)
	return nil
}

// SetRemove deletes the member matching member's projected key, firing
// shrink. Reports whether a member was removed.
func (v *Value) SetRemove(member *Value) bool {
	if v.kind != Set {
		return false
	}
	key := v.set.keyFn(member)
	return v.setRemoveKey(key)
}

func (v *Value) setRemoveKey(key string) bool {
	i, ok := v.set.index[key]
	if !ok {
		return false
	}
	removed := v.set.order[i]
	v.set.order = append(v.set.order[:i], v.set.order[i+1:]...)
	delete(v.set.index, key)
	for k, idx := range v.set.index {
		if idx > i {
			v.set.index[k] = idx - 1
		}
	}
	v.set.listeners.fire(v, OpShrink, removed)
	removed.Unref()
	return true
}

// SetGetByKey looks up a member by its already-projected key value.
func (v *Value) SetGetByKey(key string) *Value {
	if v.kind != Set {
		return nil
	}
	if i, ok := v.set.index[key]; ok {
		return v.set.order[i]
	}
	return nil
}

// SetEach iterates members in insertion order.
func (v *Value) SetEach(fn func(m *Value) bool) {
	if v.kind != Set {
		return
	}
	for _, m := range v.set.order {
		if !fn(m) {
			return
		}
	}
}

// SetDisplace atomically replaces the whole membership, firing a single
// change event regardless of member-count delta (spec §8 boundary
// behavior: "Set displace fires a single change event regardless of
// member count").
func (v *Value) SetDisplace(other *Value) error {
	if v.kind != Set {
		return herr.New(herr.KindInvalidValue, "displace target must be a set")
	}
	elems := elementsOf(other)
	if elems == nil {
		return herr.New(herr.KindInvalidValue, "displace source must be iterable")
	}
	for _, m := range v.set.order {
		m.Unref()
	}
	v.set.order = nil
	v.set.index = make(map[string]int)
	for _, m := range elems {
		key := v.set.keyFn(m)
		if _, dup := v.set.index[key]; dup {
			continue
		}
		m.Ref()
		v.set.index[key] = len(v.set.order)
		v.set.order = append(v.set.order, m)
	}
	v.set.listeners.fire(v, OpChange, nil)
	return nil
}

// SetUnite inserts every element of other using PolicyUnite.
func (v *Value) SetUnite(other *Value) error {
	if v.kind != Set {
		return herr.New(herr.KindInvalidValue, "unite target must be a set")
	}
	elems := elementsOf(other)
	for _, m := range elems {
		if err := v.SetInsert(m, PolicyUnite); err != nil {
			return err
		}
	}
	return nil
}

// SetOverwrite inserts every element of other using PolicyOverwrite.
func (v *Value) SetOverwrite(other *Value) error {
	if v.kind != Set {
		return herr.New(herr.KindInvalidValue, "overwrite target must be a set")
	}
	elems := elementsOf(other)
	for _, m := range elems {
		if err := v.SetInsert(m, PolicyOverwrite); err != nil {
			return err
		}
	}
	return nil
}
