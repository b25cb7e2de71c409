package vcm

import "github.com/purc-run/hvml/variant"

// Scope is one link in the evaluation context's scope chain: innermost
// frame scope first, then document scope, then process scope (spec
// §4.3 "get-variable resolves ... innermost-first, then document scope,
// then process scope").
type Scope struct {
	vars   map[string]*variant.Value
	parent *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*variant.Value), parent: parent}
}

// Bind sets name in this scope frame (shadowing any outer binding),
// Ref'ing val on the scope's behalf.
func (s *Scope) Bind(name string, val *variant.Value) {
	if old, ok := s.vars[name]; ok {
		old.Unref()
	}
	val.Ref()
	s.vars[name] = val
}

// Lookup resolves name innermost-first up the chain, returning nil if
// unbound anywhere.
func (s *Scope) Lookup(name string) *variant.Value {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// Release unbinds every variable this scope frame owns, releasing its
// reference. Called when a frame pops.
func (s *Scope) Release() {
	for _, v := range s.vars {
		v.Unref()
	}
	s.vars = nil
}
