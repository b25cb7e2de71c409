package interpreter

import (
	"context"
	"sync"

	"github.com/purc-run/hvml/vdom"
)

// Verb implements one VDOM element's lifecycle (spec §4.6.1): allocate
// state and validate attributes, offer children one at a time, then decide
// whether the frame is done or needs another pass.
type Verb interface {
	// AfterPushed allocates ctxt, evaluates attributes, and may kick off
	// an async side-effect. A non-nil error sends the driver to the
	// nearest matching except/error handler.
	AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error
	// SelectChild returns the next child VDOM element to descend into, or
	// nil when none remain.
	SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error)
	// OnPopping runs once select_child has returned nil. Returning false
	// requests a re-run (the driver then calls Rerun and goes back to
	// select_child); true pops the frame.
	OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error)
	// Rerun advances the verb's iteration state after a false OnPopping.
	Rerun(ctx context.Context, co *Coroutine, f *Frame) error
}

// Factory builds a fresh Verb instance for one frame.
type Factory func() Verb

var (
	registryMu sync.Mutex
	registry   = make(map[string]Factory)
)

// Register installs tag's verb factory. Tags not registered fall back to
// the template (pass-through markup) verb.
func Register(tag string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = f
}

// resolveVerb looks up n.Tag's verb factory, defaulting to the template
// verb for ordinary markup and for any verb tag without a registered
// implementation yet.
func resolveVerb(n *vdom.Node) Verb {
	registryMu.Lock()
	f, ok := registry[n.Tag]
	registryMu.Unlock()
	if !ok {
		return newTemplateVerb()
	}
	return f()
}
