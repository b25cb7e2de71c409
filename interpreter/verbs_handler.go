package interpreter

import (
	"context"

	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vdom"
)

// handlerVerb runs an <error>/<except> subtree's body in place, without
// materializing a document element of its own — the handler inherits its
// owner frame's document target and binds its last content child's
// evaluation into ResultVar (spec §4.6.7, example "Except handler match").
// It is also reused, unregistered, as the body-runner for observe's
// per-firing re-execution (spec §4.5): coroutine.runObserverHandler presets
// Frame.Verb to a handlerVerb directly rather than dispatching on tag.
type handlerVerb struct{}

func newHandlerVerb() Verb { return &handlerVerb{} }

func init() {
	Register("error", newHandlerVerb)
	Register("except", newHandlerVerb)
}

func (h *handlerVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	attrs, err := evalAttrs(f)
	if err != nil {
		return err
	}
	f.AttrVars = attrs
	if f.DocTarget == nil {
		f.DocTarget = parentTarget(co, f)
	}
	return nil
}

func (h *handlerVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return defaultSelectChild(co, f, func(text string) {
		f.ResultVar = variant.MustString(text)
	})
}

func (h *handlerVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}

func (h *handlerVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }
