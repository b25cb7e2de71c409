package interpreter

import (
	"context"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/observer"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// observeVerb implements `observe on=<source> for=<event> sub=<sub-name>`
// (spec §4.5): after_pushed registers a bus handler and takes no further
// action during first-run (select_child returns nil immediately); the body
// re-executes as its own frame stack on each matching firing, once the
// coroutine has reached the observing stage, via
// Coroutine.runObserverHandler.
type observeVerb struct{}

func newObserveVerb() Verb { return &observeVerb{} }

func init() { Register("observe", newObserveVerb) }

func (o *observeVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	f.DocTarget = parentTarget(co, f)

	onExpr := f.Node.Attr("on")
	if onExpr == nil {
		return herr.New(herr.KindArgumentMissed, "observe requires an on attribute")
	}
	source, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, onExpr)
	if err != nil {
		return err
	}
	defer source.Unref()

	eventName := "*"
	if e := f.Node.Attr("for"); e != nil {
		v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, e)
		if err != nil {
			return err
		}
		eventName = variant.Stringify(v)
		v.Unref()
	}

	subName := "*"
	if s := f.Node.Attr("sub"); s != nil {
		v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, s)
		if err != nil {
			return err
		}
		subName = variant.Stringify(v)
		v.Unref()
	}

	body := f.Node
	scope := f.Scope
	target := f.DocTarget
	co.Observers.Register(source, eventName, subName, func(ev observer.Event) {
		co.runObserverHandler(ctx, body, scope, target, ev)
	})
	return nil
}

func (o *observeVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return nil, nil
}

func (o *observeVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}

func (o *observeVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }
