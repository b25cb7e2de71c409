package interpreter

import (
	"context"

	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// chooseVerb implements `choose on=<expr>` (spec §8 scenario 6): evaluating
// `on` sets ResultVar to the chosen value; an error during that evaluation
// sends the driver to choose's own <except>/<error> children, whose
// handlerVerb result becomes ResultVar instead.
type chooseVerb struct{}

func newChooseVerb() Verb { return &chooseVerb{} }

func init() { Register("choose", newChooseVerb) }

func (c *chooseVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	f.DocTarget = parentTarget(co, f)

	onExpr := f.Node.Attr("on")
	if onExpr == nil {
		return nil
	}
	v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, onExpr)
	if err != nil {
		return err
	}
	f.ResultVar = v
	return nil
}

func (c *chooseVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return defaultSelectChild(co, f, func(text string) {
		f.ResultVar = variant.MustString(text)
	})
}

func (c *chooseVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}

func (c *chooseVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }
