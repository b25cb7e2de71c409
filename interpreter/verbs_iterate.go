package interpreter

import (
	"context"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/executor"
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// iterateVerb implements `iterate on=<value> by=<rule> onlyif=<cond>`
// (spec §4.6.4): an executor plugin walks the bound input; the body
// repeats once per step, with the current element bound into scope under
// the name the `as` attribute gives (default "_") and its index under
// that name with an "_idx" suffix (default "__idx").
type iterateVerb struct {
	it      executor.Iterator
	hasMore bool
	itemVar string
	target  *document.Node
}

func newIterateVerb() Verb { return &iterateVerb{} }

func init() { Register("iterate", newIterateVerb) }

func (iv *iterateVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	attrs, err := evalAttrs(f)
	if err != nil {
		return err
	}
	f.AttrVars = attrs
	f.DocTarget = parentTarget(co, f)
	iv.target = f.DocTarget

	onVal := attrs.ObjectGet("on")
	if onVal == nil {
		return herr.New(herr.KindArgumentMissed, "iterate requires an on attribute")
	}
	ruleVal := attrs.ObjectGet("by")
	if ruleVal == nil {
		return herr.New(herr.KindArgumentMissed, "iterate requires a by attribute")
	}
	rule := variant.Stringify(ruleVal)

	iv.itemVar = "_"
	if asVal := attrs.ObjectGet("as"); asVal != nil {
		iv.itemVar = variant.Stringify(asVal)
	}

	it, err := executor.Create(onVal, rule, false)
	if err != nil {
		return err
	}
	iv.it = it

	ok, err := it.Begin()
	if err != nil {
		return err
	}
	iv.hasMore = ok
	if ok {
		iv.bindCurrent(f)
		iv.hasMore = iv.checkOnlyIf(f)
	}
	return nil
}

func (iv *iterateVerb) bindCurrent(f *Frame) {
	v := iv.it.Value()
	if v == nil {
		return
	}
	f.Scope.Bind(iv.itemVar, v)
	f.Scope.Bind(iv.itemVar+"_idx", variant.NewLongInt(int64(f.Idx)))
}

func (iv *iterateVerb) checkOnlyIf(f *Frame) bool {
	cond := f.Node.Attr("onlyif")
	if cond == nil {
		return true
	}
	v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, cond)
	if err != nil {
		return false
	}
	defer v.Unref()
	return variant.Stringify(v) == "true"
}

func (iv *iterateVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	if !iv.hasMore {
		return nil, nil
	}
	return defaultSelectChild(co, f, func(text string) {
		co.Doc.NewTextContent(iv.target, document.OpAppend, text)
	})
}

func (iv *iterateVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return !iv.hasMore, nil
}

func (iv *iterateVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error {
	ok, err := iv.it.Next()
	if err != nil {
		return err
	}
	iv.hasMore = ok
	if ok {
		f.Idx++
		iv.bindCurrent(f)
		iv.hasMore = iv.checkOnlyIf(f)
	}
	if !iv.hasMore {
		iv.it.Destroy()
	}
	f.Curr = 0
	return nil
}

// parentTarget resolves the document insertion point a frame's children
// should attach under: the immediate parent frame's DocTarget when f has a
// parent on the stack, else the document root.
func parentTarget(co *Coroutine, f *Frame) *document.Node {
	if len(co.stack) >= 2 {
		return co.stack[len(co.stack)-2].DocTarget
	}
	return co.Doc.RootElement()
}
