package interpreter

import (
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// defaultSelectChild walks f.Node's children once, skipping comments,
// evaluating content nodes through onContent (nil to ignore them
// entirely), skipping error/except handler subtrees (the driver captures
// those separately via collectHandlers), and returning the next plain
// element child to descend into. It is the shared traversal every verb
// that doesn't need custom child-stepping (iterate's per-item repeat,
// choose's branch selection) uses directly, per spec §4.6.1's "content
// children are consumed inline, comment children are skipped, non-element
// children other than content trigger NOT_IMPLEMENTED by default."
func defaultSelectChild(co *Coroutine, f *Frame, onContent func(text string)) (*vdom.Node, error) {
	children := f.Node.Children
	for f.Curr < len(children) {
		c := children[f.Curr]
		f.Curr++
		switch c.Kind {
		case vdom.NodeComment:
			continue
		case vdom.NodeContent:
			if onContent == nil {
				continue
			}
			v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, c.Content)
			if err != nil {
				return nil, err
			}
			onContent(variant.Stringify(v))
			v.Unref()
		case vdom.NodeElement:
			switch vdom.Classify(c) {
			case vdom.ClassError, vdom.ClassExcept:
				continue
			default:
				return c, nil
			}
		default:
			return nil, herr.New(herr.KindNotImplemented, "unsupported child node kind")
		}
	}
	return nil, nil
}

// stringifyAttr renders an evaluated attribute value as document attribute
// text.
func stringifyAttr(v *variant.Value) string { return variant.Stringify(v) }
