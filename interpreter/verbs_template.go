package interpreter

import (
	"context"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/vdom"
)

// templateVerb handles ordinary markup elements (div, p, hvml, head, body,
// and anything the static verb table doesn't classify as an operation
// verb): it materializes the corresponding document element, copies its
// evaluated attributes onto it, and walks its children in document order.
type templateVerb struct {
	target *document.Node
}

func newTemplateVerb() Verb { return &templateVerb{} }

func (t *templateVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	attrs, err := evalAttrs(f)
	if err != nil {
		return err
	}
	f.AttrVars = attrs

	parent := f.DocTarget
	if parent == nil {
		parent = co.Doc.RootElement()
	}

	switch f.Node.Tag {
	case "hvml":
		// The program root maps onto the document's own root element;
		// no new node is created for it.
		t.target = co.Doc.RootElement()
	case "head", "body":
		n, err := co.Doc.OperateElement(parent, document.OpAppend, f.Node.Tag, false)
		if err != nil {
			return err
		}
		co.Doc.SetSpecialElement(f.Node.Tag, n)
		t.target = n
	default:
		n, err := co.Doc.OperateElement(parent, document.OpAppend, f.Node.Tag, false)
		if err != nil {
			return err
		}
		t.target = n
	}
	f.DocTarget = t.target

	for _, name := range f.AttrVars.ObjectKeys() {
		v := f.AttrVars.ObjectGet(name)
		if v == nil {
			continue
		}
		if err := co.Doc.SetAttribute(t.target, document.OpUpdate, name, stringifyAttr(v)); err != nil {
			return err
		}
	}
	return nil
}

func (t *templateVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return defaultSelectChild(co, f, func(text string) {
		co.Doc.NewTextContent(t.target, document.OpAppend, text)
	})
}

func (t *templateVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}
func (t *templateVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }

func init() {
	Register("hvml", newTemplateVerb)
	Register("head", newTemplateVerb)
	Register("body", newTemplateVerb)
}
