package interpreter

import (
	"context"
	"strings"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/render"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vdom"
)

// updateVerb implements `update on=<target> at=<selector> to=<op>
// with=<expr>|from=<uri>` (spec §4.6.5). It has no children of its own to
// traverse (select_child always returns nil): all of its work happens in
// after_pushed.
type updateVerb struct{}

func newUpdateVerb() Verb { return &updateVerb{} }

func init() { Register("update", newUpdateVerb) }

func (u *updateVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	attrs, err := evalAttrs(f)
	if err != nil {
		return err
	}
	f.AttrVars = attrs

	onVal := attrs.ObjectGet("on")
	if onVal == nil {
		return herr.New(herr.KindArgumentMissed, "update requires an on attribute")
	}
	toVal := attrs.ObjectGet("to")
	if toVal == nil {
		return herr.New(herr.KindArgumentMissed, "update requires a to attribute")
	}
	to := variant.Stringify(toVal)

	withVal := attrs.ObjectGet("with")
	fromVal := attrs.ObjectGet("from")
	if withVal == nil && fromVal == nil {
		return herr.New(herr.KindArgumentMissed, "update requires with or from")
	}
	if withVal != nil && fromVal != nil {
		return herr.New(herr.KindInvalidValue, "update accepts only one of with/from")
	}

	source := withVal
	if fromVal != nil {
		uri := variant.Stringify(fromVal)
		body, err := co.Cfg.Fetcher(ctx, uri)
		if err != nil {
			return herr.Wrap(herr.KindFailedRead, "fetching update source", err)
		}
		parsed, err := variant.ParseJSON(string(body))
		if err != nil {
			return herr.Wrap(herr.KindBadMessage, "parsing fetched update source", err)
		}
		source = parsed
		defer source.Unref()
	}

	combinator, operand := parseWithCombinator(source)
	if combinator != "" {
		defer operand.Unref()
	}

	var at string
	if atVal := attrs.ObjectGet("at"); atVal != nil {
		at = variant.Stringify(atVal)
	}

	if docNode, ok := resolveDocTarget(co, onVal); ok {
		return applyDocumentUpdate(ctx, co, docNode, at, to, combinator, operand)
	}
	return applyVariantUpdate(onVal, at, to, combinator, operand)
}

// resolveDocTarget reports whether onVal addresses a document element
// (rather than a variant container): either directly, as the
// interpreter's own variant wrapping a native document-node handle, or as
// a selector string (the worked example's `on=#x`), resolved against the
// document's query-selector path. Spec §4.6.5 "Targets: variant object/
// array/set or a document-element reference."
func resolveDocTarget(co *Coroutine, onVal *variant.Value) (*document.Node, bool) {
	if onVal.Kind() == variant.Native {
		n, ok := onVal.Native().(*document.Node)
		return n, ok
	}
	if onVal.Kind() != variant.String && onVal.Kind() != variant.AtomString {
		return nil, false
	}
	selector := variant.Stringify(onVal)
	if selector == "" {
		return nil, false
	}
	n, err := co.Doc.QuerySelector(selector)
	if err != nil || n == nil {
		return nil, false
	}
	return n, true
}

// elementTextContent concatenates target's descendant text in document
// order, the "existing value" a textContent combinator (spec §4.6.5)
// combines against.
func elementTextContent(n *document.Node) string {
	if n.Kind() == document.NodeText || n.Kind() == document.NodeCDATA {
		return n.Text()
	}
	var b strings.Builder
	for _, c := range n.Children() {
		b.WriteString(elementTextContent(c))
	}
	return b.String()
}

func applyDocumentUpdate(ctx context.Context, co *Coroutine, target *document.Node, at, to, combinator string, operand *variant.Value) error {
	switch {
	case at == "textContent":
		text := variant.Stringify(operand)
		if combinator != "" {
			existing := variant.MustString(elementTextContent(target))
			combined, err := combine(existing, operand, combinator)
			existing.Unref()
			if err != nil {
				return err
			}
			text = variant.Stringify(combined)
			combined.Unref()
		}
		target.UpdateText(text)
		return emitDocUpdateRequest(ctx, co, target, "textContent", render.DataPlain, text)
	case strings.HasPrefix(at, "attr."):
		name := strings.TrimPrefix(at, "attr.")
		text := variant.Stringify(operand)
		if combinator != "" {
			existing := variant.MustString(target.Attr(name))
			combined, err := combine(existing, operand, combinator)
			existing.Unref()
			if err != nil {
				return err
			}
			text = variant.Stringify(combined)
			combined.Unref()
		}
		if err := co.Doc.SetAttribute(target, document.OpUpdate, name, text); err != nil {
			return err
		}
		return emitDocUpdateRequest(ctx, co, target, name, render.DataPlain, text)
	}

	markup := variant.Stringify(operand)
	switch to {
	case "append":
		if _, err := co.Doc.NewContent(target, document.OpAppend, markup); err != nil {
			return err
		}
		return emitDocContentRequest(ctx, co, target, render.OpAppend, markup)
	case "displace":
		if _, err := co.Doc.NewContent(target, document.OpDisplace, markup); err != nil {
			return err
		}
		return emitDocContentRequest(ctx, co, target, render.OpDisplace, markup)
	default:
		return herr.New(herr.KindInvalidValue, "unsupported update op on document target: "+to)
	}
}

// emitDocUpdateRequest mirrors a property-level document mutation (attr or
// textContent) to the renderer as a single `update` request, spec §4.7
// "Each document op executed by a verb emits one renderer request on the
// DOM target" / §8 scenario 4.
func emitDocUpdateRequest(ctx context.Context, co *Coroutine, target *document.Node, property string, dt render.DataType, data string) error {
	if co.Renderer == nil {
		return nil
	}
	_, err := co.Renderer.Do(ctx, &render.Request{
		Target:      render.TargetDOM,
		TargetValue: 1,
		Operation:   render.OpUpdate,
		ElementType: render.ElementHandle,
		Element:     document.HandleString(target),
		Property:    property,
		DataType:    dt,
		Data:        variant.MustString(data),
	})
	if err != nil {
		return herr.Wrap(herr.KindConnectionAborted, "issuing renderer update", err)
	}
	return nil
}

// emitDocContentRequest mirrors a children mutation (append/displace) to
// the renderer, same discipline as emitDocUpdateRequest.
func emitDocContentRequest(ctx context.Context, co *Coroutine, target *document.Node, op render.Operation, markup string) error {
	if co.Renderer == nil {
		return nil
	}
	_, err := co.Renderer.Do(ctx, &render.Request{
		Target:      render.TargetDOM,
		TargetValue: 1,
		Operation:   op,
		ElementType: render.ElementHandle,
		Element:     document.HandleString(target),
		DataType:    dataTypeFor(co.Doc.Kind()),
		Data:        variant.MustString(markup),
	})
	if err != nil {
		return herr.Wrap(herr.KindConnectionAborted, "issuing renderer "+string(op), err)
	}
	return nil
}

func applyVariantUpdate(onVal *variant.Value, at, to, combinator string, operand *variant.Value) error {
	key := strings.TrimPrefix(at, ".")

	if key != "" {
		if sub := onVal.ObjectGet(key); sub != nil && !isContainerKind(sub.Kind()) {
			value := operand
			if combinator != "" {
				combined, err := combine(sub, operand, combinator)
				if err != nil {
					return err
				}
				value = combined
			}
			onVal.ObjectSet(key, value)
			if combinator != "" {
				value.Unref()
			}
			return nil
		}
	}

	target := onVal
	if key != "" {
		if sub := target.ObjectGet(key); sub != nil {
			target = sub
		}
	}

	switch target.Kind() {
	case variant.Object:
		switch to {
		case "merge":
			return target.MergeAnother(operand)
		case "displace":
			return target.ObjectDisplace(operand)
		default:
			return herr.New(herr.KindInvalidValue, "unsupported update op on object: "+to)
		}
	case variant.Array:
		switch to {
		case "append":
			target.ArrayAppend(operand)
			return nil
		case "displace":
			return target.ArrayDisplace(operand)
		default:
			return herr.New(herr.KindInvalidValue, "unsupported update op on array: "+to)
		}
	case variant.Set:
		switch to {
		case "displace":
			return target.SetDisplace(operand)
		case "unite":
			return target.SetUnite(operand)
		case "overwrite":
			return target.SetOverwrite(operand)
		default:
			return herr.New(herr.KindInvalidValue, "unsupported update op on set: "+to)
		}
	default:
		return herr.New(herr.KindInvalidValue, "update target must be a container or document element")
	}
}

func isContainerKind(k variant.Kind) bool {
	switch k {
	case variant.Object, variant.Array, variant.Set, variant.Tuple:
		return true
	default:
		return false
	}
}

var withCombinators = []string{"+=", "-=", "*=", "/="}

// parseWithCombinator splits a with value carrying a binary-operator
// prefix (spec §4.6.5 "Attribute with may carry a binary operator prefix
// ... selecting a combinator applied between the existing value and the
// new value") from its operand. Only a String-kind with value can carry
// one, since the prefix is textual syntax in front of the value it
// modifies; anything else passes through unchanged. The returned operand
// is a fresh, owned (refs=1) value whenever combinator != ""; callers must
// Unref it once done.
func parseWithCombinator(source *variant.Value) (combinator string, operand *variant.Value) {
	if source == nil || source.Kind() != variant.String {
		return "", source
	}
	s := source.Str()
	for _, candidate := range withCombinators {
		if !strings.HasPrefix(s, candidate) {
			continue
		}
		rest := strings.TrimPrefix(s, candidate)
		if v, err := variant.ParseJSON(strings.TrimSpace(rest)); err == nil {
			return candidate, v
		}
		return candidate, variant.MustString(rest)
	}
	return "", source
}

// combine applies op between existing and operand. "+=" on non-numeric
// operands falls back to string concatenation; the rest always coerce
// numerically (spec §4.1 Numberify rules). Returns a fresh, owned value.
func combine(existing, operand *variant.Value, op string) (*variant.Value, error) {
	if op == "+=" && (existing.Kind() == variant.String || operand.Kind() == variant.String) {
		return variant.MustString(variant.Stringify(existing) + variant.Stringify(operand)), nil
	}
	a, b := variant.Numberify(existing), variant.Numberify(operand)
	switch op {
	case "+=":
		return variant.NewNumber(a + b), nil
	case "-=":
		return variant.NewNumber(a - b), nil
	case "*=":
		return variant.NewNumber(a * b), nil
	case "/=":
		if b == 0 {
			return nil, herr.New(herr.KindInvalidValue, "update with /= by zero")
		}
		return variant.NewNumber(a / b), nil
	default:
		return nil, herr.New(herr.KindInvalidValue, "unknown update combinator: "+op)
	}
}

func (u *updateVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return nil, nil
}
func (u *updateVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}
func (u *updateVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }
