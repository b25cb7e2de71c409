package vcm

import (
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
)

// Context carries the per-evaluation state spec §3.4 names: the scope
// chain, the silently flag, and a frame reference used for error
// attribution (opaque to vcm — it is whatever the interpreter package
// passes through, typically *interpreter.Frame).
type Context struct {
	Scope     *Scope
	Silently  bool
	Frame     any
}

// Eval evaluates node against ctx, post-order, per spec §4.3.
//
// On a child evaluation error, Eval's behavior depends on ctx.Silently:
// when true, the error is swallowed and Undefined substituted for that
// child (so, e.g., a concat-string with one failing child still produces a
// string from the others); when false, the error propagates immediately.
func Eval(ctx *Context, node *Node) (*variant.Value, error) {
	if node == nil {
		return variant.NewUndefined(), nil
	}
	switch node.Kind {
	case KLiteral:
		return node.Literal.Ref(), nil

	case KObjectCtor:
		if len(node.Children)%2 != 0 {
			return failOrUndefined(ctx, herr.New(herr.KindInvalidValue, "object-ctor requires key/value pairs"))
		}
		obj := variant.NewObject()
		for i := 0; i < len(node.Children); i += 2 {
			k, err := evalChild(ctx, node.Children[i])
			if err != nil {
				return failOrUndefined(ctx, err)
			}
			v, err := evalChild(ctx, node.Children[i+1])
			if err != nil {
				return failOrUndefined(ctx, err)
			}
			obj.ObjectSet(variant.Stringify(k), v)
			k.Unref()
			v.Unref()
		}
		return obj, nil

	case KArrayCtor:
		arr := variant.NewArray()
		for _, c := range node.Children {
			v, err := evalChild(ctx, c)
			if err != nil {
				return failOrUndefined(ctx, err)
			}
			arr.ArrayAppend(v)
			v.Unref()
		}
		return arr, nil

	case KConcatString:
		var sb []byte
		for _, c := range node.Children {
			v, err := evalChild(ctx, c)
			if err != nil {
				return failOrUndefined(ctx, err)
			}
			sb = append(sb, variant.Stringify(v)...)
			v.Unref()
		}
		return variant.MustString(string(sb)), nil

	case KGetVariable:
		nameVal, err := evalChild(ctx, node.Children[0])
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		name := variant.Stringify(nameVal)
		nameVal.Unref()
		if ctx.Scope == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "no scope to resolve variable "+name))
		}
		v := ctx.Scope.Lookup(name)
		if v == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "undefined variable: "+name))
		}
		return v.Ref(), nil

	case KGetElement:
		parent, err := evalChild(ctx, node.Children[0])
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		defer parent.Unref()
		keyVal, err := evalChild(ctx, node.Children[1])
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		defer keyVal.Unref()
		return getElement(ctx, parent, keyVal)

	case KCallGetter:
		return callGetterOrSetter(ctx, node, true)

	case KCallSetter:
		return callGetterOrSetter(ctx, node, false)

	default:
		return failOrUndefined(ctx, herr.New(herr.KindNotImplemented, "unknown VCM node kind"))
	}
}

func evalChild(ctx *Context, n *Node) (*variant.Value, error) {
	return Eval(ctx, n)
}

func failOrUndefined(ctx *Context, err error) (*variant.Value, error) {
	if ctx != nil && ctx.Silently {
		return variant.NewUndefined(), nil
	}
	return nil, err
}

// getElement performs object_get/array_get with numeric keys, or invokes
// the native property-getter vtable slot, per spec §4.3.
func getElement(ctx *Context, parent, key *variant.Value) (*variant.Value, error) {
	switch parent.Kind() {
	case variant.Object:
		v := parent.ObjectGet(variant.Stringify(key))
		if v == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "no such property: "+variant.Stringify(key)))
		}
		return v.Ref(), nil
	case variant.Array:
		idx := int(variant.CastToInt32(key))
		v := parent.ArrayGet(idx)
		if v == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "array index out of range"))
		}
		return v.Ref(), nil
	case variant.Set:
		v := parent.SetGetByKey(variant.Stringify(key))
		if v == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "no such set member"))
		}
		return v.Ref(), nil
	case variant.Tuple:
		idx := int(variant.CastToInt32(key))
		v := parent.TupleGet(idx)
		if v == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "tuple index out of range"))
		}
		return v.Ref(), nil
	case variant.Native:
		vt := parent.NativeVTable()
		if vt == nil || vt.PropertyGetter == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotSupported, "native value has no property getter"))
		}
		getter, ok := vt.PropertyGetter(parent.Native(), variant.Stringify(key))
		if !ok {
			return failOrUndefined(ctx, herr.New(herr.KindNotExists, "no such native property"))
		}
		v, err := getter(nil)
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		return v, nil
	default:
		return failOrUndefined(ctx, herr.New(herr.KindInvalidValue, "get-element on non-container value"))
	}
}

func callGetterOrSetter(ctx *Context, node *Node, isGetter bool) (*variant.Value, error) {
	subject, err := evalChild(ctx, node.Children[0])
	if err != nil {
		return failOrUndefined(ctx, err)
	}
	defer subject.Unref()

	if subject.Kind() != variant.Dynamic {
		return failOrUndefined(ctx, herr.New(herr.KindInvalidValue, "call-getter/setter subject is not dynamic"))
	}

	var args []*variant.Value
	for _, c := range node.Children[1:] {
		v, err := evalChild(ctx, c)
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		args = append(args, v)
	}
	defer func() {
		for _, a := range args {
			a.Unref()
		}
	}()

	if isGetter {
		getter := subject.Getter()
		if getter == nil {
			return failOrUndefined(ctx, herr.New(herr.KindNotSupported, "dynamic value has no getter"))
		}
		v, err := getter(args)
		if err != nil {
			return failOrUndefined(ctx, err)
		}
		return v, nil
	}
	setter := subject.Setter()
	if setter == nil {
		return failOrUndefined(ctx, herr.New(herr.KindNotSupported, "dynamic value has no setter"))
	}
	v, err := setter(args)
	if err != nil {
		return failOrUndefined(ctx, err)
	}
	return v, nil
}
