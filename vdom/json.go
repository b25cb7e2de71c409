package vdom

import (
	"github.com/tidwall/gjson"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
)

// LoadJSON builds a program tree from its JSON-serialized form: the
// tokenizer that turns HVML source markup (including its `$var.prop`/
// `$GET(...)` expression syntax) into vdom+vcm trees is out of scope (spec
// §1), so this is the harness-level stand-in that lets cmd/hvmlrun and
// tests load an already-tokenized tree from a file. Attribute and content
// values in this JSON form are literal: each becomes a vcm.NewLiteral node,
// not a parsed expression.
//
//	{"tag":"body","attrs":{"id":"main"},"children":[
//	  {"content":"hello"},
//	  {"tag":"div","children":[...]}
//	]}
func LoadJSON(s string) (*Node, error) {
	if !gjson.Valid(s) {
		return nil, herr.New(herr.KindInvalidValue, "invalid vdom JSON")
	}
	return fromJSON(gjson.Parse(s))
}

func fromJSON(r gjson.Result) (*Node, error) {
	if !r.IsObject() {
		return nil, herr.New(herr.KindInvalidValue, "vdom JSON node must be an object")
	}

	if content := r.Get("content"); content.Exists() {
		v, err := literalFromGJSON(content)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeContent, Content: vcm.NewLiteral(v)}, nil
	}
	if comment := r.Get("comment"); comment.Exists() {
		return &Node{Kind: NodeComment, CommentText: comment.String()}, nil
	}

	tag := r.Get("tag")
	if !tag.Exists() {
		return nil, herr.New(herr.KindInvalidValue, "vdom JSON element node requires a tag")
	}

	n := &Node{Kind: NodeElement, Tag: tag.String()}

	if attrs := r.Get("attrs"); attrs.Exists() && attrs.IsObject() {
		var err error
		attrs.ForEach(func(key, val gjson.Result) bool {
			v, e := literalFromGJSON(val)
			if e != nil {
				err = e
				return false
			}
			n.Attrs = append(n.Attrs, Attr{Name: key.String(), Value: vcm.NewLiteral(v)})
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	if children := r.Get("children"); children.Exists() && children.IsArray() {
		var err error
		children.ForEach(func(_, val gjson.Result) bool {
			child, e := fromJSON(val)
			if e != nil {
				err = e
				return false
			}
			n.Children = append(n.Children, child)
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	return n, nil
}

func literalFromGJSON(r gjson.Result) (*variant.Value, error) {
	return variant.ParseJSON(r.Raw)
}
