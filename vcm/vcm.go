// Package vcm implements HVML's expression sub-language: the parse tree
// embedded in attribute values and content nodes (literals, constructors,
// string concatenation, variable/element access, getter/setter calls), and
// its evaluator.
//
// vcm never parses HVML source itself (the tokenizer is an external
// collaborator per spec §1) — it consumes an already-built Node tree and
// produces a *variant.Value.
package vcm

import "github.com/purc-run/hvml/variant"

// NodeKind discriminates a VCM tree node, per spec §3.4.
type NodeKind int

const (
	KLiteral NodeKind = iota
	KObjectCtor
	KArrayCtor
	KConcatString
	KGetVariable
	KGetElement
	KCallGetter
	KCallSetter
)

// Node is one VCM parse-tree node. Literal carries a pre-built *variant.Value
// (the literal's already-evaluated form, since the tokenizer is responsible
// for recognizing literal syntax); every other kind carries Children to
// evaluate in order.
type Node struct {
	Kind     NodeKind
	Literal  *variant.Value
	Children []*Node

	// Line/Column aid error attribution (spec §3.5's "stack frame for
	// error attribution").
	Line, Column int
}

func NewLiteral(v *variant.Value) *Node {
	return &Node{Kind: KLiteral, Literal: v}
}

func NewObjectCtor(children ...*Node) *Node {
	return &Node{Kind: KObjectCtor, Children: children}
}

func NewArrayCtor(children ...*Node) *Node {
	return &Node{Kind: KArrayCtor, Children: children}
}

func NewConcatString(children ...*Node) *Node {
	return &Node{Kind: KConcatString, Children: children}
}

// NewGetVariable's sole child is a literal string naming the variable.
func NewGetVariable(name string) *Node {
	return &Node{Kind: KGetVariable, Children: []*Node{NewLiteral(variant.MustString(name))}}
}

// NewGetElement's children are [parent, key].
func NewGetElement(parent, key *Node) *Node {
	return &Node{Kind: KGetElement, Children: []*Node{parent, key}}
}

// NewCallGetter's children are [subject, params...].
func NewCallGetter(subject *Node, params ...*Node) *Node {
	return &Node{Kind: KCallGetter, Children: append([]*Node{subject}, params...)}
}

// NewCallSetter's children are [subject, params...].
func NewCallSetter(subject *Node, params ...*Node) *Node {
	return &Node{Kind: KCallSetter, Children: append([]*Node{subject}, params...)}
}
