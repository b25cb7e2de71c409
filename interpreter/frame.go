package interpreter

import (
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// Stage is a coroutine's lifecycle stage (spec §4.6.3).
type Stage int

const (
	StageFirstRun Stage = iota
	StageObserving
	StageCleanedUp
)

func (s Stage) String() string {
	switch s {
	case StageFirstRun:
		return "first-run"
	case StageObserving:
		return "observing"
	case StageCleanedUp:
		return "cleaned-up"
	default:
		return "unknown"
	}
}

// NextStep is what the driver does with a frame on its next visit (spec
// §3.5: frame's next_step in {select-child, on-popping}).
type NextStep int

const (
	StepAfterPushed NextStep = iota
	StepSelectChild
	StepOnPopping
)

// Frame holds one active VDOM element's execution state (spec §3.5).
type Frame struct {
	Node *vdom.Node

	Ctxt      any // verb-specific state
	AttrVars  *variant.Value
	CntVar    *variant.Value
	ResultVar *variant.Value
	Idx       int

	Silently bool
	NextStep NextStep
	Curr     int // child cursor over Node.Children

	ErrorHandlers  []*vdom.Node
	ExceptHandlers []*vdom.Node

	Scope     *vcm.Scope
	DocTarget *document.Node // current document insertion point for this frame
	Verb      Verb
}

// evalAttrs evaluates every attribute's VCM against f.Scope into an object,
// per spec §4.6.1 "evaluates attributes (each a VCM) into attr_vars".
func evalAttrs(f *Frame) (*variant.Value, error) {
	obj := variant.NewObject()
	for _, a := range f.Node.Attrs {
		v, err := vcm.Eval(&vcm.Context{Scope: f.Scope, Silently: f.Silently}, a.Value)
		if err != nil {
			obj.Unref()
			return nil, err
		}
		obj.ObjectSet(a.Name, v)
		v.Unref()
	}
	return obj, nil
}

// collectHandlers splits out <error>/<except> children, per spec §4.6.7,
// from the ordinary children the verb's select_child walks.
func collectHandlers(n *vdom.Node) (errors, excepts []*vdom.Node) {
	for _, c := range n.Children {
		if c.Kind != vdom.NodeElement {
			continue
		}
		switch vdom.Classify(c) {
		case vdom.ClassError:
			errors = append(errors, c)
		case vdom.ClassExcept:
			excepts = append(excepts, c)
		}
	}
	return
}
