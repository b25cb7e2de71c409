package interpreter

import (
	"context"

	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vdom"
)

// archetypeVerb implements `archetype name=<id> (with=<expr>|src=<uri>)`
// (spec §8 scenario 2): it binds name into the enclosing document scope,
// either to an evaluated `with` expression or to the parsed JSON contents
// fetched from `src`. A fetch failure surfaces as `no-data`, matching the
// scenario's "failure (HTTP 404) results in a no-data error".
type archetypeVerb struct{}

func newArchetypeVerb() Verb { return &archetypeVerb{} }

func init() { Register("archetype", newArchetypeVerb) }

func (a *archetypeVerb) AfterPushed(ctx context.Context, co *Coroutine, f *Frame) error {
	attrs, err := evalAttrs(f)
	if err != nil {
		return err
	}
	f.AttrVars = attrs
	f.DocTarget = parentTarget(co, f)

	nameVal := attrs.ObjectGet("name")
	if nameVal == nil {
		return herr.New(herr.KindArgumentMissed, "archetype requires a name attribute")
	}
	name := variant.Stringify(nameVal)

	withVal := attrs.ObjectGet("with")
	srcVal := attrs.ObjectGet("src")
	if withVal == nil && srcVal == nil {
		return herr.New(herr.KindArgumentMissed, "archetype requires with or src")
	}
	if withVal != nil && srcVal != nil {
		return herr.New(herr.KindInvalidValue, "archetype accepts only one of with/src")
	}

	var bound *variant.Value
	if withVal != nil {
		withVal.Ref()
		bound = withVal
	} else {
		uri := variant.Stringify(srcVal)
		body, err := co.Cfg.Fetcher(ctx, uri)
		if err != nil {
			return herr.Wrap(herr.KindNoData, "fetching archetype source", err)
		}
		parsed, err := variant.ParseJSON(string(body))
		if err != nil {
			return herr.Wrap(herr.KindBadMessage, "parsing archetype source", err)
		}
		bound = parsed
	}
	defer bound.Unref()

	co.DocumentVars.Bind(name, bound)
	f.ResultVar = bound
	return nil
}

func (a *archetypeVerb) SelectChild(ctx context.Context, co *Coroutine, f *Frame) (*vdom.Node, error) {
	return nil, nil
}

func (a *archetypeVerb) OnPopping(ctx context.Context, co *Coroutine, f *Frame) (bool, error) {
	return true, nil
}

func (a *archetypeVerb) Rerun(ctx context.Context, co *Coroutine, f *Frame) error { return nil }
