package vcm_test

import (
	"testing"

	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalObjectCtorLastWriteWins(t *testing.T) {
	node := vcm.NewObjectCtor(
		vcm.NewLiteral(variant.MustString("a")), vcm.NewLiteral(variant.NewLongInt(1)),
		vcm.NewLiteral(variant.MustString("a")), vcm.NewLiteral(variant.NewLongInt(2)),
	)
	v, err := vcm.Eval(&vcm.Context{}, node)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.ObjectGet("a").Int64())
}

func TestEvalConcatString(t *testing.T) {
	node := vcm.NewConcatString(
		vcm.NewLiteral(variant.MustString("hello ")),
		vcm.NewLiteral(variant.NewLongInt(42)),
	)
	v, err := vcm.Eval(&vcm.Context{}, node)
	require.NoError(t, err)
	assert.Equal(t, "hello 42", v.Str())
}

func TestEvalGetVariableResolvesScopeChain(t *testing.T) {
	outer := vcm.NewScope(nil)
	outer.Bind("x", variant.NewLongInt(1))
	inner := vcm.NewScope(outer)
	inner.Bind("y", variant.NewLongInt(2))

	v, err := vcm.Eval(&vcm.Context{Scope: inner}, vcm.NewGetVariable("x"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int64())
}

func TestEvalGetVariableUndefinedErrorsUnlessSilently(t *testing.T) {
	_, err := vcm.Eval(&vcm.Context{Scope: vcm.NewScope(nil)}, vcm.NewGetVariable("missing"))
	require.Error(t, err)

	v, err := vcm.Eval(&vcm.Context{Scope: vcm.NewScope(nil), Silently: true}, vcm.NewGetVariable("missing"))
	require.NoError(t, err)
	assert.Equal(t, variant.Undefined, v.Kind())
}

func TestEvalGetElementOnObject(t *testing.T) {
	obj := variant.NewObject()
	obj.ObjectSet("name", variant.MustString("purc"))
	scope := vcm.NewScope(nil)
	scope.Bind("doc", obj)

	node := vcm.NewGetElement(vcm.NewGetVariable("doc"), vcm.NewLiteral(variant.MustString("name")))
	v, err := vcm.Eval(&vcm.Context{Scope: scope}, node)
	require.NoError(t, err)
	assert.Equal(t, "purc", v.Str())
}

func TestEvalCallGetter(t *testing.T) {
	dyn := variant.NewDynamic(func(args []*variant.Value) (*variant.Value, error) {
		return variant.NewLongInt(7), nil
	}, nil)
	node := vcm.NewCallGetter(vcm.NewLiteral(dyn))
	v, err := vcm.Eval(&vcm.Context{}, node)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())
}
