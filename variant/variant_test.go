package variant_test

import (
	"testing"

	"github.com/purc-run/hvml/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectInsertionOrderPreservedAcrossMerge(t *testing.T) {
	o := variant.NewObject()
	o.ObjectSet("b", variant.NewLongInt(2))
	o.ObjectSet("a", variant.NewLongInt(1))

	other := variant.NewObject()
	other.ObjectSet("c", variant.NewLongInt(3))
	other.ObjectSet("a", variant.NewLongInt(99))

	require.NoError(t, o.MergeAnother(other))

	assert.Equal(t, []string{"b", "a", "c"}, o.ObjectKeys())
	assert.Equal(t, int64(99), o.ObjectGet("a").Int64())
}

func TestArrayInsertBeforeOutOfRangeAppends(t *testing.T) {
	arr := variant.NewArray(variant.NewLongInt(1), variant.NewLongInt(2))
	arr.ArrayInsertBefore(99, variant.NewLongInt(3))
	require.Equal(t, 3, arr.Size())
	assert.Equal(t, int64(3), arr.ArrayGet(2).Int64())
}

func TestSetDisplaceFiresSingleChange(t *testing.T) {
	s := variant.NewSet(variant.KeyByProperty("id"))
	mkMember := func(id int64) *variant.Value {
		o := variant.NewObject()
		o.ObjectSet("id", variant.NewLongInt(id))
		return o
	}
	require.NoError(t, s.SetInsert(mkMember(1), variant.PolicyStrict))

	var fired int
	s.RegisterListener(variant.OpChange, func(container *variant.Value, op variant.Op, member *variant.Value, ctxt any) bool {
		fired++
		return true
	}, nil)

	replacement := variant.NewArray(mkMember(2), mkMember(3), mkMember(4))
	require.NoError(t, s.SetDisplace(replacement))

	assert.Equal(t, 1, fired)
	assert.Equal(t, 3, s.Size())
}

func TestSetRejectsDuplicateUnderStrictPolicy(t *testing.T) {
	s := variant.NewSet(variant.KeyByProperty("id"))
	o := variant.NewObject()
	o.ObjectSet("id", variant.NewLongInt(1))

	require.NoError(t, s.SetInsert(o, variant.PolicyStrict))
	err := s.SetInsert(o, variant.PolicyStrict)
	require.Error(t, err)
}

func TestListenerReturningFalseStopsFurtherListenersNotMutation(t *testing.T) {
	obj := variant.NewObject()
	var calls []int
	obj.RegisterListener(variant.OpGrow, func(_ *variant.Value, _ variant.Op, _ *variant.Value, ctxt any) bool {
		calls = append(calls, ctxt.(int))
		return false
	}, 1)
	obj.RegisterListener(variant.OpGrow, func(_ *variant.Value, _ variant.Op, _ *variant.Value, ctxt any) bool {
		calls = append(calls, ctxt.(int))
		return true
	}, 2)

	obj.ObjectSet("k", variant.NewLongInt(1))

	assert.Equal(t, []int{1}, calls)
	assert.Equal(t, int64(1), obj.ObjectGet("k").Int64())
}

func TestReentrantListenerMutatingOwnContainerIsSafe(t *testing.T) {
	obj := variant.NewObject()
	obj.ObjectSet("count", variant.NewLongInt(0))

	obj.RegisterListener(variant.OpChange, func(container *variant.Value, _ variant.Op, _ *variant.Value, _ any) bool {
		if container.ObjectGet("count").Int64() < 3 {
			container.ObjectSet("count", variant.NewLongInt(container.ObjectGet("count").Int64()+1))
		}
		return true
	}, nil)

	obj.ObjectSet("count", variant.NewLongInt(1))
	assert.Equal(t, int64(3), obj.ObjectGet("count").Int64())
}

func TestNumberifyBestEffort(t *testing.T) {
	s := variant.MustString("  12.5x")
	assert.Equal(t, float64(0), variant.Numberify(s))

	s2 := variant.MustString("42")
	assert.Equal(t, float64(42), variant.Numberify(s2))

	assert.Equal(t, float64(1), variant.Numberify(variant.NewBoolean(true)))
}

func TestJSONRoundTrip(t *testing.T) {
	v, err := variant.ParseJSON(`{"id":"clock","interval":1000,"active":"yes"}`)
	require.NoError(t, err)

	out, err := variant.MarshalJSON(v)
	require.NoError(t, err)

	v2, err := variant.ParseJSON(out)
	require.NoError(t, err)
	assert.True(t, variant.Equal(v, v2))
}

func TestRefcountReachesZeroAfterTeardown(t *testing.T) {
	child := variant.NewLongInt(7)
	parent := variant.NewArray(child)
	require.Equal(t, int32(2), child.RefCount())

	parent.Unref()
	assert.Equal(t, int32(1), child.RefCount())
	child.Unref()
	assert.Equal(t, int32(0), child.RefCount())
}
