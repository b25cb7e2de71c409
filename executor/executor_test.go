package executor_test

import (
	"testing"

	"github.com/purc-run/hvml/executor"
	"github.com/purc-run/hvml/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleSplitsNameAndBody(t *testing.T) {
	name, body := executor.ParseRule("RANGE: 0, 3")
	assert.Equal(t, "RANGE", name)
	assert.Equal(t, "0, 3", body)

	name, body = executor.ParseRule("RANGE")
	assert.Equal(t, "RANGE", name)
	assert.Equal(t, "", body)
}

func TestRangeIteratorWalksInclusiveStartExclusiveEnd(t *testing.T) {
	arr := variant.NewArray(variant.NewLongInt(10), variant.NewLongInt(20), variant.NewLongInt(30), variant.NewLongInt(40))
	defer arr.Unref()

	it, err := executor.Create(arr, "RANGE: 1, 3", false)
	require.NoError(t, err)
	defer it.Destroy()

	ok, err := it.Begin()
	require.NoError(t, err)
	require.True(t, ok)

	var got []int64
	for {
		got = append(got, it.Value().Int64())
		ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.Equal(t, []int64{20, 30}, got)
}

func TestMulIteratorAndsCriteria(t *testing.T) {
	a, _ := variant.NewObjectFromPairs("kind", variant.MustString("cat"), "color", variant.MustString("black"))
	b, _ := variant.NewObjectFromPairs("kind", variant.MustString("cat"), "color", variant.MustString("white"))
	c, _ := variant.NewObjectFromPairs("kind", variant.MustString("dog"), "color", variant.MustString("black"))
	arr := variant.NewArray(a, b, c)
	defer arr.Unref()
	a.Unref()
	b.Unref()
	c.Unref()

	it, err := executor.Create(arr, "MUL: kind=cat; color=black", false)
	require.NoError(t, err)
	defer it.Destroy()

	ok, err := it.Begin()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "black", variant.Stringify(it.Value().ObjectGet("color")))

	ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownExecutorNameErrors(t *testing.T) {
	arr := variant.NewArray()
	defer arr.Unref()
	_, err := executor.Create(arr, "NOPE: x", false)
	require.Error(t, err)
}
