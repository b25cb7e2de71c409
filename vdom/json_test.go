package vdom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

func TestLoadJSONBuildsElementTreeWithLiteralAttrsAndContent(t *testing.T) {
	src := `{"tag":"body","attrs":{"id":"main"},"children":[
		{"content":"hello"},
		{"tag":"div","attrs":{"class":"x"}}
	]}`

	n, err := vdom.LoadJSON(src)
	require.NoError(t, err)

	assert.Equal(t, vdom.NodeElement, n.Kind)
	assert.Equal(t, "body", n.Tag)
	require.Len(t, n.Attrs, 1)
	assert.Equal(t, "id", n.Attrs[0].Name)

	idVal, err := vcm.Eval(&vcm.Context{}, n.Attrs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "main", idVal.Str())

	require.Len(t, n.Children, 2)
	assert.Equal(t, vdom.NodeContent, n.Children[0].Kind)
	assert.Equal(t, "div", n.Children[1].Tag)
}

func TestLoadJSONRejectsMissingTag(t *testing.T) {
	_, err := vdom.LoadJSON(`{"attrs":{}}`)
	assert.Error(t, err)
}
