package document_test

import (
	"testing"

	"github.com/purc-run/hvml/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperateElementAppendAndAttribute(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()

	body, err := doc.OperateElement(root, document.OpAppend, "body", false)
	require.NoError(t, err)

	div, err := doc.OperateElement(body, document.OpAppend, "div", false)
	require.NoError(t, err)

	require.NoError(t, doc.SetAttribute(div, document.OpUpdate, "id", "x"))
	require.NoError(t, doc.SetAttribute(div, document.OpUpdate, "class", "hi"))

	assert.Equal(t, div, doc.GetElementByID("x"))
	assert.Equal(t, "hi", div.Attr("class"))
}

func TestUpdateDisplaceAttributeIsIdempotent(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()
	elem, err := doc.OperateElement(root, document.OpAppend, "div", false)
	require.NoError(t, err)
	require.NoError(t, doc.SetAttribute(elem, document.OpUpdate, "id", "x"))

	require.NoError(t, doc.SetAttribute(elem, document.OpUpdate, "class", "hi"))
	require.NoError(t, doc.SetAttribute(elem, document.OpUpdate, "class", "hi"))

	assert.Equal(t, "hi", elem.Attr("class"))
}

func TestClearLeavesZeroChildren(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()
	elem, err := doc.OperateElement(root, document.OpAppend, "div", false)
	require.NoError(t, err)
	_, err = doc.NewTextContent(elem, document.OpAppend, "hello")
	require.NoError(t, err)
	_, err = doc.OperateElement(elem, document.OpAppend, "span", false)
	require.NoError(t, err)

	elem.Clear()

	e, tx, o := elem.ChildrenCount()
	assert.Equal(t, 0, e)
	assert.Equal(t, 0, tx)
	assert.Equal(t, 0, o)
}

func TestQuerySelectorByID(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()
	elem, err := doc.OperateElement(root, document.OpAppend, "div", false)
	require.NoError(t, err)
	require.NoError(t, doc.SetAttribute(elem, document.OpUpdate, "id", "x"))

	found, err := doc.QuerySelector("#x")
	require.NoError(t, err)
	assert.Equal(t, elem, found)
}

func TestSerializeDeterministic(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()
	elem, err := doc.OperateElement(root, document.OpAppend, "div", false)
	require.NoError(t, err)
	require.NoError(t, doc.SetAttribute(elem, document.OpUpdate, "class", "a"))
	_, err = doc.NewTextContent(elem, document.OpAppend, "hi")
	require.NoError(t, err)

	out1 := doc.Serialize(document.OptSkipWSNodes, nil)
	out2 := doc.Serialize(document.OptSkipWSNodes, nil)
	assert.Equal(t, out1, out2)
	assert.Contains(t, out1, `class="a"`)
}
