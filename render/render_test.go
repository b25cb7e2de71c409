package render_test

import (
	"context"
	"strings"
	"testing"

	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/render"
	"github.com/purc-run/hvml/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSplitsAtUTF8Boundary(t *testing.T) {
	s := strings.Repeat("a", render.StreamChunkSize+10)
	chunks := render.Chunk(s)
	require.Len(t, chunks, 2)
	assert.Equal(t, render.StreamChunkSize, len(chunks[0]))
	assert.Equal(t, 10, len(chunks[1]))
}

func TestChunkSingleChunkUnderLimit(t *testing.T) {
	chunks := render.Chunk("hello")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestMoveBufferAppendMirrorsIntoDocument(t *testing.T) {
	doc := document.New(document.KindHTML)
	root := doc.RootElement()
	require.NoError(t, doc.SetAttribute(root, document.OpUpdate, "id", "main"))

	mb := render.NewMoveBuffer(doc)
	client := render.NewClient(mb, "1.0")

	_, err := client.Do(context.Background(), &render.Request{
		Target: render.TargetDOM, Operation: render.OpAppend,
		ElementType: render.ElementID, Element: "main", DataType: render.DataHTML,
		Data: mustString("<p>hi</p>"),
	})
	require.NoError(t, err)

	found := doc.GetElementByID("main")
	require.NotNil(t, found)
	assert.Equal(t, 1, len(found.Children()))
}

func mustString(s string) *variant.Value { return variant.MustString(s) }
