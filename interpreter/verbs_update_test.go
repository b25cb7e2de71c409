package interpreter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purc-run/hvml/clock"
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/interpreter"
	"github.com/purc-run/hvml/render"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

// spyTransport records every request handed to it, standing in for a real
// renderer connection so tests can assert on what update mirrors.
type spyTransport struct {
	mu       sync.Mutex
	requests []*render.Request
}

func (s *spyTransport) Send(_ context.Context, req *render.Request) (*render.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return &render.Response{RetCode: 0}, nil
}

func (s *spyTransport) Close() error { return nil }

func (s *spyTransport) find(op render.Operation, property string) *render.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.Operation == op && r.Property == property {
			return r
		}
	}
	return nil
}

// TestUpdateDisplacesAttributeBySelectorAndEmitsRendererRequest covers
// spec §8 scenario 4 end to end: `on=#x` resolved through the document's
// selector engine, `at="attr.class"`, `to=displace` and a mirrored
// renderer `update` request.
func TestUpdateDisplacesAttributeBySelectorAndEmitsRendererRequest(t *testing.T) {
	root := elem("body", nil,
		elem("div", []vdom.Attr{{Name: "id", Value: vcm.NewLiteral(variant.MustString("x"))}}),
		elem("update", []vdom.Attr{
			{Name: "on", Value: vcm.NewLiteral(variant.MustString("#x"))},
			{Name: "at", Value: vcm.NewLiteral(variant.MustString("attr.class"))},
			{Name: "to", Value: vcm.NewLiteral(variant.MustString("displace"))},
			{Name: "with", Value: vcm.NewLiteral(variant.MustString("hi"))},
		}),
	)

	doc := document.New(document.KindHTML)
	spy := &spyTransport{}
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0)), Transport: spy}
	co := interpreter.New(context.Background(), doc, root, cfg)
	require.NoError(t, co.Start(context.Background()))

	target := doc.GetElementByID("x")
	require.NotNil(t, target)
	assert.Equal(t, "hi", target.Attr("class"))

	req := spy.find(render.OpUpdate, "class")
	require.NotNil(t, req, "expected a renderer update request for the class property")
	assert.Equal(t, render.ElementHandle, req.ElementType)
	assert.Equal(t, document.HandleString(target), req.Element)
	assert.Equal(t, render.DataPlain, req.DataType)
	assert.Equal(t, "hi", req.Data.Str())
}

// TestUpdateTextContentCombinatorAppendsToExistingText exercises the
// textContent document target together with the "+=" with-combinator.
func TestUpdateTextContentCombinatorAppendsToExistingText(t *testing.T) {
	div := elem("div", []vdom.Attr{{Name: "id", Value: vcm.NewLiteral(variant.MustString("x"))}},
		content(vcm.NewLiteral(variant.MustString("hello"))))
	root := elem("body", nil,
		div,
		elem("update", []vdom.Attr{
			{Name: "on", Value: vcm.NewLiteral(variant.MustString("#x"))},
			{Name: "at", Value: vcm.NewLiteral(variant.MustString("textContent"))},
			{Name: "to", Value: vcm.NewLiteral(variant.MustString("displace"))},
			{Name: "with", Value: vcm.NewLiteral(variant.MustString("+= world"))},
		}),
	)

	co, doc := newCoroutine(t, root)
	require.NoError(t, co.Start(context.Background()))

	target := doc.GetElementByID("x")
	require.NotNil(t, target)
	assert.Equal(t, "hello world", target.Children()[0].Text())
}

func TestUpdateObjectMerge(t *testing.T) {
	obj := variant.NewObject()
	defer obj.Unref()
	obj.ObjectSet("a", variant.MustString("1"))

	root := elem("body", nil, elem("update", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("OBJ")},
		{Name: "to", Value: vcm.NewLiteral(variant.MustString("merge"))},
		{Name: "with", Value: vcm.NewObjectCtor(
			vcm.NewLiteral(variant.MustString("b")), vcm.NewLiteral(variant.MustString("2")),
		)},
	}))

	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)
	co.DocumentVars.Bind("OBJ", obj)
	require.NoError(t, co.Start(context.Background()))

	assert.Equal(t, "1", variant.Stringify(obj.ObjectGet("a")))
	assert.Equal(t, "2", variant.Stringify(obj.ObjectGet("b")))
}

func TestUpdateWithCombinatorMultipliesExistingScalarField(t *testing.T) {
	obj := variant.NewObject()
	defer obj.Unref()
	obj.ObjectSet("count", variant.NewNumber(5))

	root := elem("body", nil, elem("update", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("OBJ")},
		{Name: "at", Value: vcm.NewLiteral(variant.MustString(".count"))},
		{Name: "to", Value: vcm.NewLiteral(variant.MustString("displace"))},
		{Name: "with", Value: vcm.NewLiteral(variant.MustString("*=3"))},
	}))

	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)
	co.DocumentVars.Bind("OBJ", obj)
	require.NoError(t, co.Start(context.Background()))

	assert.Equal(t, float64(15), variant.Numberify(obj.ObjectGet("count")))
}

func TestUpdateArrayAppend(t *testing.T) {
	arr := variant.NewArray(variant.NewLongInt(1))
	defer arr.Unref()

	root := elem("body", nil, elem("update", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("ARR")},
		{Name: "to", Value: vcm.NewLiteral(variant.MustString("append"))},
		{Name: "with", Value: vcm.NewLiteral(variant.NewLongInt(2))},
	}))

	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)
	co.DocumentVars.Bind("ARR", arr)
	require.NoError(t, co.Start(context.Background()))

	require.Equal(t, 2, arr.Size())
	assert.Equal(t, int64(2), arr.ArrayGet(1).Int64())
}

func TestUpdateSetUnitesMemberByKey(t *testing.T) {
	set := variant.NewSet(variant.KeyByProperty("id"))
	defer set.Unref()
	existing := variant.NewObject()
	existing.ObjectSet("id", variant.NewLongInt(1))
	existing.ObjectSet("name", variant.MustString("old"))
	require.NoError(t, set.SetInsert(existing, variant.PolicyStrict))
	existing.Unref()

	root := elem("body", nil, elem("update", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("SET")},
		{Name: "to", Value: vcm.NewLiteral(variant.MustString("unite"))},
		{Name: "with", Value: vcm.NewArrayCtor(vcm.NewObjectCtor(
			vcm.NewLiteral(variant.MustString("id")), vcm.NewLiteral(variant.NewLongInt(1)),
			vcm.NewLiteral(variant.MustString("name")), vcm.NewLiteral(variant.MustString("new")),
		))},
	}))

	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)
	co.DocumentVars.Bind("SET", set)
	require.NoError(t, co.Start(context.Background()))

	require.Equal(t, 1, set.Size())
	assert.Equal(t, "new", variant.Stringify(set.SetGetByKey("1").ObjectGet("name")))
}
