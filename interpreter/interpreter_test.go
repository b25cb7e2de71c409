package interpreter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purc-run/hvml/clock"
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/herr"
	"github.com/purc-run/hvml/interpreter"
	"github.com/purc-run/hvml/observer"
	"github.com/purc-run/hvml/variant"
	"github.com/purc-run/hvml/vcm"
	"github.com/purc-run/hvml/vdom"
)

func newCoroutine(t *testing.T, root *vdom.Node) (*interpreter.Coroutine, *document.Document) {
	t.Helper()
	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)
	return co, doc
}

func elem(tag string, attrs []vdom.Attr, children ...*vdom.Node) *vdom.Node {
	return &vdom.Node{Kind: vdom.NodeElement, Tag: tag, Attrs: attrs, Children: children}
}

func content(n *vcm.Node) *vdom.Node {
	return &vdom.Node{Kind: vdom.NodeContent, Content: n}
}

func TestTemplateVerbMaterializesHeadAndBodyAsSpecialElements(t *testing.T) {
	root := elem("hvml", nil,
		elem("head", nil),
		elem("body", nil, elem("div", []vdom.Attr{{Name: "id", Value: vcm.NewLiteral(variant.MustString("x"))}})),
	)
	co, doc := newCoroutine(t, root)
	require.NoError(t, co.Start(context.Background()))

	require.NotNil(t, doc.SpecialElement("head"))
	body := doc.SpecialElement("body")
	require.NotNil(t, body)
	require.Len(t, body.Children(), 1)
	assert.Equal(t, "div", body.Children()[0].TagName())
	assert.NotNil(t, doc.GetElementByID("x"))
}

func TestIterateWalksRangeExecutorBindingItemAndIndex(t *testing.T) {
	arr := vcm.NewArrayCtor(
		vcm.NewLiteral(variant.NewLongInt(10)),
		vcm.NewLiteral(variant.NewLongInt(20)),
		vcm.NewLiteral(variant.NewLongInt(30)),
	)
	iterate := elem("iterate", []vdom.Attr{
		{Name: "on", Value: arr},
		{Name: "by", Value: vcm.NewLiteral(variant.MustString("RANGE:0"))},
	}, content(vcm.NewGetVariable("_")))
	root := elem("body", nil, iterate)

	co, doc := newCoroutine(t, root)
	require.NoError(t, co.Start(context.Background()))

	texts := collectText(doc.RootElement())
	assert.Equal(t, []string{"10", "20", "30"}, texts)
}

func TestChooseExceptHandlerAbsorbsEvaluationError(t *testing.T) {
	except := elem("except", []vdom.Attr{
		{Name: "type", Value: vcm.NewLiteral(variant.MustString("*"))},
	}, content(vcm.NewLiteral(variant.MustString("fallback"))))
	choose := elem("choose", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("undefined_name")},
	}, except)

	co, doc := newCoroutine(t, choose)
	require.NoError(t, co.Start(context.Background()))
	_ = doc
}

func TestArchetypeBindsDocumentScopeVariableFromWith(t *testing.T) {
	root := elem("archetype", []vdom.Attr{
		{Name: "name", Value: vcm.NewLiteral(variant.MustString("T"))},
		{Name: "with", Value: vcm.NewObjectCtor(
			vcm.NewLiteral(variant.MustString("k")),
			vcm.NewLiteral(variant.MustString("v")),
		)},
	})
	co, _ := newCoroutine(t, root)
	require.NoError(t, co.Start(context.Background()))

	bound := co.DocumentVars.Lookup("T")
	require.NotNil(t, bound)
	assert.Equal(t, variant.Object, bound.Kind())
	assert.Equal(t, "v", variant.Stringify(bound.ObjectGet("k")))
}

func TestArchetypeFromSrcFetchFailureRaisesNoData(t *testing.T) {
	root := elem("archetype", []vdom.Attr{
		{Name: "name", Value: vcm.NewLiteral(variant.MustString("T"))},
		{Name: "src", Value: vcm.NewLiteral(variant.MustString("file:///does/not/exist.json"))},
	})
	doc := document.New(document.KindHTML)
	cfg := interpreter.Config{Clock: clock.NewMock(time.Unix(0, 0))}
	co := interpreter.New(context.Background(), doc, root, cfg)

	err := co.Start(context.Background())
	require.Error(t, err)
	kind, ok := herr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, herr.KindNoData, kind)
}

func TestObserveRunsBodyOnFiring(t *testing.T) {
	probe := elem("probe", nil)
	obs := elem("observe", []vdom.Attr{
		{Name: "on", Value: vcm.NewGetVariable("SRC")},
		{Name: "for", Value: vcm.NewLiteral(variant.MustString("ping"))},
	}, probe)
	root := elem("body", nil, obs)

	co, doc := newCoroutine(t, root)

	source := variant.NewObject()
	defer source.Unref()
	co.DocumentVars.Bind("SRC", source)

	require.NoError(t, co.Start(context.Background()))
	require.Equal(t, interpreter.StageObserving, co.Stage())

	co.Observers.Fire(source, "ping", "*", nil)

	assert.True(t, hasDescendantTag(doc.RootElement(), "probe"),
		"expected observe's body to materialize its probe element on firing")
}

func hasDescendantTag(n *document.Node, tag string) bool {
	for _, c := range n.Children() {
		if c.TagName() == tag || hasDescendantTag(c, tag) {
			return true
		}
	}
	return false
}

func TestObserverBusWildcardSubNameIntegration(t *testing.T) {
	bus := observer.New()
	source := variant.NewObject()
	defer source.Unref()

	fired := 0
	bus.Register(source, "expired", "*", func(ev observer.Event) { fired++ })
	bus.Fire(source, "expired", "clock", nil)
	assert.Equal(t, 1, fired)
}

func collectText(n *document.Node) []string {
	var out []string
	for _, c := range n.Children() {
		if c.Kind() == document.NodeText {
			out = append(out, c.Text())
		}
		out = append(out, collectText(c)...)
	}
	return out
}
