package vdom_test

import (
	"testing"

	"github.com/purc-run/hvml/vdom"
	"github.com/stretchr/testify/assert"
)

func TestClassifyVerbVersusTemplate(t *testing.T) {
	iter := &vdom.Node{Kind: vdom.NodeElement, Tag: "iterate"}
	div := &vdom.Node{Kind: vdom.NodeElement, Tag: "div"}
	errHandler := &vdom.Node{Kind: vdom.NodeElement, Tag: "error"}

	assert.True(t, vdom.IsVerb(iter))
	assert.False(t, vdom.IsVerb(div))
	assert.Equal(t, vdom.ClassTemplate, vdom.Classify(div))
	assert.Equal(t, vdom.ClassError, vdom.Classify(errHandler))
}

func TestAttrLookup(t *testing.T) {
	n := &vdom.Node{Kind: vdom.NodeElement, Tag: "update", Attrs: []vdom.Attr{{Name: "on"}}}
	assert.True(t, n.HasAttr("on"))
	assert.False(t, n.HasAttr("at"))
}
