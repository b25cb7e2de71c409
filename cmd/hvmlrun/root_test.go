package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	hconfig "github.com/purc-run/hvml/config"
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/render"
)

func configWith(transport, wsURL string) hconfig.Config {
	cfg := hconfig.Default()
	cfg.Transport = transport
	cfg.WebSocketURL = wsURL
	return cfg
}

func TestDocKindForMapsNamesCaseInsensitively(t *testing.T) {
	assert.Equal(t, document.KindXML, docKindFor("XML"))
	assert.Equal(t, document.KindPlain, docKindFor("plain"))
	assert.Equal(t, document.KindVoid, docKindFor("void"))
	assert.Equal(t, document.KindHTML, docKindFor(""))
	assert.Equal(t, document.KindHTML, docKindFor("unknown"))
}

func TestTransportForDefaultsToMoveBuffer(t *testing.T) {
	doc := document.New(document.KindHTML)
	tr, err := transportFor(configWith("movebuffer", ""), doc)
	assert.NoError(t, err)
	_, ok := tr.(*render.MoveBuffer)
	assert.True(t, ok)
}

func TestTransportForWebSocketRequiresURL(t *testing.T) {
	doc := document.New(document.KindHTML)
	_, err := transportFor(configWith("websocket", ""), doc)
	assert.Error(t, err)
}
