package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purc-run/hvml/config"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := config.Load(viper.New(), "", t.TempDir())
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, def.DocKind, cfg.DocKind)
	assert.Equal(t, def.Transport, cfg.Transport)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.False(t, cfg.HotReload)
}

func TestLoadReadsExplicitTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hvml.toml")
	content := "doc_kind = \"xml\"\ntransport = \"websocket\"\nwebsocket_url = \"ws://localhost:9999\"\nhot_reload = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "xml", cfg.DocKind)
	assert.Equal(t, "websocket", cfg.Transport)
	assert.Equal(t, "ws://localhost:9999", cfg.WebSocketURL)
	assert.True(t, cfg.HotReload)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hvml.toml")
	require.NoError(t, os.WriteFile(path, []byte("doc_kind = \"xml\"\n"), 0o644))

	t.Setenv("HVML_DOC_KIND", "plain")

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.DocKind)
}

func TestWatcherReportsFileWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := config.NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	events, err := w.Watch(context.Background(), dir)
	require.NoError(t, err)

	target := filepath.Join(dir, "archetype.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a":1}`), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, target, ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a file change event")
	}
}
