package interpreter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/purc-run/hvml/clock"
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/render"
)

// Fetcher retrieves the bytes behind a `src`/`from` URI (archetype src=,
// update from=). The default implementation only understands file:// and
// plain paths rooted at Config.Root; callers wire in http(s) or other
// schemes by supplying their own.
type Fetcher func(ctx context.Context, uri string) ([]byte, error)

// Config mirrors the teacher's interpreter.Config{Clock, Logger, Root}
// harness shape (see the deleted stdin/env namespaces' tests), generalized
// from SCXML's namespace-loader map to HVML's document kind and renderer
// transport.
type Config struct {
	Clock     clock.Clock
	Logger    *slog.Logger
	Root      *os.Root
	DocKind   document.Kind
	Fetcher   Fetcher
	Transport render.Transport
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = clock.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Fetcher == nil {
		c.Fetcher = defaultFetcher(c.Root)
	}
	return c
}

// defaultFetcher reads file:// and bare-path URIs relative to root (or the
// working directory when root is nil).
func defaultFetcher(root *os.Root) Fetcher {
	return func(ctx context.Context, uri string) ([]byte, error) {
		path := uri
		const filePrefix = "file://"
		if len(uri) >= len(filePrefix) && uri[:len(filePrefix)] == filePrefix {
			path = uri[len(filePrefix):]
		}
		if root != nil {
			f, err := root.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return readAll(f)
		}
		return os.ReadFile(path)
	}
}

func readAll(f *os.File) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return buf, err
		}
	}
	return buf, nil
}
