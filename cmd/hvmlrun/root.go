package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	hconfig "github.com/purc-run/hvml/config"
	"github.com/purc-run/hvml/document"
	"github.com/purc-run/hvml/interpreter"
	"github.com/purc-run/hvml/render"
	"github.com/purc-run/hvml/vdom"
)

var (
	cfgFile   string
	docKind   string
	transport string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "hvmlrun <program.json>",
	Short: "Run an HVML program tree to completion",
	Long: `hvmlrun drives one interpreter coroutine over an already-tokenized
VDOM program tree (see vdom.LoadJSON) and prints the resulting document.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (env: HVML_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&docKind, "doc-kind", "", "target document kind: html, xml, xgml, plain, void")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "", "renderer transport: movebuffer, websocket")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error")
}

// Execute runs the root command; main's sole entry point into this package.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	v := viper.New()
	bindFlagOverrides(v)

	path := cfgFile
	if path == "" {
		path = os.Getenv("HVML_CONFIG")
	}
	cfg, err := hconfig.Load(v, path, ".", os.Getenv("HOME"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var fsRoot *os.Root
	if cfg.RootDir != "" {
		fsRoot, err = os.OpenRoot(cfg.RootDir)
		if err != nil {
			return fmt.Errorf("opening root dir: %w", err)
		}
		defer fsRoot.Close()
	}

	logger := newLogger(cfg.LogLevel)

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading program file: %w", err)
	}
	root, err := vdom.LoadJSON(string(src))
	if err != nil {
		return fmt.Errorf("parsing program tree: %w", err)
	}

	kind := docKindFor(cfg.DocKind)
	doc := document.New(kind)

	tr, err := transportFor(cfg, doc)
	if err != nil {
		return err
	}
	defer tr.Close()

	ctx := cmd.Context()
	co := interpreter.New(ctx, doc, root, interpreter.Config{
		Logger:    logger,
		DocKind:   kind,
		Transport: tr,
		Root:      fsRoot,
	})

	if err := co.Start(ctx); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	defer co.Shutdown()

	fmt.Println(doc.Serialize(document.OptSkipComment, nil))
	return nil
}

func bindFlagOverrides(v *viper.Viper) {
	if docKind != "" {
		v.Set("doc_kind", docKind)
	}
	if transport != "" {
		v.Set("transport", transport)
	}
	if logLevel != "" {
		v.Set("log_level", logLevel)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func docKindFor(s string) document.Kind {
	switch strings.ToLower(s) {
	case "xml":
		return document.KindXML
	case "xgml":
		return document.KindXGML
	case "plain":
		return document.KindPlain
	case "void":
		return document.KindVoid
	default:
		return document.KindHTML
	}
}

func transportFor(cfg hconfig.Config, doc *document.Document) (render.Transport, error) {
	switch strings.ToLower(cfg.Transport) {
	case "websocket":
		if cfg.WebSocketURL == "" {
			return nil, fmt.Errorf("transport=websocket requires websocket_url")
		}
		return render.DialWebSocket(cfg.WebSocketURL)
	default:
		return render.NewMoveBuffer(doc), nil
	}
}
