// Package config loads hvmlrun's settings the way the pack's cobra/viper
// CLIs do: built-in defaults, an optional file (TOML, YAML or JSON, parsed
// according to its extension), HVML_*-prefixed environment overrides, then
// whatever cobra flags the caller bound on top.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is hvmlrun's full runtime configuration.
type Config struct {
	// DocKind selects the target document kind: "html", "xml", "xgml",
	// "plain", or "void".
	DocKind string `mapstructure:"doc_kind"`

	// Transport selects the renderer transport: "movebuffer" (in-process,
	// the default) or "websocket".
	Transport string `mapstructure:"transport"`
	// WebSocketURL is the remote renderer endpoint when Transport is
	// "websocket".
	WebSocketURL string `mapstructure:"websocket_url"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`

	// RootDir constrains the Fetcher's file:// and bare-path resolution
	// (os.Root-backed); empty means the working directory.
	RootDir string `mapstructure:"root_dir"`

	// HotReload is decoded from hot_reload, but nothing in hvmlrun reads
	// it: setting it neither watches RootDir nor re-fires observers.
	HotReload bool `mapstructure:"hot_reload"`
}

// Default returns the configuration hvmlrun falls back to absent any file,
// environment variable, or flag override.
func Default() Config {
	return Config{
		DocKind:   "html",
		Transport: "movebuffer",
		LogLevel:  "info",
		HotReload: false,
	}
}

// Load builds a Config from built-in defaults, an optional config file
// (searched as hvml.{toml,yaml,json} in the given search paths when
// explicitPath is empty), HVML_* environment variables, and finally v's own
// bound values — which is how a cobra command's PersistentFlags reach here
// once BindPFlag has wired them into v.
func Load(v *viper.Viper, explicitPath string, searchPaths ...string) (Config, error) {
	def := Default()
	v.SetDefault("doc_kind", def.DocKind)
	v.SetDefault("transport", def.Transport)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("hot_reload", def.HotReload)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("hvml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("HVML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
