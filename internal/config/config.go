// Package config loads the optional YAML tunables file described in
// SPEC_FULL.md §A.3, following the same load-with-fallback style as the
// teacher's internal/config.LoadLoginServer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kiaracarvalho006-del/pacserver/internal/constants"
)

// Server holds tunables that are not part of the wire-visible contract of
// spec.md §6 and therefore are not CLI arguments.
type Server struct {
	LogLevel      string `yaml:"log_level"`
	QueueCapacity int    `yaml:"queue_capacity"`
	DumpPath      string `yaml:"dump_path"`
	TopN          int    `yaml:"top_n"`
}

// Default returns the zero-config server tunables.
func Default() Server {
	return Server{
		LogLevel:      "info",
		QueueCapacity: constants.MaxPendingClients,
		DumpPath:      constants.DefaultDumpPath,
		TopN:          constants.DefaultTopN,
	}
}

// Load reads path if it exists and overlays any set fields onto the
// defaults. A missing file is not an error — config is an enrichment, so a
// bare `<level_dir> <max_games> <register_path>` invocation always works
// (SPEC_FULL.md §A.3).
func Load(path string) (Server, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Server{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var overlay Server
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Server{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
	}
	if overlay.QueueCapacity > 0 {
		cfg.QueueCapacity = overlay.QueueCapacity
	}
	if overlay.DumpPath != "" {
		cfg.DumpPath = overlay.DumpPath
	}
	if overlay.TopN > 0 {
		cfg.TopN = overlay.TopN
	}
	return cfg, nil
}
