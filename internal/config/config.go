// Package config loads docfold's run configuration from an HCL file.
// CLI flags override file values; the zero Config is a valid default.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the recognized configuration surface of a planning run.
type Config struct {
	// RootChunk, when set, is forced onto the map root's @chunk
	// attribute before processing begins (space-separated tokens).
	RootChunk string `hcl:"root_chunk,optional"`
	// Navigation enables to-navigation extraction support.
	Navigation bool `hcl:"navigation,optional"`
	// NameScheme selects the temp-file naming scheme by identifier.
	NameScheme string `hcl:"name_scheme,optional"`
	// JobDB, when set, points at a shared SQLite file registry; empty
	// means an in-memory registry scoped to this run.
	JobDB string `hcl:"job_db,optional"`
	// TempDir is where synthesized stub topics are written. Empty means
	// the map's own directory.
	TempDir string `hcl:"temp_dir,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{NameScheme: "default"}
}

// Load reads an HCL configuration file. A missing file is not an error;
// the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.NameScheme == "" {
		cfg.NameScheme = "default"
	}
	return cfg, nil
}
