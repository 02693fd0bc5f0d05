// Package planner wires configuration, filesystem and registry into a
// single chunk-planning run. It is the shared entry point for the CLI and
// the MCP server.
package planner

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/docfold/docfold/api"
	"github.com/docfold/docfold/internal/chunk"
	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/dita"
	"github.com/docfold/docfold/internal/job"
)

// Request describes one planning run.
type Request struct {
	// MapPath is the path of the map document to process.
	MapPath string
	// Config supplies the run options; nil means defaults.
	Config *config.Config
	// Logger receives per-node diagnostics; nil means slog.Default().
	Logger *slog.Logger
	// FS overrides the backing filesystem (tests use memfs). nil means
	// the host filesystem.
	FS billy.Filesystem
}

// Outcome carries everything one run produced.
type Outcome struct {
	// MapURI is the absolute URI of the processed map.
	MapURI *url.URL
	// Result is the raw engine outcome, including the rewritten tree.
	Result *chunk.Result
	// Plan is the serialized projection of Result.
	Plan api.Plan
}

// Run executes the pass. Setup failures (unreadable map, unknown naming
// scheme, unreachable registry) are fatal; per-node failures inside the
// traversal are logged and contained.
func (r Request) Run() (*Outcome, error) {
	cfg := r.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fs := r.FS
	if fs == nil {
		fs = osfs.New("/")
	}

	mapPath := r.MapPath
	if !filepath.IsAbs(mapPath) {
		abs, err := filepath.Abs(mapPath)
		if err != nil {
			return nil, fmt.Errorf("resolve map path: %w", err)
		}
		mapPath = abs
	}
	mapURI := dita.FileURI(filepath.ToSlash(mapPath))
	mapDir := dita.Resolve(mapURI, dita.ParseURI("."))

	data, err := util.ReadFile(fs, mapURI.Path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", mapPath, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", mapPath, err)
	}

	scheme, err := job.NewScheme(cfg.NameScheme, mapDir)
	if err != nil {
		return nil, err
	}

	var store job.Store
	if cfg.JobDB != "" {
		sqlStore, err := job.OpenSQLiteStore(cfg.JobDB)
		if err != nil {
			return nil, fmt.Errorf("open job registry: %w", err)
		}
		store = sqlStore
	} else {
		store = job.NewMemoryStore()
	}
	defer func() { _ = store.Close() }()

	var tempDir *url.URL
	if cfg.TempDir != "" {
		absTemp, err := filepath.Abs(cfg.TempDir)
		if err != nil {
			return nil, fmt.Errorf("resolve temp dir: %w", err)
		}
		tempDir = dita.FileURI(filepath.ToSlash(absTemp) + "/")
	}

	filter := chunk.NewMapFilter(chunk.Options{
		FS:                fs,
		Store:             store,
		Scheme:            scheme,
		TempDir:           tempDir,
		Logger:            logger,
		RootChunkOverride: dita.SplitTokens(cfg.RootChunk),
		Navigation:        cfg.Navigation,
	})

	result, err := filter.Process(doc, mapURI)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		MapURI: mapURI,
		Result: result,
		Plan:   result.Plan(mapURI),
	}, nil
}
