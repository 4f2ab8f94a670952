// Package engine provides the high-level, embedded interface for a
// road-network graph store.
//
// It ties the in-memory graph (core) to the on-disk flat-file format
// (persistence) behind an Open/Save/Close lifecycle, so applications can
// treat the graph as a durable local database without touching the wire
// format directly.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data")
//	eng, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/sanonone/roadgraph/pkg/core"
	"github.com/sanonone/roadgraph/pkg/core/hugearray"
	"github.com/sanonone/roadgraph/pkg/core/profile"
	"github.com/sanonone/roadgraph/pkg/core/tags"
	"github.com/sanonone/roadgraph/pkg/persistence"
	"github.com/sanonone/roadgraph/pkg/storage/mmap"
)

// Options configures the engine: where the graph file lives and how it
// is serialized and loaded.
type Options struct {
	// DataDir is the directory holding the graph file. Created
	// automatically if it does not exist.
	DataDir string

	// Filename is the name of the graph file inside DataDir
	// (default: "roadgraph.rgf").
	Filename string

	// BlockSize is the vertex batch size used when writing; zero keeps
	// the format default.
	BlockSize int

	// Registry resolves stored profile names at load time. Nil accepts
	// every stored name verbatim.
	Registry *profile.Registry

	// SkipUnknownProfiles tolerates unresolvable profile names on load
	// instead of failing. See persistence.Reader.
	SkipUnknownProfiles bool

	// SaveOnClose serializes the graph one final time during Close.
	SaveOnClose bool

	// MapArrays backs the vertex and edge arrays with memory-mapped
	// record arenas under DataDir instead of heap slices, for graphs
	// that exceed comfortable in-memory sizes. The arenas are a spill
	// area rebuilt on every Open; the flat graph file stays the single
	// source of truth.
	MapArrays bool
}

// DefaultOptions returns a standard configuration: graph file
// "roadgraph.rgf" in dataDir, default block size, save on close.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:     dataDir,
		Filename:    "roadgraph.rgf",
		SaveOnClose: true,
	}
}

// Engine is the main entry point: a graph plus its durable file.
//
// Use Open to initialize and Close to shut down. The engine itself adds
// no locking; like the underlying graph it is single-threaded.
type Engine struct {
	graph *core.Graph

	opts   Options
	path   string
	arenas []*mmap.Arena

	closeOnce sync.Once
}

// Open initializes an engine from the given options. It creates DataDir
// if missing and, when a graph file exists, loads it fully into memory
// before returning.
func Open(opts Options) (*Engine, error) {
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if opts.Filename == "" {
		opts.Filename = "roadgraph.rgf"
	}

	e := &Engine{
		opts: opts,
		path: filepath.Join(opts.DataDir, opts.Filename),
	}

	if opts.MapArrays {
		g, err := e.openMappedGraph()
		if err != nil {
			return nil, err
		}
		e.graph = g
	} else {
		e.graph = core.NewGraph(tags.NewIndex())
	}

	if _, err := os.Stat(e.path); err == nil {
		f, err := os.Open(e.path)
		if err != nil {
			e.closeArenas()
			return nil, fmt.Errorf("failed to open graph file: %w", err)
		}
		defer f.Close()

		r := persistence.NewReader(opts.Registry)
		r.SkipUnknownProfiles = opts.SkipUnknownProfiles
		if err := r.Read(f, e.graph); err != nil {
			e.closeArenas()
			return nil, fmt.Errorf("failed to load graph file: %w", err)
		}
		slog.Info("graph loaded",
			"path", e.path,
			"vertices", e.graph.VertexCount(),
			"edges", e.graph.EdgeCount(),
			"tag_collections", e.graph.Tags().Max(),
		)
	}

	return e, nil
}

// openMappedGraph builds a graph over memory-mapped array backings. The
// arena directory is recreated from scratch: its content is a spill of
// whatever the engine loads next, never authoritative state.
func (e *Engine) openMappedGraph() (*core.Graph, error) {
	arenaDir := filepath.Join(e.opts.DataDir, "arena")
	if err := os.RemoveAll(arenaDir); err != nil {
		return nil, fmt.Errorf("failed to reset arena dir: %w", err)
	}

	vertexArena, err := mmap.NewArena(filepath.Join(arenaDir, "vertices"), core.VertexWordCount)
	if err != nil {
		return nil, fmt.Errorf("failed to open vertex arena: %w", err)
	}
	edgeArena, err := mmap.NewArena(filepath.Join(arenaDir, "edges"), core.EdgeWordCount)
	if err != nil {
		_ = vertexArena.Close()
		return nil, fmt.Errorf("failed to open edge arena: %w", err)
	}
	e.arenas = []*mmap.Arena{vertexArena, edgeArena}

	vertices, err := hugearray.NewMapped[core.Vertex](vertexArena, core.VertexMapper{})
	if err != nil {
		e.closeArenas()
		return nil, err
	}
	edges, err := hugearray.NewMapped[core.Edge](edgeArena, core.EdgeMapper{})
	if err != nil {
		e.closeArenas()
		return nil, err
	}
	return core.NewGraphWithArrays(vertices, edges, tags.NewIndex()), nil
}

func (e *Engine) closeArenas() {
	for _, a := range e.arenas {
		_ = a.Close()
	}
	e.arenas = nil
}

// Graph returns the in-memory graph. Mutations are not persisted until
// Save (or Close with SaveOnClose set).
func (e *Engine) Graph() *core.Graph {
	return e.graph
}

// Tags returns the tag collection index referenced by the graph.
func (e *Engine) Tags() *tags.Index {
	return e.graph.Tags()
}

// Save serializes the graph atomically: it writes a uniquely named temp
// file in DataDir, syncs it, and renames it over the graph file, so a
// crash mid-save never leaves a half-written graph behind.
func (e *Engine) Save() error {
	tmp := e.path + "." + uuid.NewString() + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp graph file: %w", err)
	}

	w := persistence.NewWriter()
	if e.opts.BlockSize > 0 {
		w.BlockSize = e.opts.BlockSize
	}
	if err := w.Write(f, e.graph); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to serialize graph: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync graph file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, e.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace graph file: %w", err)
	}

	slog.Info("graph saved",
		"path", e.path,
		"vertices", e.graph.VertexCount(),
		"edges", e.graph.EdgeCount(),
	)
	return nil
}

// Close shuts the engine down. With SaveOnClose set it performs a final
// Save; repeated calls are no-ops.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.opts.SaveOnClose {
			err = e.Save()
		}
		e.closeArenas()
	})
	return err
}
