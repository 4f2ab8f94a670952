package core

import (
	"gonum.org/v1/gonum/floats"

	"github.com/sanonone/roadgraph/pkg/core/hugearray"
	"github.com/sanonone/roadgraph/pkg/core/profile"
	"github.com/sanonone/roadgraph/pkg/core/tags"
)

// Graph is a routable road network: an append-only vertex array, an
// append-only edge array, a reference to the tag collection index the
// edges point into, and the set of vehicle profiles the graph supports.
//
// Vertex ids are dense, zero-based and assigned by insertion order; they
// are never reused or reordered. The graph references the tag index, it
// does not own it.
//
// Access is single-threaded by design; callers needing concurrent reads
// must synchronize externally.
type Graph struct {
	vertices hugearray.Array[Vertex]
	edges    hugearray.Array[Edge]
	tagIndex *tags.Index

	profiles   []profile.Profile
	profileSet map[string]struct{}
}

// NewGraph returns an empty graph with in-memory slice backings. A nil
// tagIndex gets a fresh empty index.
func NewGraph(tagIndex *tags.Index) *Graph {
	return NewGraphWithArrays(
		hugearray.NewSlice[Vertex](),
		hugearray.NewSlice[Edge](),
		tagIndex,
	)
}

// NewGraphWithArrays returns an empty graph over caller-provided array
// backings, e.g. paged arrays for graphs that exceed comfortable
// single-allocation sizes.
func NewGraphWithArrays(vertices hugearray.Array[Vertex], edges hugearray.Array[Edge], tagIndex *tags.Index) *Graph {
	if tagIndex == nil {
		tagIndex = tags.NewIndex()
	}
	return &Graph{
		vertices:   vertices,
		edges:      edges,
		tagIndex:   tagIndex,
		profileSet: make(map[string]struct{}),
	}
}

// AddVertex appends a vertex and returns its id.
func (g *Graph) AddVertex(lat, lon float32) uint64 {
	return g.vertices.Append(Vertex{Lat: lat, Lon: lon})
}

// Vertex returns the vertex stored under id, or false if id is beyond the
// current vertex count.
func (g *Graph) Vertex(id uint64) (Vertex, bool) {
	if id >= g.vertices.Len() {
		return Vertex{}, false
	}
	return g.vertices.Get(id), true
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() uint64 {
	return g.vertices.Len()
}

// AddEdge appends an edge and returns its index.
func (g *Graph) AddEdge(e Edge) uint64 {
	return g.edges.Append(e)
}

// Edge returns the edge at index i. Panics if i is out of range.
func (g *Graph) Edge(i uint64) Edge {
	return g.edges.Get(i)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() uint64 {
	return g.edges.Len()
}

// Tags returns the tag collection index the graph's edges reference.
func (g *Graph) Tags() *tags.Index {
	return g.tagIndex
}

// AddSupportedProfile records p as supported by this graph. Adding the
// same profile name twice is a no-op; insertion order is preserved.
func (g *Graph) AddSupportedProfile(p profile.Profile) {
	if _, ok := g.profileSet[p.Name]; ok {
		return
	}
	g.profileSet[p.Name] = struct{}{}
	g.profiles = append(g.profiles, p)
}

// SupportedProfiles returns the supported profiles in insertion order.
func (g *Graph) SupportedProfiles() []profile.Profile {
	out := make([]profile.Profile, len(g.profiles))
	copy(out, g.profiles)
	return out
}

// totalLengthChunk bounds the scratch buffer used by TotalLength so the
// summation stays out-of-core friendly.
const totalLengthChunk = 4096

// TotalLength sums the distances of all edges in float64 precision.
func (g *Graph) TotalLength() float64 {
	var total float64
	buf := make([]float64, 0, totalLengthChunk)
	for i := uint64(0); i < g.edges.Len(); i++ {
		buf = append(buf, float64(g.edges.Get(i).Distance()))
		if len(buf) == totalLengthChunk {
			total += floats.Sum(buf)
			buf = buf[:0]
		}
	}
	return total + floats.Sum(buf)
}
