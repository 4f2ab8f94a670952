package core

import (
	"math"

	"github.com/sanonone/roadgraph/pkg/core/hugearray"
)

// VertexWordCount is the number of uint32 words one vertex occupies in a
// raw word array: latitude bits and longitude bits. The vertex id is never
// part of the raw record because ids are dense and implicit by position.
const VertexWordCount = 2

// Vertex is a geocoordinate node of the road network. Its id is assigned
// by insertion order into the graph and is not stored on the vertex
// itself.
type Vertex struct {
	Lat float32
	Lon float32
}

// VertexMapper adapts the vertex layout to the hugearray bulk-mapping
// interface.
type VertexMapper struct{}

var _ hugearray.WordMapper[Vertex] = VertexMapper{}

func (VertexMapper) WordCount() int { return VertexWordCount }

func (VertexMapper) ToWords(v Vertex, dst []uint32) {
	dst[0] = math.Float32bits(v.Lat)
	dst[1] = math.Float32bits(v.Lon)
}

func (VertexMapper) FromWords(src []uint32) Vertex {
	return Vertex{
		Lat: math.Float32frombits(src[0]),
		Lon: math.Float32frombits(src[1]),
	}
}
