package core

import (
	"github.com/x448/float16"

	"github.com/sanonone/roadgraph/pkg/core/hugearray"
)

// CompactVertexArray stores vertex coordinates as IEEE 754 half-precision
// values, halving the memory footprint of the vertex array for
// read-mostly consumers that tolerate coordinate error in the order of
// meters. It must not back a graph that is expected to round-trip
// byte-exactly through the serializer, since quantization is lossy.
type CompactVertexArray struct {
	bits []uint16 // lat, lon interleaved
}

var _ hugearray.Array[Vertex] = (*CompactVertexArray)(nil)

// NewCompactVertexArray returns an empty half-precision vertex array.
func NewCompactVertexArray() *CompactVertexArray {
	return &CompactVertexArray{}
}

func (a *CompactVertexArray) Len() uint64 {
	return uint64(len(a.bits) / 2)
}

func (a *CompactVertexArray) Get(i uint64) Vertex {
	return Vertex{
		Lat: float16.Frombits(a.bits[2*i]).Float32(),
		Lon: float16.Frombits(a.bits[2*i+1]).Float32(),
	}
}

func (a *CompactVertexArray) Set(i uint64, v Vertex) {
	a.bits[2*i] = float16.Fromfloat32(v.Lat).Bits()
	a.bits[2*i+1] = float16.Fromfloat32(v.Lon).Bits()
}

func (a *CompactVertexArray) Append(v Vertex) uint64 {
	a.bits = append(a.bits,
		float16.Fromfloat32(v.Lat).Bits(),
		float16.Fromfloat32(v.Lon).Bits(),
	)
	return a.Len() - 1
}
