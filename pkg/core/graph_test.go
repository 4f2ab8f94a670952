package core

import (
	"math"
	"testing"

	"github.com/sanonone/roadgraph/pkg/core/hugearray"
	"github.com/sanonone/roadgraph/pkg/core/profile"
)

func TestGraphVertices(t *testing.T) {
	g := NewGraph(nil)

	if g.VertexCount() != 0 {
		t.Fatalf("fresh graph has %d vertices", g.VertexCount())
	}

	id0 := g.AddVertex(48.1, 11.5)
	id1 := g.AddVertex(52.5, 13.4)
	if id0 != 0 || id1 != 1 {
		t.Fatalf("ids not dense: %d, %d", id0, id1)
	}

	v, ok := g.Vertex(1)
	if !ok || v.Lat != 52.5 || v.Lon != 13.4 {
		t.Errorf("Vertex(1) = %+v, %v", v, ok)
	}
	if _, ok := g.Vertex(2); ok {
		t.Error("Vertex(2) should be absent")
	}
}

func TestGraphEdges(t *testing.T) {
	g := NewGraph(nil)
	e, _ := NewEdge(true, 3, 100.5)
	i := g.AddEdge(e)
	if i != 0 || g.EdgeCount() != 1 {
		t.Fatalf("AddEdge = %d, count = %d", i, g.EdgeCount())
	}
	if !g.Edge(0).Equal(e) {
		t.Error("stored edge differs")
	}
}

func TestGraphProfilesDeduplicated(t *testing.T) {
	g := NewGraph(nil)
	g.AddSupportedProfile(profile.Profile{Name: "car"})
	g.AddSupportedProfile(profile.Profile{Name: "bike"})
	g.AddSupportedProfile(profile.Profile{Name: "car"})

	got := g.SupportedProfiles()
	if len(got) != 2 || got[0].Name != "car" || got[1].Name != "bike" {
		t.Errorf("SupportedProfiles = %v", got)
	}
}

func TestGraphTotalLength(t *testing.T) {
	g := NewGraph(nil)
	for _, d := range []float32{1.5, 2.5, 10} {
		e, _ := NewEdge(true, 0, d)
		g.AddEdge(e)
	}
	if got := g.TotalLength(); got != 14 {
		t.Errorf("TotalLength = %v, want 14", got)
	}
}

func TestGraphWithPagedArrays(t *testing.T) {
	g := NewGraphWithArrays(
		hugearray.NewPaged[Vertex](8),
		hugearray.NewPaged[Edge](8),
		nil,
	)

	// cross several page boundaries
	for i := 0; i < 50; i++ {
		g.AddVertex(float32(i), float32(-i))
	}
	if g.VertexCount() != 50 {
		t.Fatalf("VertexCount = %d", g.VertexCount())
	}
	v, ok := g.Vertex(33)
	if !ok || v.Lat != 33 || v.Lon != -33 {
		t.Errorf("Vertex(33) = %+v, %v", v, ok)
	}
}

// Half-precision backing trades accuracy for memory; coordinates must
// still come back within float16 tolerance.
func TestCompactVertexArray(t *testing.T) {
	a := NewCompactVertexArray()
	in := Vertex{Lat: 48.14, Lon: 11.58}
	a.Append(in)

	if a.Len() != 1 {
		t.Fatalf("Len = %d", a.Len())
	}
	out := a.Get(0)
	if math.Abs(float64(out.Lat-in.Lat)) > 0.05 || math.Abs(float64(out.Lon-in.Lon)) > 0.05 {
		t.Errorf("quantization error too large: %+v vs %+v", out, in)
	}

	a.Set(0, Vertex{Lat: 1, Lon: 2})
	out = a.Get(0)
	if out.Lat != 1 || out.Lon != 2 {
		t.Errorf("Set/Get = %+v", out)
	}
}

func TestVertexMapper(t *testing.T) {
	m := VertexMapper{}
	v := Vertex{Lat: -33.9, Lon: 151.2}
	buf := make([]uint32, m.WordCount())
	m.ToWords(v, buf)
	if got := m.FromWords(buf); got != v {
		t.Errorf("mapper round trip = %+v, want %+v", got, v)
	}
}
