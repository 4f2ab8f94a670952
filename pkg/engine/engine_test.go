package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sanonone/roadgraph/pkg/core"
	"github.com/sanonone/roadgraph/pkg/core/profile"
	"github.com/sanonone/roadgraph/pkg/core/tags"
)

func TestOpenFreshDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	e, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	if e.Graph().VertexCount() != 0 || e.Graph().EdgeCount() != 0 {
		t.Error("fresh engine is not empty")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestSaveAndReopen(t *testing.T) {
	dir := t.TempDir()

	opts := DefaultOptions(dir)
	opts.Registry = profile.NewRegistry("car")

	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	g := e.Graph()
	g.AddSupportedProfile(profile.Profile{Name: "car"})
	g.AddVertex(48.1, 11.5)
	g.AddVertex(48.2, 11.6)
	edge, _ := core.NewEdge(true, 0, 42)
	g.AddEdge(edge)
	c, _ := tags.New(tags.Pair{Key: "highway", Value: "primary"})
	e.Tags().Add(c)

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Graph().VertexCount() != 2 {
		t.Errorf("VertexCount = %d", reopened.Graph().VertexCount())
	}
	if reopened.Graph().EdgeCount() != 1 || !reopened.Graph().Edge(0).Equal(edge) {
		t.Error("edge not restored")
	}
	if reopened.Tags().Max() != 1 {
		t.Errorf("tag count = %d", reopened.Tags().Max())
	}
	profiles := reopened.Graph().SupportedProfiles()
	if len(profiles) != 1 || profiles[0].Name != "car" {
		t.Errorf("profiles = %v", profiles)
	}
}

func TestCloseSavesWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	e.Graph().AddVertex(1, 2)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	// repeated Close is a no-op
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Graph().VertexCount() != 1 {
		t.Errorf("VertexCount after close/reopen = %d", reopened.Graph().VertexCount())
	}
}

// Mapped arrays must behave exactly like heap arrays through a full
// save/reopen cycle.
func TestMappedArraysRoundTrip(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)
	opts.MapArrays = true
	opts.SaveOnClose = false

	e, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		e.Graph().AddVertex(float32(i), float32(-i))
	}
	edge, _ := core.NewEdge(false, 11, 3.5)
	e.Graph().AddEdge(edge)

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.Graph().VertexCount() != 100 {
		t.Fatalf("VertexCount = %d", reopened.Graph().VertexCount())
	}
	v, ok := reopened.Graph().Vertex(42)
	if !ok || v.Lat != 42 || v.Lon != -42 {
		t.Errorf("Vertex(42) = %+v, %v", v, ok)
	}
	if !reopened.Graph().Edge(0).Equal(edge) {
		t.Error("edge not restored through mapped backing")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	e.Graph().AddVertex(1, 1)
	if err := e.Save(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "roadgraph.rgf" {
		names := make([]string, 0, len(entries))
		for _, en := range entries {
			names = append(names, en.Name())
		}
		t.Errorf("unexpected files after save: %v", names)
	}
}
