package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sanonone/roadgraph/pkg/core"
)

// EdgeFormat is the strategy for the interior of the edges section. The
// flat-file serializer only frames the section with its length prefix;
// the record layout depends on which edge-data variant the graph uses.
type EdgeFormat interface {
	// Serialize writes all edges of g to w.
	Serialize(w io.Writer, g *core.Graph) error

	// Deserialize reads edges from r and appends them to g. r is limited
	// to the declared section size.
	Deserialize(r io.Reader, g *core.Graph) error
}

// TaggedEdgeFormat is the concrete layout for direction/tag-annotated
// edges: a u64 edge count followed by one three-word record per edge.
//
// Record layout, little-endian u32 each:
//
//	[packed direction+tagRef][tagRef raw][distance bits]
//
// The raw tagRef word duplicates information already present in the
// packed word. The duplication is kept byte-for-byte for compatibility
// with existing files; readers treat the packed word as authoritative.
type TaggedEdgeFormat struct{}

var _ EdgeFormat = TaggedEdgeFormat{}

func (TaggedEdgeFormat) Serialize(w io.Writer, g *core.Graph) error {
	var head [8]byte
	binary.LittleEndian.PutUint64(head[:], g.EdgeCount())
	if _, err := w.Write(head[:]); err != nil {
		return fmt.Errorf("write edge count: %w", err)
	}

	var rec [core.EdgeWordCount * 4]byte
	for i := uint64(0); i < g.EdgeCount(); i++ {
		words := g.Edge(i).Words()
		for j, word := range words {
			binary.LittleEndian.PutUint32(rec[j*4:], word)
		}
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write edge %d: %w", i, err)
		}
	}
	return nil
}

func (TaggedEdgeFormat) Deserialize(r io.Reader, g *core.Graph) error {
	var head [8]byte
	if err := readFull(r, head[:]); err != nil {
		return fmt.Errorf("read edge count: %w", err)
	}
	count := binary.LittleEndian.Uint64(head[:])

	var rec [core.EdgeWordCount * 4]byte
	for i := uint64(0); i < count; i++ {
		if err := readFull(r, rec[:]); err != nil {
			return fmt.Errorf("read edge %d: %w", i, err)
		}
		var words [core.EdgeWordCount]uint32
		for j := range words {
			words[j] = binary.LittleEndian.Uint32(rec[j*4:])
		}
		g.AddEdge(core.EdgeFromWords(words))
	}
	return nil
}
