// Package core holds the in-memory model of a routable road-network graph:
// vertices, compactly encoded edges, and the graph aggregate that ties them
// to a tag collection index and a set of supported vehicle profiles.
package core

import (
	"errors"
	"math"

	"github.com/sanonone/roadgraph/pkg/core/hugearray"
)

// MaxTagRef is the largest tag collection reference an edge can carry.
// The reference is multiplied by two when packed, so one bit of the
// 32-bit word is lost to the direction flag.
const MaxTagRef = (1<<32 - 1) / 2

// EdgeWordCount is the number of uint32 words one edge occupies on disk:
// the packed direction/tag word, the raw tag reference, and the distance
// bits.
const EdgeWordCount = 3

// ErrValueOutOfRange is returned when a tag collection reference does not
// fit into the packed edge word.
var ErrValueOutOfRange = errors.New("value out of range")

// PackEdgeWord multiplexes the direction flag and the tag collection
// reference into a single word: tagRef*2, with the lowest bit set when the
// edge runs against its source orientation.
func PackEdgeWord(forward bool, tagRef uint32) (uint32, error) {
	if tagRef > MaxTagRef {
		return 0, ErrValueOutOfRange
	}
	word := tagRef * 2
	if !forward {
		word++
	}
	return word, nil
}

// UnpackEdgeWord is the inverse of PackEdgeWord.
func UnpackEdgeWord(word uint32) (forward bool, tagRef uint32) {
	return word%2 == 0, word / 2
}

// Edge is a directed arc between two vertices. The direction flag and the
// tag collection reference live packed in a single word so the invariant
// from PackEdgeWord holds at all times; mutations go through the setters.
type Edge struct {
	word     uint32
	distance float32
}

// NewEdge builds an edge from its unpacked fields. Fails with
// ErrValueOutOfRange if tagRef exceeds MaxTagRef.
func NewEdge(forward bool, tagRef uint32, distance float32) (Edge, error) {
	word, err := PackEdgeWord(forward, tagRef)
	if err != nil {
		return Edge{}, err
	}
	return Edge{word: word, distance: distance}, nil
}

// Direction reports whether the edge runs forward relative to its source
// orientation.
func (e Edge) Direction() bool {
	forward, _ := UnpackEdgeWord(e.word)
	return forward
}

// TagRef returns the tag collection reference.
func (e Edge) TagRef() uint32 {
	_, tagRef := UnpackEdgeWord(e.word)
	return tagRef
}

// Distance returns the edge length/cost.
func (e Edge) Distance() float32 {
	return e.distance
}

// SetDirection replaces the direction flag, leaving the tag reference
// untouched.
func (e *Edge) SetDirection(forward bool) {
	_, tagRef := UnpackEdgeWord(e.word)
	// tagRef came out of a valid word, repacking cannot fail
	e.word, _ = PackEdgeWord(forward, tagRef)
}

// SetTagRef replaces the tag collection reference, leaving the direction
// flag untouched. Fails with ErrValueOutOfRange if tagRef exceeds
// MaxTagRef.
func (e *Edge) SetTagRef(tagRef uint32) error {
	forward, _ := UnpackEdgeWord(e.word)
	word, err := PackEdgeWord(forward, tagRef)
	if err != nil {
		return err
	}
	e.word = word
	return nil
}

// SetDistance replaces the edge length/cost.
func (e *Edge) SetDistance(distance float32) {
	e.distance = distance
}

// Reverse returns a new edge with the direction flipped; tag reference and
// distance are unchanged. The receiver is not modified.
func (e Edge) Reverse() Edge {
	r := e
	r.SetDirection(!e.Direction())
	return r
}

// Equal reports whether two edges carry the identical packed word and
// bit-identical distances. NaN distances compare by their bit pattern, not
// by IEEE semantics.
func (e Edge) Equal(other Edge) bool {
	return e.word == other.word &&
		math.Float32bits(e.distance) == math.Float32bits(other.distance)
}

// Words returns the raw three-word on-disk record: the packed word, the
// tag reference duplicated standalone, and the distance bits. The
// duplicate is a legacy of the original layout and is preserved for wire
// compatibility.
func (e Edge) Words() [EdgeWordCount]uint32 {
	return [EdgeWordCount]uint32{e.word, e.TagRef(), math.Float32bits(e.distance)}
}

// EdgeFromWords reconstructs an edge from its raw record. The standalone
// tag reference word is ignored; the packed word is authoritative.
func EdgeFromWords(w [EdgeWordCount]uint32) Edge {
	return Edge{word: w[0], distance: math.Float32frombits(w[2])}
}

// EdgeMapper adapts the edge word layout to the hugearray bulk-mapping
// interface.
type EdgeMapper struct{}

var _ hugearray.WordMapper[Edge] = EdgeMapper{}

func (EdgeMapper) WordCount() int { return EdgeWordCount }

func (EdgeMapper) ToWords(e Edge, dst []uint32) {
	w := e.Words()
	copy(dst, w[:])
}

func (EdgeMapper) FromWords(src []uint32) Edge {
	return EdgeFromWords([EdgeWordCount]uint32{src[0], src[1], src[2]})
}
