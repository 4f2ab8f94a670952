// Package tags implements attribute-tag collections and the append-only
// index that assigns them stable integer identifiers.
//
// A collection is an immutable set of key/value string pairs describing a
// road segment (highway class, surface, ...). Collections are referenced
// by edges through their index id, never owned by them.
package tags

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Pair is a single key/value attribute.
type Pair struct {
	Key   string
	Value string
}

// Collection is an immutable set of attribute pairs with unique keys.
// Pairs are kept sorted by key so the encoded form is canonical: two
// collections with the same content always encode to the same bytes,
// regardless of construction order.
type Collection struct {
	pairs []Pair
}

// New builds a collection from the given pairs. Duplicate keys are
// rejected, and every field is bounds-checked against the u16 wire
// fields of Encode, so a constructed collection always encodes to a
// payload Decode can parse back. The insertion order of pairs is
// irrelevant.
func New(pairs ...Pair) (Collection, error) {
	if len(pairs) > MaxPairs {
		return Collection{}, fmt.Errorf("%d tag pairs exceed u16 pair count field", len(pairs))
	}
	for _, p := range pairs {
		if len(p.Key) > math.MaxUint16 {
			return Collection{}, fmt.Errorf("tag key of %d bytes exceeds u16 length field", len(p.Key))
		}
		if len(p.Value) > math.MaxUint16 {
			return Collection{}, fmt.Errorf("tag value for key %q of %d bytes exceeds u16 length field", p.Key, len(p.Value))
		}
	}
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return Collection{}, fmt.Errorf("duplicate tag key %q", sorted[i].Key)
		}
	}
	return Collection{pairs: sorted}, nil
}

// FromMap builds a collection from a key/value map.
func FromMap(m map[string]string) (Collection, error) {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	return New(pairs...)
}

// Len returns the number of pairs.
func (c Collection) Len() int {
	return len(c.pairs)
}

// Get returns the value stored under key.
func (c Collection) Get(key string) (string, bool) {
	i := sort.Search(len(c.pairs), func(i int) bool { return c.pairs[i].Key >= key })
	if i < len(c.pairs) && c.pairs[i].Key == key {
		return c.pairs[i].Value, true
	}
	return "", false
}

// Pairs returns a copy of the pairs in ascending key order.
func (c Collection) Pairs() []Pair {
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Equal reports whether both collections hold the same pairs.
func (c Collection) Equal(other Collection) bool {
	if len(c.pairs) != len(other.pairs) {
		return false
	}
	for i := range c.pairs {
		if c.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}

// Encode returns the canonical payload of the collection:
// a u16 pair count followed by, per pair, u16-length-prefixed key and
// value bytes, little-endian, pairs in ascending key order. The outer
// length prefix of the flat-file format is not included.
func (c Collection) Encode() []byte {
	size := 2
	for _, p := range c.pairs {
		size += 4 + len(p.Key) + len(p.Value)
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(c.pairs)))
	for _, p := range c.pairs {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Key)))
		buf = append(buf, p.Key...)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Value)))
		buf = append(buf, p.Value...)
	}
	return buf
}

// Decode reconstructs a collection from its canonical payload.
func Decode(payload []byte) (Collection, error) {
	if len(payload) < 2 {
		return Collection{}, fmt.Errorf("tag payload too short: %d bytes", len(payload))
	}
	count := int(binary.LittleEndian.Uint16(payload))
	off := 2
	pairs := make([]Pair, 0, count)
	readStr := func() (string, error) {
		if off+2 > len(payload) {
			return "", fmt.Errorf("tag payload truncated at offset %d", off)
		}
		n := int(binary.LittleEndian.Uint16(payload[off:]))
		off += 2
		if off+n > len(payload) {
			return "", fmt.Errorf("tag payload truncated at offset %d", off)
		}
		s := string(payload[off : off+n])
		off += n
		return s, nil
	}
	for i := 0; i < count; i++ {
		key, err := readStr()
		if err != nil {
			return Collection{}, err
		}
		value, err := readStr()
		if err != nil {
			return Collection{}, err
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	if off != len(payload) {
		return Collection{}, fmt.Errorf("tag payload has %d trailing bytes", len(payload)-off)
	}
	return New(pairs...)
}

// MaxPairs is the largest number of pairs one collection can hold,
// bounded by the u16 pair count field of the wire payload. New rejects
// anything larger.
const MaxPairs = math.MaxUint16
