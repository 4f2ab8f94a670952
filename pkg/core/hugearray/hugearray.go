// Package hugearray provides array abstractions for graph element storage
// whose element count may exceed what a single in-memory allocation can
// reasonably hold.
//
// The Serializer and the Graph only depend on the Array interface; the
// concrete backing (a plain slice, a paged structure, or a compressed
// store) is an injected strategy.
package hugearray

// Array is an indexed, append-only element store.
//
// Indexes are uint64 so a backing implementation may address more elements
// than fit in a single slice. Get and Set panic when the index is out of
// range, matching slice semantics; callers are expected to stay within
// [0, Len()).
type Array[T any] interface {
	// Len returns the number of elements stored.
	Len() uint64

	// Get returns the element at index i.
	Get(i uint64) T

	// Set replaces the element at index i.
	Set(i uint64, v T)

	// Append adds v at the end and returns its index.
	Append(v T) uint64
}

// WordMapper converts elements to and from their raw on-disk word
// representation. The word count is fixed per element type.
type WordMapper[T any] interface {
	// WordCount returns the number of uint32 words one element occupies.
	WordCount() int

	// ToWords writes the raw representation of v into dst.
	// dst must have at least WordCount() elements.
	ToWords(v T, dst []uint32)

	// FromWords reconstructs an element from its raw representation.
	// src must have at least WordCount() elements.
	FromWords(src []uint32) T
}

// ToWordSlice converts an entire array into a flat word slice using m.
// Intended for bulk export; for out-of-core arrays prefer streaming one
// element at a time.
func ToWordSlice[T any](m WordMapper[T], a Array[T]) []uint32 {
	wc := m.WordCount()
	out := make([]uint32, 0, a.Len()*uint64(wc))
	buf := make([]uint32, wc)
	for i := uint64(0); i < a.Len(); i++ {
		m.ToWords(a.Get(i), buf)
		out = append(out, buf...)
	}
	return out
}

// FromWordSlice appends all elements encoded in words to a. The length of
// words must be a multiple of m.WordCount().
func FromWordSlice[T any](m WordMapper[T], a Array[T], words []uint32) {
	wc := m.WordCount()
	for off := 0; off+wc <= len(words); off += wc {
		a.Append(m.FromWords(words[off : off+wc]))
	}
}
