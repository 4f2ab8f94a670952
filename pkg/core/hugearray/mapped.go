package hugearray

import (
	"fmt"

	"github.com/sanonone/roadgraph/pkg/storage/mmap"
)

// Mapped is an Array backed by a memory-mapped record arena, for graphs
// whose vertex or edge arrays exceed comfortable heap sizes. Elements
// are converted to their raw word records by the supplied WordMapper on
// every access.
//
// Arena errors (chunk allocation, mapping) surface as panics from Get,
// Set and Append, matching the Array contract; they indicate an
// unusable backing file, not a recoverable condition.
type Mapped[T any] struct {
	arena  *mmap.Arena
	mapper WordMapper[T]
	buf    []uint32
}

// NewMapped wraps an arena as a typed array. The arena's record width
// must match the mapper's word count.
func NewMapped[T any](arena *mmap.Arena, mapper WordMapper[T]) (*Mapped[T], error) {
	if arena.RecordWords() != mapper.WordCount() {
		return nil, fmt.Errorf("arena record width %d does not match mapper word count %d",
			arena.RecordWords(), mapper.WordCount())
	}
	return &Mapped[T]{
		arena:  arena,
		mapper: mapper,
		buf:    make([]uint32, mapper.WordCount()),
	}, nil
}

func (m *Mapped[T]) Len() uint64 {
	return m.arena.Len()
}

func (m *Mapped[T]) Get(i uint64) T {
	if err := m.arena.Get(i, m.buf); err != nil {
		panic("hugearray: " + err.Error())
	}
	return m.mapper.FromWords(m.buf)
}

func (m *Mapped[T]) Set(i uint64, v T) {
	m.mapper.ToWords(v, m.buf)
	if err := m.arena.Set(i, m.buf); err != nil {
		panic("hugearray: " + err.Error())
	}
}

func (m *Mapped[T]) Append(v T) uint64 {
	m.mapper.ToWords(v, m.buf)
	id, err := m.arena.Append(m.buf)
	if err != nil {
		panic("hugearray: " + err.Error())
	}
	return id
}
