package hugearray

// Slice is the default in-memory Array backing, a thin wrapper around a Go
// slice. Suitable for graphs that comfortably fit in RAM.
type Slice[T any] struct {
	items []T
}

// NewSlice returns an empty in-memory array.
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{}
}

func (s *Slice[T]) Len() uint64 {
	return uint64(len(s.items))
}

func (s *Slice[T]) Get(i uint64) T {
	return s.items[i]
}

func (s *Slice[T]) Set(i uint64, v T) {
	s.items[i] = v
}

func (s *Slice[T]) Append(v T) uint64 {
	s.items = append(s.items, v)
	return uint64(len(s.items) - 1)
}
