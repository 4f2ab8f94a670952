package hugearray

// DefaultPageSize is the number of elements per page used by NewPaged.
// 64k elements keeps individual allocations small while amortizing the
// page-table indirection.
const DefaultPageSize = 1 << 16

// Paged is an Array backing that stores elements in fixed-size pages
// allocated on demand. No single allocation grows with the total element
// count, so very large graphs avoid the reallocation spikes of a plain
// slice and the total count is not bounded by one contiguous block.
type Paged[T any] struct {
	pages    [][]T
	pageSize uint64
	length   uint64
}

// NewPaged returns an empty paged array with the given page size.
// A pageSize <= 0 falls back to DefaultPageSize.
func NewPaged[T any](pageSize int) *Paged[T] {
	ps := uint64(pageSize)
	if pageSize <= 0 {
		ps = DefaultPageSize
	}
	return &Paged[T]{pageSize: ps}
}

func (p *Paged[T]) Len() uint64 {
	return p.length
}

func (p *Paged[T]) Get(i uint64) T {
	if i >= p.length {
		panic("hugearray: index out of range")
	}
	return p.pages[i/p.pageSize][i%p.pageSize]
}

func (p *Paged[T]) Set(i uint64, v T) {
	if i >= p.length {
		panic("hugearray: index out of range")
	}
	p.pages[i/p.pageSize][i%p.pageSize] = v
}

func (p *Paged[T]) Append(v T) uint64 {
	page := p.length / p.pageSize
	if page == uint64(len(p.pages)) {
		p.pages = append(p.pages, make([]T, 0, p.pageSize))
	}
	p.pages[page] = append(p.pages[page], v)
	p.length++
	return p.length - 1
}
