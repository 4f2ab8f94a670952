package hugearray

import (
	"path/filepath"
	"testing"

	"github.com/sanonone/roadgraph/pkg/storage/mmap"
)

func TestMappedArray(t *testing.T) {
	arena, err := mmap.NewArena(filepath.Join(t.TempDir(), "arena"), 2)
	if err != nil {
		t.Fatal(err)
	}
	defer arena.Close()

	a, err := NewMapped[[2]uint32](arena, pairMapper{})
	if err != nil {
		t.Fatal(err)
	}

	for i := uint32(0); i < 20; i++ {
		if idx := a.Append([2]uint32{i, i + 1}); idx != uint64(i) {
			t.Fatalf("Append %d returned index %d", i, idx)
		}
	}
	if a.Len() != 20 {
		t.Fatalf("Len = %d", a.Len())
	}
	if got := a.Get(7); got != [2]uint32{7, 8} {
		t.Errorf("Get(7) = %v", got)
	}

	a.Set(7, [2]uint32{100, 200})
	if got := a.Get(7); got != [2]uint32{100, 200} {
		t.Errorf("Set(7) not visible: %v", got)
	}
}

func TestMappedRejectsWidthMismatch(t *testing.T) {
	arena, err := mmap.NewArena(filepath.Join(t.TempDir(), "arena"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer arena.Close()

	if _, err := NewMapped[[2]uint32](arena, pairMapper{}); err == nil {
		t.Error("mapper/arena width mismatch accepted")
	}
}
