package mmap

import (
	"path/filepath"
	"testing"
)

func TestArenaAppendGetSet(t *testing.T) {
	a, err := NewArena(filepath.Join(t.TempDir(), "arena"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.Len() != 0 {
		t.Fatalf("fresh arena Len = %d", a.Len())
	}

	id, err := a.Append([]uint32{1, 2, 3})
	if err != nil || id != 0 {
		t.Fatalf("Append = %d, %v", id, err)
	}
	if _, err := a.Append([]uint32{4, 5, 6}); err != nil {
		t.Fatal(err)
	}

	buf := make([]uint32, 3)
	if err := a.Get(1, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 4 || buf[1] != 5 || buf[2] != 6 {
		t.Errorf("Get(1) = %v", buf)
	}

	if err := a.Set(0, []uint32{9, 9, 9}); err != nil {
		t.Fatal(err)
	}
	if err := a.Get(0, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 9 {
		t.Errorf("Set not visible: %v", buf)
	}
}

func TestArenaGetOutOfRange(t *testing.T) {
	a, err := NewArena(filepath.Join(t.TempDir(), "arena"), 2)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Get(0, make([]uint32, 2)); err == nil {
		t.Error("Get past Len succeeded")
	}
}

// Content and length must survive a close/reopen cycle, since the
// chunks are plain files.
func TestArenaReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "arena")

	a, err := NewArena(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := uint32(0); i < 100; i++ {
		if _, err := a.Append([]uint32{i, i * 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := NewArena(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if b.Len() != 100 {
		t.Fatalf("reopened Len = %d", b.Len())
	}
	buf := make([]uint32, 2)
	if err := b.Get(73, buf); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 73 || buf[1] != 146 {
		t.Errorf("Get(73) after reopen = %v", buf)
	}
}

func TestArenaRejectsMismatchedWidth(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "arena")

	a, err := NewArena(dir, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Append([]uint32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	a.Close()

	if _, err := NewArena(dir, 2); err == nil {
		t.Error("arena with mismatched record width accepted")
	}
}
