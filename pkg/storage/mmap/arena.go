// Package mmap implements a memory-mapped record arena: an out-of-core
// backing store for the graph's huge arrays. Elements are fixed-width
// records of uint32 words, stored by sequential id across a series of
// mapped chunk files, so the array can grow far past comfortable heap
// sizes while the OS pages data in and out on demand.
package mmap

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"
)

const (
	// DefaultChunkSize is 64MB per mapped chunk file.
	DefaultChunkSize = 64 * 1024 * 1024
	ArenaMagic       = 0x5247524E // "RGRN"
	ArenaVersion     = 1
	ArenaHeaderSize  = 64
)

// header layout inside every chunk: magic u32, version u32,
// recordWords u32; chunk 0 additionally carries the element count as a
// u64 at offset 16 so the arena length survives a restart.
const lengthOffset = 16

// chunk is a single memory-mapped file.
type chunk struct {
	id   int
	file *os.File
	data []byte
}

// Arena stores fixed-width word records by sequential id across
// memory-mapped chunk files. Like the rest of the graph core it is
// single-threaded; callers needing concurrent access must synchronize
// externally.
type Arena struct {
	dir         string
	chunkSize   int
	recordWords int
	recordBytes int
	recsPerChk  int
	chunks      []*chunk
	length      uint64
}

// NewArena opens (or creates) an arena in dir for records of
// recordWords uint32 words each. Existing chunk files are remapped, so
// an arena written by a previous process comes back with its content
// and length intact.
func NewArena(dir string, recordWords int) (*Arena, error) {
	if recordWords <= 0 {
		return nil, fmt.Errorf("recordWords must be > 0")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create arena dir: %w", err)
	}

	recordBytes := recordWords * 4
	a := &Arena{
		dir:         dir,
		chunkSize:   DefaultChunkSize,
		recordWords: recordWords,
		recordBytes: recordBytes,
		recsPerChk:  (DefaultChunkSize - ArenaHeaderSize) / recordBytes,
	}

	if err := a.loadExistingChunks(); err != nil {
		return nil, err
	}
	if len(a.chunks) > 0 {
		a.length = binary.LittleEndian.Uint64(a.chunks[0].data[lengthOffset:])
	}
	return a, nil
}

// RecordWords returns the fixed record width in uint32 words.
func (a *Arena) RecordWords() int {
	return a.recordWords
}

// Len returns the number of records stored.
func (a *Arena) Len() uint64 {
	return a.length
}

func (a *Arena) loadExistingChunks() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return err
	}

	maxChunkID := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var id int
		if _, err := fmt.Sscanf(entry.Name(), "arena_%04d.bin", &id); err == nil {
			if id > maxChunkID {
				maxChunkID = id
			}
		}
	}

	// chunks must be mapped in id order
	for i := 0; i <= maxChunkID; i++ {
		if err := a.addChunk(i); err != nil {
			return err
		}
	}
	return nil
}

func (a *Arena) addChunk(chunkID int) error {
	fileName := filepath.Join(a.dir, fmt.Sprintf("arena_%04d.bin", chunkID))

	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	isNewFile := info.Size() == 0

	if info.Size() < int64(a.chunkSize) {
		if err := file.Truncate(int64(a.chunkSize)); err != nil {
			file.Close()
			return err
		}
	}

	data, err := mmapFile(file.Fd(), a.chunkSize)
	if err != nil {
		file.Close()
		return err
	}

	if isNewFile {
		binary.LittleEndian.PutUint32(data[0:4], ArenaMagic)
		binary.LittleEndian.PutUint32(data[4:8], ArenaVersion)
		binary.LittleEndian.PutUint32(data[8:12], uint32(a.recordWords))
		// remaining header bytes stay zero (length field, reserved)
	} else {
		magic := binary.LittleEndian.Uint32(data[0:4])
		version := binary.LittleEndian.Uint32(data[4:8])
		fileWords := binary.LittleEndian.Uint32(data[8:12])

		var headerErr error
		switch {
		case magic != ArenaMagic:
			headerErr = fmt.Errorf("file %s is not a valid arena (magic mismatch)", fileName)
		case version != ArenaVersion:
			headerErr = fmt.Errorf("file %s unsupported version %d", fileName, version)
		case fileWords != uint32(a.recordWords):
			headerErr = fmt.Errorf("file %s record width mismatch: expected %d words, got %d", fileName, a.recordWords, fileWords)
		}
		if headerErr != nil {
			_ = munmapFile(data)
			file.Close()
			return headerErr
		}
	}

	a.chunks = append(a.chunks, &chunk{id: chunkID, file: file, data: data})
	return nil
}

// record returns the mapped word slice for id, growing the chunk list
// when id lands past the mapped region.
func (a *Arena) record(id uint64) ([]uint32, error) {
	chunkID := int(id / uint64(a.recsPerChk))
	offset := ArenaHeaderSize + (int(id%uint64(a.recsPerChk)))*a.recordBytes

	for chunkID >= len(a.chunks) {
		if err := a.addChunk(len(a.chunks)); err != nil {
			return nil, err
		}
	}
	return bytesToUint32Slice(a.chunks[chunkID].data[offset:offset+a.recordBytes], a.recordWords), nil
}

// Get copies the record stored under id into dst. id must be < Len().
func (a *Arena) Get(id uint64, dst []uint32) error {
	if id >= a.length {
		return fmt.Errorf("arena id %d out of range (len %d)", id, a.length)
	}
	rec, err := a.record(id)
	if err != nil {
		return err
	}
	copy(dst, rec)
	return nil
}

// Set overwrites the record stored under id. id must be < Len().
func (a *Arena) Set(id uint64, words []uint32) error {
	if id >= a.length {
		return fmt.Errorf("arena id %d out of range (len %d)", id, a.length)
	}
	rec, err := a.record(id)
	if err != nil {
		return err
	}
	copy(rec, words)
	return nil
}

// Append stores words under the next sequential id and returns it.
func (a *Arena) Append(words []uint32) (uint64, error) {
	id := a.length
	rec, err := a.record(id)
	if err != nil {
		return 0, err
	}
	copy(rec, words)
	a.length++
	binary.LittleEndian.PutUint64(a.chunks[0].data[lengthOffset:], a.length)
	return id, nil
}

// Close unmaps and closes every chunk. The mapped pages are MAP_SHARED,
// so written records reach the files without an explicit flush.
func (a *Arena) Close() error {
	var firstErr error
	for _, c := range a.chunks {
		if err := munmapFile(c.data); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := c.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.chunks = nil
	return firstErr
}

// bytesToUint32Slice casts a mapped byte region to a word slice without
// copying.
func bytesToUint32Slice(b []byte, words int) []uint32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), words)
}
