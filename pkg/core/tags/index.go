package tags

import (
	"errors"

	"github.com/tidwall/btree"
)

// ErrIndexOutOfRange is returned by Index.Get for an unknown id.
var ErrIndexOutOfRange = errors.New("tag collection id out of range")

// Index assigns dense, sequential integer ids to tag collections.
//
// Ids start at zero and grow by one per Add; collections are never removed
// and ids are never reused, so the serializer can rely on ids being
// reconstructable purely from append order. Deduplication is available
// through Intern but is never applied implicitly: Add always appends.
type Index struct {
	items []Collection

	// canonical encoding -> id, for Intern lookups
	byContent *btree.Map[string, uint32]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byContent: btree.NewMap[string, uint32](32),
	}
}

// Max returns the number of collections currently indexed. Valid ids are
// [0, Max()).
func (ix *Index) Max() uint32 {
	return uint32(len(ix.items))
}

// Get returns the collection stored under id. Fails with
// ErrIndexOutOfRange if id >= Max().
func (ix *Index) Get(id uint32) (Collection, error) {
	if id >= ix.Max() {
		return Collection{}, ErrIndexOutOfRange
	}
	return ix.items[id], nil
}

// Add appends c and returns its newly assigned id, which always equals the
// Max() value before the call. Content-identical collections get distinct
// ids; use Intern for deduplicating inserts.
func (ix *Index) Add(c Collection) uint32 {
	id := ix.Max()
	ix.items = append(ix.items, c)
	key := string(c.Encode())
	if _, ok := ix.byContent.Get(key); !ok {
		ix.byContent.Set(key, id)
	}
	return id
}

// Intern returns the id of a collection with identical content if one was
// indexed before, otherwise appends c and returns the fresh id.
func (ix *Index) Intern(c Collection) uint32 {
	if id, ok := ix.byContent.Get(string(c.Encode())); ok {
		return id
	}
	return ix.Add(c)
}
