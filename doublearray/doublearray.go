// Package doublearray implements a double-array trie: a byte-keyed,
// ordered associative structure stored as two parallel arrays (base and
// check) packed into one 32-bit cell per node, following the layout and
// build algorithm of tetengo's trie library. Build a trie with Build,
// wrap the resulting storage with New, then use Trie.Find, Trie.Contains,
// Trie.Subtrie and Trie.Iterator to query it. Storage backends live in
// the doublearray/storage subpackage: storage.Memory for a mutable
// in-process trie, storage.Shared for reference-counted sharing between
// a trie and its subtries, and storage.Mmap for a read-only trie served
// directly from a file.
package doublearray

import (
	"io"

	"github.com/iotaledger/da.go/doublearray/storage"
)

// BuildMemory builds entries into a fresh in-memory Trie. It is a
// convenience wrapper around Build + New for the common case where the
// caller doesn't need the underlying storage.Memory directly (to clone
// or serialize it themselves).
func BuildMemory(entries []Entry, cfg Config) (*Trie, error) {
	mem, err := Build(entries, cfg)
	if err != nil {
		return nil, err
	}
	return New(mem), nil
}

// Serialize writes t's storage to w in the binary format from spec.md
// §6.1. Fails with storage.ErrInvalidArgument if t wraps a read-only
// storage (storage.Mmap).
func Serialize(w io.Writer, t *Trie, ser storage.Serializer) error {
	return t.storage.Serialize(w, ser)
}

// Load reads a trie previously written by Serialize (or storage.Memory's
// own Serialize) into a fresh in-memory Trie.
func Load(r io.Reader, des storage.Deserializer) (*Trie, error) {
	mem, err := storage.Load(r, des)
	if err != nil {
		return nil, err
	}
	return New(mem), nil
}

// OpenMmap memory-maps the trie file at path and returns a read-only
// Trie backed by it. The returned Trie's Storage is a *storage.Mmap;
// call its Close method (via t.Storage().(*storage.Mmap).Close()) once
// the trie is no longer needed to release the mapping and file
// descriptor.
func OpenMmap(path string, contentOffset int64, des storage.Deserializer, cacheCapacity int) (*Trie, error) {
	m, err := storage.OpenMmap(path, contentOffset, des, cacheCapacity)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}
