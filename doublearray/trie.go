package doublearray

import "github.com/iotaledger/da.go/doublearray/storage"

// Trie is a handle onto a base/check array plus its value table: a thin
// wrapper that adds key-walk semantics (Find, Contains, Subtrie,
// Iterator) over a storage.Storage. Multiple Tries can wrap the same
// underlying storage (storage.Shared, storage.Mmap) or each its own
// (storage.Memory).
type Trie struct {
	storage storage.Storage
	root    int
}

// New wraps s as a Trie rooted at cell 0, the root every Storage
// implementation allocates on construction.
func New(s storage.Storage) *Trie {
	return &Trie{storage: s, root: 0}
}

// Storage returns the underlying storage, for callers that need to
// Clone, Serialize or Close it directly.
func (t *Trie) Storage() storage.Storage {
	return t.storage
}

// Find walks key to its terminal cell and returns the stored value, or
// (nil, false) if key is not present. Find never partially matches: a
// key that is a strict prefix of stored keys but not itself stored (e.g.
// "U" when only "UT" and "UTO" are present) reports absent.
func (t *Trie) Find(key []byte) (interface{}, bool) {
	node, ok := t.walk(t.root, key)
	if !ok {
		return nil, false
	}
	leaf, ok := t.walkByte(node, storage.KeyTerminator)
	if !ok {
		return nil, false
	}
	return t.storage.ValueAt(int(t.storage.BaseAt(leaf)))
}

// Contains reports whether key is present, without paying for the value
// decode Find's ValueAt lookup performs.
func (t *Trie) Contains(key []byte) bool {
	node, ok := t.walk(t.root, key)
	if !ok {
		return false
	}
	_, ok = t.walkByte(node, storage.KeyTerminator)
	return ok
}

// Subtrie returns a view rooted at the cell reached by walking prefix,
// sharing this Trie's storage (no copy). The returned Trie's Find,
// Contains and Iterator all operate on keys relative to prefix: calling
// Find([]byte("O")) on the subtrie reached via prefix "UT" reports the
// value stored for "UTO" in the parent trie. ok is false when no stored
// key has prefix as a prefix.
func (t *Trie) Subtrie(prefix []byte) (sub *Trie, ok bool) {
	node, ok := t.walk(t.root, prefix)
	if !ok {
		return nil, false
	}
	return &Trie{storage: t.storage, root: node}, true
}

// walk follows key byte by byte from node, returning the cell reached.
// It does not consume a terminator: the returned cell may itself have
// further children (it is an internal node), a terminator child (it is
// also a complete key), or both.
func (t *Trie) walk(node int, key []byte) (int, bool) {
	for _, b := range key {
		next, ok := t.walkByte(node, b)
		if !ok {
			return 0, false
		}
		node = next
	}
	return node, true
}

// walkByte follows a single edge byte b from node, validating the
// double-array invariant that the reached cell's check byte equals b
// (rather than being a coincidental collision with another node's
// children).
func (t *Trie) walkByte(node int, b byte) (int, bool) {
	base := t.storage.BaseAt(node)
	child := int(base) + int(b)
	if child < 0 || t.storage.CheckAt(child) != b {
		return 0, false
	}
	return child, true
}
