package doublearray

import "github.com/iotaledger/da.go/doublearray/storage"

// Set is a trie backed set of byte-string keys, supplementing the
// keyed Trie with the key-only view the original tetengo trie_set
// provided over the same double_array. Every key maps to an empty
// struct{} value so storage.ValueCount/FillingRate still behave exactly
// as a keyed trie's.
type Set struct {
	trie *Trie
}

// BuildSet builds keys, which must be sorted ascending and unique, into
// a fresh in-memory Set.
func BuildSet(keys [][]byte, cfg Config) (*Set, error) {
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: struct{}{}}
	}
	t, err := BuildMemory(entries, cfg)
	if err != nil {
		return nil, err
	}
	return &Set{trie: t}, nil
}

// NewSet wraps an existing key-only Trie (one built by BuildSet, or
// loaded/mapped back from a file Set.Serialize wrote) as a Set.
func NewSet(t *Trie) *Set {
	return &Set{trie: t}
}

// Trie returns the underlying Trie, for Serialize/Clone/Close access.
func (s *Set) Trie() *Trie {
	return s.trie
}

// Contains reports whether key is a member of the set.
func (s *Set) Contains(key []byte) bool {
	return s.trie.Contains(key)
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	return s.trie.storage.ValueCount()
}

// SetIterator walks a Set's keys in the same order as Iterator, mirroring
// it but omitting the value half of each pair since Set values carry no
// information.
type SetIterator struct {
	it *Iterator
}

// Iterator returns a fresh key iterator positioned before the first
// entry.
func (s *Set) Iterator() *SetIterator {
	return &SetIterator{it: s.trie.Iterator()}
}

// Next advances the iterator and reports whether a key was found.
func (si *SetIterator) Next() bool {
	return si.it.Next()
}

// Key returns the key at the iterator's current position. Fails with
// ErrIteratorExhausted if Next has not yet been called, or has returned
// false.
func (si *SetIterator) Key() ([]byte, error) {
	key, _, err := si.it.Get()
	return key, err
}

// EmptyValueSerializer serializes the struct{} values a Set stores as a
// single placeholder byte. A true zero-byte record would be
// indistinguishable, in the file format, from a variable-size (length
// prefixed) one, which storage.Mmap refuses to open; the one-byte record
// keeps a serialized Set's value table usable directly from
// storage.Mmap.
func EmptyValueSerializer() storage.Serializer {
	return storage.Serializer{
		FixedSize: 1,
		Serialize: func(interface{}) ([]byte, error) { return []byte{0}, nil },
	}
}

// EmptyValueDeserializer is the inverse of EmptyValueSerializer.
func EmptyValueDeserializer() storage.Deserializer {
	return storage.Deserializer{
		Deserialize: func([]byte) (interface{}, error) { return struct{}{}, nil },
	}
}
