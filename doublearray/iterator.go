package doublearray

import "github.com/iotaledger/da.go/doublearray/storage"

// Iterator performs a depth-first walk of a Trie (or Subtrie),
// implemented as an explicit stack rather than a goroutine/channel
// pipeline: the stack holds (cell, key-so-far) frames, pushed in
// descending byte order 0xFE..0x00 so that the LIFO pop order comes out
// ascending, per spec.md §4.9. Because the terminator edge (0xFE) is
// pushed first, a stored key that is a prefix of other stored keys is
// yielded after them ("UTO" before "UT"); keys with no prefix relation
// come out in ascending byte order. Byte value 0xFF is never a valid
// edge (it collides with storage.VacantCheck) and is never tested.
type Iterator struct {
	storage storage.Storage
	stack   []iteratorFrame
	key     []byte
	value   interface{}
	valid   bool
}

type iteratorFrame struct {
	cell int
	key  []byte
}

// Iterator returns a fresh iterator positioned before the first entry;
// call Next to advance it.
func (t *Trie) Iterator() *Iterator {
	return &Iterator{
		storage: t.storage,
		stack:   []iteratorFrame{{cell: t.root, key: nil}},
	}
}

// Next advances the iterator to the next key, in the order described on
// Iterator, and reports whether one was found. Once Next returns false the iterator is
// exhausted and every subsequent call also returns false.
func (it *Iterator) Next() bool {
	for len(it.stack) > 0 {
		frame := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if it.storage.CheckAt(frame.cell) == storage.KeyTerminator {
			it.key = frame.key
			it.value, _ = it.storage.ValueAt(int(it.storage.BaseAt(frame.cell)))
			it.valid = true
			return true
		}

		base := it.storage.BaseAt(frame.cell)
		for b := int(storage.KeyTerminator); b >= 0; b-- {
			edge := byte(b)
			child := int(base) + b
			if child < 0 || it.storage.CheckAt(child) != edge {
				continue
			}
			childKey := frame.key
			if edge != storage.KeyTerminator {
				childKey = append(append([]byte(nil), frame.key...), edge)
			}
			it.stack = append(it.stack, iteratorFrame{cell: child, key: childKey})
		}
	}
	it.valid = false
	return false
}

// Get returns the key and value at the iterator's current position.
// Fails with ErrIteratorExhausted if Next has not yet been called, or
// has returned false.
func (it *Iterator) Get() ([]byte, interface{}, error) {
	if !it.valid {
		return nil, nil, ErrIteratorExhausted
	}
	return it.key, it.value, nil
}
