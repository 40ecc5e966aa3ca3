package storage

import (
	"io"
	"sync/atomic"
)

// Shared wraps a *Memory behind a reference count so a subtrie and its
// parent trie can share the same base/check array without copying it,
// while each still owns an independent Trie handle. Clone increments the
// count and returns a new Shared pointing at the same underlying Memory;
// reads and writes are forwarded to it.
//
// The underlying Memory still requires external exclusion for writes
// (spec.md §5): Shared only manages the lifetime of the pointer, not
// concurrent mutation.
type Shared struct {
	mem      *Memory
	refCount *atomic.Int32
}

var _ Storage = (*Shared)(nil)

// NewShared wraps mem in a Shared handle with an initial reference count
// of 1.
func NewShared(mem *Memory) *Shared {
	count := &atomic.Int32{}
	count.Store(1)
	return &Shared{mem: mem, refCount: count}
}

func (s *Shared) BaseCheckSize() int                    { return s.mem.BaseCheckSize() }
func (s *Shared) BaseAt(i int) int32                    { return s.mem.BaseAt(i) }
func (s *Shared) SetBaseAt(i int, base int32) error     { return s.mem.SetBaseAt(i, base) }
func (s *Shared) CheckAt(i int) byte                    { return s.mem.CheckAt(i) }
func (s *Shared) SetCheckAt(i int, check byte) error    { return s.mem.SetCheckAt(i, check) }
func (s *Shared) ValueCount() int                       { return s.mem.ValueCount() }
func (s *Shared) ValueAt(k int) (interface{}, bool)     { return s.mem.ValueAt(k) }
func (s *Shared) AddValueAt(k int, v interface{}) error { return s.mem.AddValueAt(k, v) }
func (s *Shared) FillingRate() float64                  { return s.mem.FillingRate() }

func (s *Shared) Serialize(w io.Writer, ser Serializer) error {
	return s.mem.Serialize(w, ser)
}

// Clone bumps the reference count and returns a handle to the same
// underlying Memory: no base/check or value data is copied.
func (s *Shared) Clone() (Storage, error) {
	s.refCount.Add(1)
	return &Shared{mem: s.mem, refCount: s.refCount}, nil
}

// RefCount reports the current number of live handles sharing the
// underlying Memory, for diagnostics and tests.
func (s *Shared) RefCount() int32 {
	return s.refCount.Load()
}
