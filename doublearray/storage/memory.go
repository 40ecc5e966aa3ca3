package storage

import (
	"io"

	"golang.org/x/xerrors"
)

// Memory is the baseline mutable Storage backend: a growable slice of
// packed base/check cells plus a value table. Growing writes past the
// current size fill newly added cells with {base: 0, check: VacantCheck}.
type Memory struct {
	baseCheck []uint32
	values    []valueSlot
}

type valueSlot struct {
	value interface{}
	set   bool
}

var _ Storage = (*Memory)(nil)

// NewMemory creates an empty in-memory storage: a single root cell
// {base: 0, check: VacantCheck} and no values, matching the empty-trie
// invariant from spec.md §4.7.
func NewMemory() *Memory {
	return &Memory{
		baseCheck: []uint32{packCell(0, VacantCheck)},
	}
}

func (m *Memory) growTo(i int) {
	if i < len(m.baseCheck) {
		return
	}
	grown := make([]uint32, i+1)
	copy(grown, m.baseCheck)
	for j := len(m.baseCheck); j <= i; j++ {
		grown[j] = packCell(0, VacantCheck)
	}
	m.baseCheck = grown
}

func (m *Memory) BaseCheckSize() int { return len(m.baseCheck) }

func (m *Memory) BaseAt(i int) int32 {
	if i < 0 || i >= len(m.baseCheck) {
		return 0
	}
	base, _ := unpackCell(m.baseCheck[i])
	return base
}

func (m *Memory) SetBaseAt(i int, base int32) error {
	if i < 0 {
		return xerrors.Errorf("%w: negative index %d", ErrInvalidArgument, i)
	}
	m.growTo(i)
	_, check := unpackCell(m.baseCheck[i])
	m.baseCheck[i] = packCell(base, check)
	return nil
}

func (m *Memory) CheckAt(i int) byte {
	if i < 0 || i >= len(m.baseCheck) {
		return VacantCheck
	}
	_, check := unpackCell(m.baseCheck[i])
	return check
}

func (m *Memory) SetCheckAt(i int, check byte) error {
	if i < 0 {
		return xerrors.Errorf("%w: negative index %d", ErrInvalidArgument, i)
	}
	m.growTo(i)
	base, _ := unpackCell(m.baseCheck[i])
	m.baseCheck[i] = packCell(base, check)
	return nil
}

func (m *Memory) ValueCount() int { return len(m.values) }

func (m *Memory) ValueAt(k int) (interface{}, bool) {
	if k < 0 || k >= len(m.values) {
		return nil, false
	}
	slot := m.values[k]
	return slot.value, slot.set
}

func (m *Memory) AddValueAt(k int, v interface{}) error {
	if k < 0 {
		return xerrors.Errorf("%w: negative value index %d", ErrInvalidArgument, k)
	}
	if k < len(m.values) && m.values[k].set {
		return xerrors.Errorf("%w: value at index %d already set", ErrInvalidArgument, k)
	}
	if k >= len(m.values) {
		grown := make([]valueSlot, k+1)
		copy(grown, m.values)
		m.values = grown
	}
	m.values[k] = valueSlot{value: v, set: true}
	return nil
}

// FillingRate returns 1 - (vacant cells / total cells).
func (m *Memory) FillingRate() float64 {
	if len(m.baseCheck) == 0 {
		return 0
	}
	vacant := 0
	for _, cell := range m.baseCheck {
		if byte(cell) == VacantCheck {
			vacant++
		}
	}
	return 1 - float64(vacant)/float64(len(m.baseCheck))
}

func (m *Memory) Serialize(w io.Writer, ser Serializer) error {
	return writeFile(w, m, ser)
}

// Clone returns a deep copy: the returned Memory shares no backing array
// with m.
func (m *Memory) Clone() (Storage, error) {
	clone := &Memory{
		baseCheck: append([]uint32(nil), m.baseCheck...),
		values:    append([]valueSlot(nil), m.values...),
	}
	return clone, nil
}
