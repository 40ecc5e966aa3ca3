package storage

import "io"

// VacantCheck marks a base/check cell that belongs to no key.
const VacantCheck byte = 0xFF

// KeyTerminator marks the end of a key along an edge. Input keys must not
// contain this byte; callers needing arbitrary binary keys should route
// them through StringSerializer/BytesSerializer with feEscape set, which
// keeps it free of both reserved bytes.
const KeyTerminator byte = 0xFE

// Storage is the uniform contract consumed by the builder, lookup,
// subtrie and iterator logic in package doublearray. It is implemented by
// Memory, Shared and Mmap.
//
// Base/check cells are addressed by a dense, non-negative index. Base is
// the signed 24-bit value described in spec.md §3, sign-extended into an
// int32 on read. Reading past BaseCheckSize never errors: it reports the
// unset value (base 0, check VacantCheck), matching an unallocated cell.
type Storage interface {
	// BaseCheckSize returns the number of allocated base/check cells.
	BaseCheckSize() int

	// BaseAt returns the base of cell i, sign-extended from 24 bits. Out of
	// range reads return 0.
	BaseAt(i int) int32

	// SetBaseAt sets the base of cell i, growing the array if needed. Fails
	// with ErrInvalidArgument on a read-only storage.
	SetBaseAt(i int, base int32) error

	// CheckAt returns the check byte of cell i. Out of range reads return
	// VacantCheck.
	CheckAt(i int) byte

	// SetCheckAt sets the check byte of cell i, growing the array if
	// needed. Fails with ErrInvalidArgument on a read-only storage.
	SetCheckAt(i int, check byte) error

	// ValueCount returns the number of values in the value table.
	ValueCount() int

	// ValueAt returns the value at index k and whether it was ever set.
	ValueAt(k int) (interface{}, bool)

	// AddValueAt stores v at index k. Overwriting an already-set slot
	// fails with ErrInvalidArgument.
	AddValueAt(k int, v interface{}) error

	// FillingRate returns the fraction of non-vacant cells, always in
	// [0.0, 1.0].
	FillingRate() float64

	// Serialize writes this storage in the file format from spec.md §6.1.
	// Fails with ErrInvalidArgument on a read-only storage.
	Serialize(w io.Writer, ser Serializer) error

	// Clone returns a deep copy (Memory) or a cheap shared handle (Shared,
	// Mmap) to the same underlying data.
	Clone() (Storage, error)
}

// packCell packs a signed 24-bit base and an unsigned check byte into a
// single uint32 cell, matching the file format's (base<<8)|check layout.
func packCell(base int32, check byte) uint32 {
	return uint32(base)<<8 | uint32(check)
}

// unpackCell splits a cell into its sign-extended base and check byte.
func unpackCell(cell uint32) (base int32, check byte) {
	base = int32(cell) >> 8
	check = byte(cell)
	return base, check
}
