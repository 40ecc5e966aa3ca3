// Package storage implements the uniform base/check and value-table
// storage abstraction consumed by doublearray's Builder, Trie, Iterator
// and subtrie views, plus its three concrete backends and the on-disk
// file format.
package storage

import "golang.org/x/xerrors"

// Sentinel errors shared by every Storage implementation.
var (
	// ErrInvalidArgument is returned for malformed constructor input: a zero
	// density factor, an Mmap storage opened on a variable-size value
	// table, a content offset past the end of a file, or any mutating call
	// against a read-only storage.
	ErrInvalidArgument = xerrors.New("storage: invalid argument")

	// ErrIO is returned when an underlying reader, writer or file mapping
	// fails.
	ErrIO = xerrors.New("storage: io error")

	// ErrOutOfRange is returned when deserializing a file whose declared
	// lengths are inconsistent with its actual size.
	ErrOutOfRange = xerrors.New("storage: out of range")
)
