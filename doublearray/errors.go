package doublearray

import "golang.org/x/xerrors"

// ErrIteratorExhausted is returned by Iterator.Get after Next has returned
// false. A missing key or prefix is never an error: Find, Contains and
// Subtrie report it as an absent result instead.
var ErrIteratorExhausted = xerrors.New("doublearray: iterator exhausted")
