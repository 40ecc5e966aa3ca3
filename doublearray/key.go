package doublearray

import "github.com/iotaledger/da.go/doublearray/storage"

// appendTerminator returns key with the trie's key-terminator byte
// appended, the internal representation the builder, Find and the
// iterator all walk. Callers must never pass a key already containing
// storage.KeyTerminator; Build does not check for it, matching spec.md's
// "caller's responsibility" wording for the reserved bytes.
func appendTerminator(key []byte) []byte {
	terminated := make([]byte, len(key)+1)
	copy(terminated, key)
	terminated[len(key)] = storage.KeyTerminator
	return terminated
}
