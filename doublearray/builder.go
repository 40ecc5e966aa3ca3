package doublearray

import (
	"sort"

	"github.com/iotaledger/da.go/doublearray/storage"
	"golang.org/x/xerrors"
)

// Entry is one (key, value) pair fed to Build. Keys must be unique and the
// slice must already be sorted by key ascending; Build rejects a duplicate
// or out-of-order key with storage.ErrInvalidArgument instead of
// deduplicating or sorting the input itself.
type Entry struct {
	Key   []byte
	Value interface{}
}

// item tracks one entry's progress through the recursive placement walk:
// path is the suffix of the terminated key not yet consumed by an edge
// walked so far.
type item struct {
	path  []byte
	entry Entry
}

// buildState carries the mutable cursor shared across the whole
// recursive placement walk, so the free-cell search never restarts from
// the beginning of the array for each node.
type buildState struct {
	storage      *storage.Memory
	density      int
	cursor       int
	nextValueIdx int
	observers    BuildingObserverSet
}

// Build constructs a fresh in-memory double-array trie from entries,
// which must be sorted ascending by Key. An empty entries slice produces
// the empty-trie root cell, matching the invariant in spec.md §4.7.
//
// Fails with storage.ErrInvalidArgument if cfg.DensityFactor is not a
// positive integer, or if two adjacent entries are not in strictly
// ascending key order, an equal pair included (Build refuses silently
// wrong output rather than building over a duplicate).
func Build(entries []Entry, cfg Config) (*storage.Memory, error) {
	if cfg.DensityFactor < 1 {
		return nil, xerrors.Errorf("%w: density factor %d must be a positive integer", storage.ErrInvalidArgument, cfg.DensityFactor)
	}
	for i := 1; i < len(entries); i++ {
		if string(entries[i-1].Key) >= string(entries[i].Key) {
			return nil, xerrors.Errorf("%w: entries must be strictly sorted and unique by key", storage.ErrInvalidArgument)
		}
	}

	mem := storage.NewMemory()
	state := &buildState{
		storage:   mem,
		density:   cfg.DensityFactor,
		cursor:    1,
		observers: cfg.BuildingObserverSet,
	}

	items := make([]item, len(entries))
	for i, e := range entries {
		items[i] = item{path: appendTerminator(e.Key), entry: e}
	}

	if len(items) > 0 {
		if err := state.place(0, items); err != nil {
			return nil, err
		}
	}
	state.observers.done()
	return mem, nil
}

// place assigns a base to parent so that every item in items can be
// reached by walking its next path byte as a check-byte edge from
// parent, then recurses into each non-terminal child.
func (s *buildState) place(parent int, items []item) error {
	groups := groupByFirstByte(items)

	base := s.findBase(groups)
	if err := s.storage.SetBaseAt(parent, int32(base)); err != nil {
		return xerrors.Errorf("placing node %d: %w", parent, err)
	}

	// Every child cell is claimed before any recursion, so no descendant's
	// base search can take a sibling's still-vacant cell.
	for _, g := range groups {
		if err := s.storage.SetCheckAt(base+int(g.b), g.b); err != nil {
			return xerrors.Errorf("placing edge 0x%02X from node %d: %w", g.b, parent, err)
		}
	}

	for _, g := range groups {
		child := base + int(g.b)

		if g.b == storage.KeyTerminator {
			entry := g.items[0].entry
			valueIdx := s.nextValueIdx
			s.nextValueIdx++
			s.observers.adding(entry.Key, int32(valueIdx))
			if err := s.storage.SetBaseAt(child, int32(valueIdx)); err != nil {
				return err
			}
			if err := s.storage.AddValueAt(valueIdx, entry.Value); err != nil {
				return xerrors.Errorf("storing value for key %q: %w", entry.Key, err)
			}
			continue
		}

		childItems := make([]item, len(g.items))
		for i, it := range g.items {
			childItems[i] = item{path: it.path[1:], entry: it.entry}
		}
		if err := s.place(child, childItems); err != nil {
			return err
		}
	}
	return nil
}

type byteGroup struct {
	b     byte
	items []item
}

// groupByFirstByte partitions items by their next unconsumed byte,
// returning groups ordered ascending by that byte. Each item's path is
// never empty: Build always appends a terminator, so the shortest
// possible path is the single terminator byte.
func groupByFirstByte(items []item) []byteGroup {
	byByte := make(map[byte][]item)
	var bytes []byte
	for _, it := range items {
		b := it.path[0]
		if _, ok := byByte[b]; !ok {
			bytes = append(bytes, b)
		}
		byByte[b] = append(byByte[b], it)
	}
	sort.Slice(bytes, func(i, j int) bool { return bytes[i] < bytes[j] })

	groups := make([]byteGroup, len(bytes))
	for i, b := range bytes {
		groups[i] = byteGroup{b: b, items: byByte[b]}
	}
	return groups
}

// findBase returns the first candidate base, starting from the shared
// cursor and stepping by the search stride, such that base+g.b is vacant
// for every group g, and moves the cursor past it so that no two nodes
// share a base (a shared base would let one node's children pass the
// check-byte test when walked from the other). The search
// stride is scaled by the configured density factor: a higher factor
// checks every candidate exhaustively (tight packing, slower build); a
// lower factor skips ahead in coarser strides (loose packing, faster
// build). spec.md §9 leaves the exact candidate-search strategy to the
// implementer, requiring only determinism and factor monotonicity.
func (s *buildState) findBase(groups []byteGroup) int {
	stride := 256 / s.density
	if stride < 1 {
		stride = 1
	}

	for candidate := s.cursor; ; candidate += stride {
		if s.canPlace(candidate, groups) {
			s.cursor = candidate + 1
			return candidate
		}
	}
}

func (s *buildState) canPlace(base int, groups []byteGroup) bool {
	for _, g := range groups {
		child := base + int(g.b)
		if child < 0 {
			return false
		}
		if s.storage.CheckAt(child) != storage.VacantCheck {
			return false
		}
	}
	return true
}
