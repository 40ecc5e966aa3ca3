package storage

import (
	"encoding/binary"
	"io"
	"os"
	"sync/atomic"

	mmapgo "github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/xerrors"
)

// DefaultValueCacheCapacity is the default number of decoded values an
// Mmap storage keeps resident before evicting the least recently used
// entry.
const DefaultValueCacheCapacity = 10000

// mmapShared is the part of an Mmap handle that must survive for as long
// as any clone is open: the mapping itself and the open file descriptor
// backing it, reference counted the same way Shared counts Memory
// handles.
type mmapShared struct {
	file      *os.File
	region    mmapgo.MMap
	refCount  *atomic.Int32
	cellsAt   int64 // byte offset of the first base/check cell within region
	cellCount int
	valueAt   int64 // byte offset of the first value record within region
	valueN    int
	fixedSize int
}

// Mmap is a read-only, file-backed Storage. Base/check reads are served
// directly from the mapped region; values are decoded lazily from the
// trailing fixed-size record region and held in a bounded LRU cache, the
// way vechain-thor's cache.LRU and go-ethereum's node caches wrap
// hashicorp/golang-lru around an expensive loader.
//
// Every write method fails with ErrInvalidArgument: Mmap storage never
// mutates the file it opened.
type Mmap struct {
	shared        *mmapShared
	des           Deserializer
	cache         *lru.Cache[int, interface{}]
	cacheCapacity int
	evictions     *atomic.Int64
}

var _ Storage = (*Mmap)(nil)

// OpenMmap opens the double-array file at path and memory-maps its
// base/check region. contentOffset is the byte offset within the file
// where this trie's header begins (0 for a file dedicated to a single
// trie). cacheCapacity <= 0 selects DefaultValueCacheCapacity.
//
// Fails with ErrInvalidArgument when contentOffset is past end of file or
// the file declares a variable-size value table (fixed_value_size == 0),
// and with ErrOutOfRange when the file is shorter than its own header
// declares.
func OpenMmap(path string, contentOffset int64, des Deserializer, cacheCapacity int) (*Mmap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("%w: opening %s: %v", ErrIO, path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, xerrors.Errorf("%w: statting %s: %v", ErrIO, path, err)
	}
	fileSize := info.Size()
	if contentOffset > fileSize {
		file.Close()
		return nil, xerrors.Errorf("%w: content offset %d past end of file (size %d)", ErrInvalidArgument, contentOffset, fileSize)
	}

	region, err := mmapgo.Map(file, mmapgo.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, xerrors.Errorf("%w: mapping %s: %v", ErrIO, path, err)
	}

	shared, err := newMmapShared(file, region, contentOffset, fileSize)
	if err != nil {
		region.Unmap()
		file.Close()
		return nil, err
	}

	if cacheCapacity <= 0 {
		cacheCapacity = DefaultValueCacheCapacity
	}
	evictions := &atomic.Int64{}
	cache, err := lru.NewWithEvict[int, interface{}](cacheCapacity, func(int, interface{}) { evictions.Add(1) })
	if err != nil {
		region.Unmap()
		file.Close()
		return nil, xerrors.Errorf("%w: creating value cache: %v", ErrInvalidArgument, err)
	}

	return &Mmap{shared: shared, des: des, cache: cache, cacheCapacity: cacheCapacity, evictions: evictions}, nil
}

// EvictionCount reports the number of times this handle's value cache has
// evicted its least-recently-used entry to make room for a new one, for
// tests and diagnostics observing the LRU behavior spec.md §4.6 describes.
// It counts only this handle's own cache: Clone starts a clone at 0, since
// clones do not share cache state (see Clone).
func (m *Mmap) EvictionCount() int64 {
	return m.evictions.Load()
}

func newMmapShared(file *os.File, region mmapgo.MMap, contentOffset, fileSize int64) (*mmapShared, error) {
	readUint32 := func(at int64) (uint32, error) {
		if at+4 > int64(len(region)) {
			return 0, xerrors.Errorf("%w: truncated header at offset %d", ErrOutOfRange, at)
		}
		return binary.BigEndian.Uint32(region[at : at+4]), nil
	}

	baseCheckByteLength, err := readUint32(contentOffset)
	if err != nil {
		return nil, err
	}
	if baseCheckByteLength%4 != 0 {
		return nil, xerrors.Errorf("%w: base/check byte length %d is not a multiple of 4", ErrOutOfRange, baseCheckByteLength)
	}
	cellsAt := contentOffset + 4
	cellCount := int(baseCheckByteLength / 4)
	cellsEnd := cellsAt + int64(baseCheckByteLength)
	if cellsEnd > fileSize {
		return nil, xerrors.Errorf("%w: base/check region extends past end of file", ErrOutOfRange)
	}

	valueCount32, err := readUint32(cellsEnd)
	if err != nil {
		return nil, err
	}
	fixedValueSize32, err := readUint32(cellsEnd + 4)
	if err != nil {
		return nil, err
	}
	if fixedValueSize32 == 0 {
		return nil, xerrors.Errorf("%w: mmap storage requires a fixed value size, file declares variable-size values", ErrInvalidArgument)
	}

	valueAt := cellsEnd + 8
	valueCount := int(valueCount32)
	fixedSize := int(fixedValueSize32)
	valueEnd := valueAt + int64(valueCount)*int64(fixedSize)
	if valueEnd > fileSize {
		return nil, xerrors.Errorf("%w: value region extends past end of file", ErrOutOfRange)
	}

	refCount := &atomic.Int32{}
	refCount.Store(1)
	return &mmapShared{
		file:      file,
		region:    region,
		refCount:  refCount,
		cellsAt:   cellsAt,
		cellCount: cellCount,
		valueAt:   valueAt,
		valueN:    valueCount,
		fixedSize: fixedSize,
	}, nil
}

func (m *Mmap) BaseCheckSize() int { return m.shared.cellCount }

func (m *Mmap) BaseAt(i int) int32 {
	if i < 0 || i >= m.shared.cellCount {
		return 0
	}
	cell := binary.BigEndian.Uint32(m.cellBytes(i))
	base, _ := unpackCell(cell)
	return base
}

func (m *Mmap) CheckAt(i int) byte {
	if i < 0 || i >= m.shared.cellCount {
		return VacantCheck
	}
	cell := binary.BigEndian.Uint32(m.cellBytes(i))
	_, check := unpackCell(cell)
	return check
}

func (m *Mmap) cellBytes(i int) []byte {
	at := m.shared.cellsAt + int64(i)*4
	return m.shared.region[at : at+4]
}

func (m *Mmap) SetBaseAt(int, int32) error {
	return xerrors.Errorf("%w: mmap storage is read-only", ErrInvalidArgument)
}

func (m *Mmap) SetCheckAt(int, byte) error {
	return xerrors.Errorf("%w: mmap storage is read-only", ErrInvalidArgument)
}

func (m *Mmap) ValueCount() int { return m.shared.valueN }

func (m *Mmap) ValueAt(k int) (interface{}, bool) {
	if k < 0 || k >= m.shared.valueN {
		return nil, false
	}
	if v, ok := m.cache.Get(k); ok {
		return v, true
	}
	at := m.shared.valueAt + int64(k)*int64(m.shared.fixedSize)
	record := m.shared.region[at : at+int64(m.shared.fixedSize)]
	value, err := m.des.Deserialize(record)
	if err != nil {
		return nil, false
	}
	m.cache.Add(k, value)
	return value, true
}

func (m *Mmap) AddValueAt(int, interface{}) error {
	return xerrors.Errorf("%w: mmap storage is read-only", ErrInvalidArgument)
}

func (m *Mmap) FillingRate() float64 {
	n := m.shared.cellCount
	if n == 0 {
		return 0
	}
	vacant := 0
	for i := 0; i < n; i++ {
		if m.CheckAt(i) == VacantCheck {
			vacant++
		}
	}
	return 1 - float64(vacant)/float64(n)
}

func (m *Mmap) Serialize(io.Writer, Serializer) error {
	return xerrors.Errorf("%w: mmap storage is read-only", ErrInvalidArgument)
}

// Clone returns a handle sharing the same mapped region and file
// descriptor, with its own independent LRU cache view: cache entries are
// not shared across clones, since the per-clone cost of a re-decode is
// small and the mapped bytes it decodes from never change underneath it.
func (m *Mmap) Clone() (Storage, error) {
	m.shared.refCount.Add(1)
	evictions := &atomic.Int64{}
	cache, err := lru.NewWithEvict[int, interface{}](m.cacheCapacity, func(int, interface{}) { evictions.Add(1) })
	if err != nil {
		m.shared.refCount.Add(-1)
		return nil, xerrors.Errorf("%w: creating value cache: %v", ErrInvalidArgument, err)
	}
	return &Mmap{shared: m.shared, des: m.des, cache: cache, cacheCapacity: m.cacheCapacity, evictions: evictions}, nil
}

// Close releases this handle's reference to the mapping. The mapping and
// the underlying file are only unmapped/closed once every clone has
// called Close.
func (m *Mmap) Close() error {
	if m.shared.refCount.Add(-1) > 0 {
		return nil
	}
	if err := m.shared.region.Unmap(); err != nil {
		return xerrors.Errorf("%w: unmapping: %v", ErrIO, err)
	}
	if err := m.shared.file.Close(); err != nil {
		return xerrors.Errorf("%w: closing: %v", ErrIO, err)
	}
	return nil
}
