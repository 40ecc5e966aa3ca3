package storage

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// writeFile writes s in the binary format from spec.md §6.1:
//
//	uint32   base_check_byte_length
//	uint32[] base_check cells, (base<<8)|check each
//	uint32   value_count
//	uint32   fixed_value_size (0 means variable)
//	value records: either raw fixed_value_size bytes, or a uint32 length
//	  prefix followed by that many bytes, depending on fixed_value_size
//
// All integers are big-endian, following the teacher's own length-prefixed
// binary stream helpers (util.go's WriteBytes16/WriteBytes32) generalized
// to this fixed header.
func writeFile(w io.Writer, s Storage, ser Serializer) error {
	n := s.BaseCheckSize()
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(n*4))
	if _, err := w.Write(header); err != nil {
		return xerrors.Errorf("%w: writing base/check length: %v", ErrIO, err)
	}

	cellBuf := make([]byte, 4)
	for i := 0; i < n; i++ {
		base := s.BaseAt(i)
		check := s.CheckAt(i)
		binary.BigEndian.PutUint32(cellBuf, packCell(base, check))
		if _, err := w.Write(cellBuf); err != nil {
			return xerrors.Errorf("%w: writing cell %d: %v", ErrIO, i, err)
		}
	}

	valueCount := s.ValueCount()
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, uint32(valueCount))
	if _, err := w.Write(countBuf); err != nil {
		return xerrors.Errorf("%w: writing value count: %v", ErrIO, err)
	}

	sizeBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(sizeBuf, uint32(ser.FixedSize))
	if _, err := w.Write(sizeBuf); err != nil {
		return xerrors.Errorf("%w: writing fixed value size: %v", ErrIO, err)
	}

	for k := 0; k < valueCount; k++ {
		value, ok := s.ValueAt(k)
		if !ok {
			return xerrors.Errorf("%w: value at index %d was never set", ErrOutOfRange, k)
		}
		record, err := ser.Serialize(value)
		if err != nil {
			return xerrors.Errorf("serializing value %d: %w", k, err)
		}
		if ser.FixedSize > 0 {
			if len(record) != ser.FixedSize {
				return xerrors.Errorf("%w: value %d serialized to %d bytes, want %d", ErrInvalidArgument, k, len(record), ser.FixedSize)
			}
			if _, err := w.Write(record); err != nil {
				return xerrors.Errorf("%w: writing value %d: %v", ErrIO, k, err)
			}
			continue
		}
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(record)))
		if _, err := w.Write(lenBuf); err != nil {
			return xerrors.Errorf("%w: writing value %d length: %v", ErrIO, k, err)
		}
		if _, err := w.Write(record); err != nil {
			return xerrors.Errorf("%w: writing value %d: %v", ErrIO, k, err)
		}
	}
	return nil
}

// Load reads a file produced by writeFile/Memory.Serialize into a fresh
// Memory storage, decoding every value eagerly with des.
func Load(r io.Reader, des Deserializer) (*Memory, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, xerrors.Errorf("%w: reading base/check length: %v", ErrIO, err)
	}
	baseCheckByteLength := binary.BigEndian.Uint32(lenBuf[:])
	if baseCheckByteLength%4 != 0 {
		return nil, xerrors.Errorf("%w: base/check byte length %d is not a multiple of 4", ErrOutOfRange, baseCheckByteLength)
	}
	n := int(baseCheckByteLength / 4)

	baseCheck := make([]uint32, n)
	cellBuf := make([]byte, 4)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, cellBuf); err != nil {
			return nil, xerrors.Errorf("%w: reading cell %d: %v", ErrOutOfRange, i, err)
		}
		baseCheck[i] = binary.BigEndian.Uint32(cellBuf)
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, xerrors.Errorf("%w: reading value count: %v", ErrIO, err)
	}
	valueCount := int(binary.BigEndian.Uint32(countBuf[:]))

	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, xerrors.Errorf("%w: reading fixed value size: %v", ErrIO, err)
	}
	fixedValueSize := int(binary.BigEndian.Uint32(sizeBuf[:]))

	values := make([]valueSlot, valueCount)
	for k := 0; k < valueCount; k++ {
		var record []byte
		if fixedValueSize > 0 {
			record = make([]byte, fixedValueSize)
			if _, err := io.ReadFull(r, record); err != nil {
				return nil, xerrors.Errorf("%w: reading value %d: %v", ErrOutOfRange, k, err)
			}
		} else {
			var recLenBuf [4]byte
			if _, err := io.ReadFull(r, recLenBuf[:]); err != nil {
				return nil, xerrors.Errorf("%w: reading value %d length: %v", ErrOutOfRange, k, err)
			}
			recLen := binary.BigEndian.Uint32(recLenBuf[:])
			record = make([]byte, recLen)
			if _, err := io.ReadFull(r, record); err != nil {
				return nil, xerrors.Errorf("%w: reading value %d: %v", ErrOutOfRange, k, err)
			}
		}
		value, err := des.Deserialize(record)
		if err != nil {
			return nil, xerrors.Errorf("deserializing value %d: %w", k, err)
		}
		values[k] = valueSlot{value: value, set: true}
	}

	return &Memory{baseCheck: baseCheck, values: values}, nil
}
