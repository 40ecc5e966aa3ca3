package storage

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// Serializer turns an application value into its on-disk byte
// representation. FixedSize is 0 for variable-length records (length
// prefixed in the file format) or the fixed record width otherwise; Mmap
// storage requires a nonzero FixedSize.
type Serializer struct {
	Serialize func(value interface{}) ([]byte, error)
	FixedSize int
}

// Deserializer turns a byte slice read back from storage into an
// application value.
type Deserializer struct {
	Deserialize func(serialized []byte) (interface{}, error)
}

// Int32Serializer encodes a int32 value big-endian in 4 bytes.
func Int32Serializer() Serializer {
	return Serializer{
		FixedSize: 4,
		Serialize: func(value interface{}) ([]byte, error) {
			v, ok := value.(int32)
			if !ok {
				return nil, xerrors.Errorf("%w: value is not an int32", ErrInvalidArgument)
			}
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, uint32(v))
			return buf, nil
		},
	}
}

// Int32Deserializer decodes a big-endian 4-byte int32 value.
func Int32Deserializer() Deserializer {
	return Deserializer{
		Deserialize: func(serialized []byte) (interface{}, error) {
			if len(serialized) != 4 {
				return nil, xerrors.Errorf("%w: expected 4 bytes, got %d", ErrOutOfRange, len(serialized))
			}
			return int32(binary.BigEndian.Uint32(serialized)), nil
		},
	}
}

// Int64Serializer encodes an int64 value big-endian in 8 bytes.
func Int64Serializer() Serializer {
	return Serializer{
		FixedSize: 8,
		Serialize: func(value interface{}) ([]byte, error) {
			v, ok := value.(int64)
			if !ok {
				return nil, xerrors.Errorf("%w: value is not an int64", ErrInvalidArgument)
			}
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(v))
			return buf, nil
		},
	}
}

// Int64Deserializer decodes a big-endian 8-byte int64 value.
func Int64Deserializer() Deserializer {
	return Deserializer{
		Deserialize: func(serialized []byte) (interface{}, error) {
			if len(serialized) != 8 {
				return nil, xerrors.Errorf("%w: expected 8 bytes, got %d", ErrOutOfRange, len(serialized))
			}
			return int64(binary.BigEndian.Uint64(serialized)), nil
		},
	}
}

// fe-escape table, applied byte-for-byte to a string/byte-slice value so
// that the result never contains the key terminator (0xFE) or needs to be
// confused with the 0xFD escape marker itself:
//
//	0x00      -> 0xFE
//	0x01-0xFC -> unchanged
//	0xFD      -> 0xFD 0xFD
//	0xFE      -> 0xFD 0xFE
//	0xFF      -> unchanged
const escapeMarker byte = 0xFD

func escapeBytes(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for _, b := range src {
		switch b {
		case 0x00:
			out = append(out, KeyTerminator)
		case escapeMarker:
			out = append(out, escapeMarker, escapeMarker)
		case KeyTerminator:
			out = append(out, escapeMarker, KeyTerminator)
		default:
			out = append(out, b)
		}
	}
	return out
}

func unescapeBytes(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		b := src[i]
		switch b {
		case KeyTerminator:
			out = append(out, 0x00)
		case escapeMarker:
			i++
			if i >= len(src) {
				return nil, xerrors.Errorf("%w: truncated escape sequence", ErrOutOfRange)
			}
			switch src[i] {
			case escapeMarker:
				out = append(out, escapeMarker)
			case KeyTerminator:
				out = append(out, KeyTerminator)
			default:
				return nil, xerrors.Errorf("%w: invalid escape sequence 0xFD 0x%02X", ErrOutOfRange, src[i])
			}
		default:
			out = append(out, b)
		}
	}
	return out, nil
}

// StringSerializer serializes a string value as its raw bytes, optionally
// escaping bytes that would otherwise collide with the key terminator or
// the escape marker (see the table above). The record is variable-length.
func StringSerializer(feEscape bool) Serializer {
	return Serializer{
		FixedSize: 0,
		Serialize: func(value interface{}) ([]byte, error) {
			v, ok := value.(string)
			if !ok {
				return nil, xerrors.Errorf("%w: value is not a string", ErrInvalidArgument)
			}
			if feEscape {
				return escapeBytes([]byte(v)), nil
			}
			return []byte(v), nil
		},
	}
}

// StringDeserializer reverses StringSerializer.
func StringDeserializer(feEscape bool) Deserializer {
	return Deserializer{
		Deserialize: func(serialized []byte) (interface{}, error) {
			if !feEscape {
				return string(serialized), nil
			}
			raw, err := unescapeBytes(serialized)
			if err != nil {
				return nil, err
			}
			return string(raw), nil
		},
	}
}

// BytesSerializer is the []byte analog of StringSerializer.
func BytesSerializer(feEscape bool) Serializer {
	return Serializer{
		FixedSize: 0,
		Serialize: func(value interface{}) ([]byte, error) {
			v, ok := value.([]byte)
			if !ok {
				return nil, xerrors.Errorf("%w: value is not a []byte", ErrInvalidArgument)
			}
			if feEscape {
				return escapeBytes(v), nil
			}
			return v, nil
		},
	}
}

// BytesDeserializer is the []byte analog of StringDeserializer.
func BytesDeserializer(feEscape bool) Deserializer {
	return Deserializer{
		Deserialize: func(serialized []byte) (interface{}, error) {
			if !feEscape {
				return append([]byte(nil), serialized...), nil
			}
			return unescapeBytes(serialized)
		},
	}
}
