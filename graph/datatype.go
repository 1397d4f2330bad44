package graph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// DataType identifies the element type of a tensor buffer.
type DataType uint8

const (
	Float32 DataType = iota
	Float16
	BFloat16
	Int8
	UInt8
	Int32
	Int64
)

// Size returns the width of one element in bytes.
func (d DataType) Size() int {
	switch d {
	case Float32, Int32:
		return 4
	case Float16, BFloat16:
		return 2
	case Int8, UInt8:
		return 1
	case Int64:
		return 8
	default:
		return 0
	}
}

func (d DataType) String() string {
	switch d {
	case Float32:
		return "f32"
	case Float16:
		return "f16"
	case BFloat16:
		return "bf16"
	case Int8:
		return "i8"
	case UInt8:
		return "u8"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// ParseDataType maps a type name as used in .sgr sources to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "f32", "float32":
		return Float32, nil
	case "f16", "float16":
		return Float16, nil
	case "bf16", "bfloat16":
		return BFloat16, nil
	case "i8", "int8":
		return Int8, nil
	case "u8", "uint8":
		return UInt8, nil
	case "i32", "int32":
		return Int32, nil
	case "i64", "int64":
		return Int64, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

// Bytes returns the byte size of a tensor of this type with the given shape.
func (d DataType) Bytes(s Shape) int {
	return d.Size() * s.Elements()
}

// EncodeScalars packs float values into the little-endian byte layout of the
// given element type. Used when building constant payloads.
func EncodeScalars(d DataType, vals []float32) ([]byte, error) {
	out := make([]byte, 0, d.Size()*len(vals))
	switch d {
	case Float32:
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	case Float16:
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint16(out, float16.Fromfloat32(v).Bits())
		}
	case BFloat16:
		return bfloat16.EncodeFloat32(vals), nil
	case Int8, UInt8:
		for _, v := range vals {
			out = append(out, byte(int8(v)))
		}
	case Int32:
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint32(out, uint32(int32(v)))
		}
	case Int64:
		for _, v := range vals {
			out = binary.LittleEndian.AppendUint64(out, uint64(int64(v)))
		}
	default:
		return nil, fmt.Errorf("cannot encode scalars of type %s", d)
	}
	return out, nil
}
