package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ  DataType
		size int
	}{
		{Float32, 4},
		{Float16, 2},
		{BFloat16, 2},
		{Int8, 1},
		{UInt8, 1},
		{Int32, 4},
		{Int64, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.typ.Size(), tt.typ.String())
	}
}

func TestDataTypeBytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 24, Float32.Bytes(Shape{2, 3}))
	assert.Equal(t, 12, Float16.Bytes(Shape{2, 3}))
	assert.Equal(t, 4, Float32.Bytes(Shape{})) // scalar
}

func TestParseDataType(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"f32", "f16", "bf16", "i8", "u8", "i32", "i64"} {
		typ, err := ParseDataType(name)
		require.NoError(t, err)
		assert.Equal(t, name, typ.String())
	}

	_, err := ParseDataType("f64")
	require.Error(t, err)
}

func TestEncodeScalarsFloat32(t *testing.T) {
	t.Parallel()
	data, err := EncodeScalars(Float32, []float32{1.0, 2.0})
	require.NoError(t, err)
	// 1.0 and 2.0 in little-endian float32
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0x40}, data)
}

func TestEncodeScalarsFloat16(t *testing.T) {
	t.Parallel()
	data, err := EncodeScalars(Float16, []float32{1.0})
	require.NoError(t, err)
	// 1.0 in IEEE half precision is 0x3C00
	assert.Equal(t, []byte{0x00, 0x3c}, data)
}

func TestEncodeScalarsWidths(t *testing.T) {
	t.Parallel()
	vals := []float32{1, 2, 3}
	for _, typ := range []DataType{Float32, Float16, BFloat16, Int8, UInt8, Int32, Int64} {
		data, err := EncodeScalars(typ, vals)
		require.NoError(t, err)
		assert.Len(t, data, typ.Size()*len(vals), typ.String())
	}
}
