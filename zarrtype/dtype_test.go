package zarrtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataTypeRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		dt   DataType
	}{
		{"bool", Bool},
		{"int8", Int8},
		{"int16", Int16},
		{"int32", Int32},
		{"int64", Int64},
		{"uint8", Uint8},
		{"uint16", Uint16},
		{"uint32", Uint32},
		{"uint64", Uint64},
		{"float32", Float32},
		{"float64", Float64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDataType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.dt, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestParseDataTypeUnknown(t *testing.T) {
	_, err := ParseDataType("complex128")
	require.Error(t, err)
}

func TestSize(t *testing.T) {
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 1, Int8.Size())
	assert.Equal(t, 2, Int16.Size())
	assert.Equal(t, 4, Int32.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
}

func TestIsIntegerIsFloat(t *testing.T) {
	assert.True(t, Int32.IsInteger())
	assert.False(t, Int32.IsFloat())
	assert.True(t, Float64.IsFloat())
	assert.False(t, Float64.IsInteger())
	assert.False(t, Bool.IsInteger())
}
