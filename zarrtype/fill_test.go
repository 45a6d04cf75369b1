package zarrtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillValueFillAndIsFill(t *testing.T) {
	fv, err := NewFillValue(Int32, int32(7))
	require.NoError(t, err)

	buf := make([]byte, 4*4) // 4 int32 elements
	fv.Fill(buf)

	assert.True(t, fv.IsFill(buf))

	buf[5] = 0xFF
	assert.False(t, fv.IsFill(buf))
}

func TestZeroFillValueIsFillOnZeroedBuffer(t *testing.T) {
	fv := ZeroFillValue(Float64)
	buf := make([]byte, 8*3)
	assert.True(t, fv.IsFill(buf))
}

func TestFillValueScalar(t *testing.T) {
	fv, err := NewFillValue(Float32, float32(1.5))
	require.NoError(t, err)
	assert.InDelta(t, float32(1.5), fv.Scalar().(float32), 0.0001)

	bv, err := NewFillValue(Bool, true)
	require.NoError(t, err)
	assert.Equal(t, true, bv.Scalar())
}

func TestNewFillValueRejectsUnrepresentable(t *testing.T) {
	_, err := NewFillValue(Int8, "not a number")
	require.Error(t, err)
}
