// Package ndarray provides the minimal dense, row-major array
// representation the codec pipeline and array engine pass between
// stages.
//
// This is deliberately not a general numeric-array library: no views,
// no strided slicing, no lazy evaluation — just a flat byte buffer plus
// a shape and data type, with the handful of operations the engine
// needs: scatter/gather against a selection, and fill-value painting.
package ndarray

import (
	"fmt"

	"github.com/rmalhotra/zarrcore/zarrerr"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

// Array is a dense, row-major, fixed-shape buffer of one zarrtype.DataType.
type Array struct {
	shape []int64
	dtype zarrtype.DataType
	data  []byte
}

// New allocates a zero-valued array of the given shape and data type.
func New(shape []int64, dtype zarrtype.DataType) *Array {
	n := NumElements(shape)
	return &Array{
		shape: append([]int64(nil), shape...),
		dtype: dtype,
		data:  make([]byte, n*int64(dtype.Size())),
	}
}

// Wrap builds an Array directly from an existing row-major buffer. len(data)
// must equal NumElements(shape) * dtype.Size().
func Wrap(shape []int64, dtype zarrtype.DataType, data []byte) (*Array, error) {
	want := NumElements(shape) * int64(dtype.Size())
	if int64(len(data)) != want {
		return nil, fmt.Errorf("ndarray: %w: expected %d bytes for shape %v dtype %s, got %d", zarrerr.Malformed, want, shape, dtype, len(data))
	}
	return &Array{shape: append([]int64(nil), shape...), dtype: dtype, data: data}, nil
}

// NumElements returns the product of shape, 1 for a rank-0 (scalar) shape.
func NumElements(shape []int64) int64 {
	n := int64(1)
	for _, s := range shape {
		n *= s
	}
	return n
}

// Shape returns the array's dimensions.
func (a *Array) Shape() []int64 { return append([]int64(nil), a.shape...) }

// DataType returns the array's element type.
func (a *Array) DataType() zarrtype.DataType { return a.dtype }

// Bytes returns the array's row-major backing buffer. Callers must not
// retain it past a subsequent mutation of a.
func (a *Array) Bytes() []byte { return a.data }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// strides returns the row-major element strides for shape.
func strides(shape []int64) []int64 {
	s := make([]int64, len(shape))
	stride := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

// Fill paints the fill value across every element of a.
func (a *Array) Fill(fv zarrtype.FillValue) {
	fv.Fill(a.data)
}

// IsFill reports whether every element of a equals fv.
func (a *Array) IsFill(fv zarrtype.FillValue) bool {
	return fv.IsFill(a.data)
}

// Broadcast expands a rank-0 (single-element) array to the given shape by
// repeating its element. The doubling copy mirrors zarrtype.FillValue.Fill.
func Broadcast(scalar *Array, shape []int64) *Array {
	out := New(shape, scalar.dtype)
	size := scalar.dtype.Size()
	if len(out.data) == 0 {
		return out
	}
	copy(out.data[:size], scalar.data[:size])
	for filled := size; filled < len(out.data); filled *= 2 {
		n := filled
		if n > len(out.data)-filled {
			n = len(out.data) - filled
		}
		copy(out.data[filled:filled+n], out.data[:n])
	}
	return out
}

// Clone returns an independent deep copy of a.
func (a *Array) Clone() *Array {
	data := make([]byte, len(a.data))
	copy(data, a.data)
	return &Array{shape: append([]int64(nil), a.shape...), dtype: a.dtype, data: data}
}
