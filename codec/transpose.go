package codec

import (
	"context"
	"fmt"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Transpose is the array-to-array codec that permutes an array's axes
// before the array-to-bytes stage lays it out flat. Plain index
// arithmetic over ndarray.Array, in the same spirit as that package's
// own CopyRegion.
type Transpose struct {
	order []int
}

func init() {
	RegisterCodec("transpose", newTranspose)
}

func newTranspose(configuration map[string]any) (Codec, error) {
	raw, ok := configuration["order"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: transpose configuration missing \"order\"", zarrerr.Malformed)
	}
	order := make([]int, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: transpose order[%d] is not a number", zarrerr.Malformed, i)
		}
		order[i] = int(f)
	}
	return &Transpose{order: order}, nil
}

func (t *Transpose) Name() string { return "transpose" }
func (t *Transpose) Class() Class { return ClassArrayToArray }
func (t *Transpose) Configuration() map[string]any {
	order := make([]any, len(t.order))
	for i, o := range t.order {
		order[i] = o
	}
	return map[string]any{"order": order}
}

func (t *Transpose) Encode(_ context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	arr, err := h.Array()
	if err != nil {
		return handle.None(), err
	}
	return handle.FromArray(t.permute(arr, t.order)), nil
}

func (t *Transpose) Decode(_ context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	arr, err := h.Array()
	if err != nil {
		return handle.None(), err
	}
	// The array-to-bytes stage wraps decoded bytes in the chunk's declared
	// shape, but the stored layout is the permuted one. Rewrap before
	// inverting the permutation so element order is preserved for
	// non-square chunks.
	if len(cctx.ChunkShape) == len(t.order) {
		encShape := permuteShape(cctx.ChunkShape, t.order)
		if !sameShape(arr.Shape(), encShape) {
			arr, err = ndarray.Wrap(encShape, arr.DataType(), arr.Bytes())
			if err != nil {
				return handle.None(), err
			}
		}
	}
	return handle.FromArray(t.permute(arr, inverseOrder(t.order))), nil
}

// permuteShape applies order to shape: result[i] = shape[order[i]].
func permuteShape(shape []int64, order []int) []int64 {
	out := make([]int64, len(order))
	for i, o := range order {
		out[i] = shape[o]
	}
	return out
}

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// permute returns a new array with arr's axes rearranged according to
// order: axis i of the result is axis order[i] of arr.
func (t *Transpose) permute(arr *ndarray.Array, order []int) *ndarray.Array {
	shape := arr.Shape()
	rank := len(shape)
	newShape := permuteShape(shape, order)

	out := ndarray.New(newShape, arr.DataType())
	if rank == 0 {
		copy(out.Bytes(), arr.Bytes())
		return out
	}

	idx := make([]int64, rank)
	srcIdx := make([]int64, rank)
	var walk func(dim int)
	walk = func(dim int) {
		if dim == rank {
			ndarray.CopyRegion(out, idx, arr, srcIdx, ones(rank))
			return
		}
		for i := int64(0); i < newShape[dim]; i++ {
			idx[dim] = i
			srcIdx[order[dim]] = i
			walk(dim + 1)
		}
	}
	walk(0)
	return out
}

func ones(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func inverseOrder(order []int) []int {
	inv := make([]int, len(order))
	for i, o := range order {
		inv[o] = i
	}
	return inv
}
