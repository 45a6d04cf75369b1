package array

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmalhotra/zarrcore/codec"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/selection"
	"github.com/rmalhotra/zarrcore/store"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

func newPlainArray(t *testing.T, shape, chunkShape []int64) (*Array, store.Store) {
	t.Helper()
	st := store.NewMemStore()
	meta := Metadata{
		Shape:            shape,
		DataType:         zarrtype.Int32,
		ChunkShape:       chunkShape,
		ChunkKeyEncoding: selection.DefaultEncoding("/"),
		Codecs:           []codec.Descriptor{{Name: "bytes"}},
	}
	a, err := Create(context.Background(), st, "arr", meta)
	require.NoError(t, err)
	return a, st
}

func newShardedArray(t *testing.T, shape, outerChunk, innerChunk []int64) (*Array, store.Store) {
	t.Helper()
	st := store.NewMemStore()
	meta := Metadata{
		Shape:            shape,
		DataType:         zarrtype.Int32,
		ChunkShape:       outerChunk,
		ChunkKeyEncoding: selection.DefaultEncoding("/"),
		Codecs: []codec.Descriptor{{
			Name: "sharding_indexed",
			Configuration: map[string]any{
				"chunk_shape": toAnySlice(innerChunk),
				"codecs":      []any{map[string]any{"name": "bytes"}},
			},
		}},
	}
	a, err := Create(context.Background(), st, "arr", meta)
	require.NoError(t, err)
	return a, st
}

func toAnySlice(xs []int64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func iotaInt32(shape []int64) *ndarray.Array {
	arr := ndarray.New(shape, zarrtype.Int32)
	b := arr.Bytes()
	for i := 0; i*4 < len(b); i++ {
		b[i*4] = byte(i + 1) // avoid zero, which collides with the default fill value
	}
	return arr
}

func TestArrayFreshReadIsFillValue(t *testing.T) {
	a, _ := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()

	got, err := a.Read(ctx, selection.Full(a.Shape()))
	require.NoError(t, err)
	assert.True(t, got.IsFill(zarrtype.ZeroFillValue(zarrtype.Int32)))
}

func TestArrayWriteReadRoundTrip(t *testing.T) {
	a, st := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()

	value := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))

	got, err := a.Read(ctx, selection.Full(a.Shape()))
	require.NoError(t, err)
	assert.Equal(t, value.Bytes(), got.Bytes())

	// Every chunk is non-fill, so all four chunk keys must exist.
	assert.Len(t, st.(*store.MemStore).Keys(), 4+1) // 4 chunks + zarr.json
}

func TestArrayPartialWriteOverlay(t *testing.T) {
	a, _ := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()

	full := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), full))

	overlay := ndarray.New([]int64{2, 2}, zarrtype.Int32)
	overlay.Bytes()[0] = 99
	sel := selection.Selection{{Start: 1, Stop: 3}, {Start: 1, Stop: 3}}
	require.NoError(t, a.Write(ctx, sel, overlay))

	got, err := a.Read(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, byte(99), got.Bytes()[0])

	// A corner well outside the overlay is unaffected.
	corner, err := a.Read(ctx, selection.Selection{{Start: 0, Stop: 1}, {Start: 0, Stop: 1}})
	require.NoError(t, err)
	assert.Equal(t, full.Bytes()[0:4], corner.Bytes())
}

func TestArrayWriteFillValueDeletesChunk(t *testing.T) {
	a, st := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()
	mem := st.(*store.MemStore)

	value := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))
	require.Len(t, mem.Keys(), 4+1)

	zeros := ndarray.New([]int64{2, 2}, zarrtype.Int32)
	require.NoError(t, a.Write(ctx, selection.Selection{{Start: 0, Stop: 2}, {Start: 0, Stop: 2}}, zeros))

	// One chunk went back to all-fill and should have been deleted.
	assert.Len(t, mem.Keys(), 3+1)
}

func TestArrayResizeDropsOutOfRangeChunks(t *testing.T) {
	a, st := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()
	mem := st.(*store.MemStore)

	value := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))
	require.Len(t, mem.Keys(), 4+1)

	require.NoError(t, a.Resize(ctx, []int64{2, 4}))
	assert.Equal(t, []int64{2, 4}, a.Shape())
	// The two chunks covering rows [2:4) are now out of range.
	assert.Len(t, mem.Keys(), 2+1)

	got, err := a.Read(ctx, selection.Full(a.Shape()))
	require.NoError(t, err)
	want := ndarray.New([]int64{2, 4}, zarrtype.Int32)
	ndarray.CopyRegion(want, []int64{0, 0}, value, []int64{0, 0}, []int64{2, 4})
	assert.Equal(t, want.Bytes(), got.Bytes())
}

func TestArrayRank0ScalarRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	meta := Metadata{
		Shape:            []int64{},
		DataType:         zarrtype.Float64,
		ChunkShape:       []int64{},
		ChunkKeyEncoding: selection.DefaultEncoding("/"),
		Codecs:           []codec.Descriptor{{Name: "bytes"}},
	}
	a, err := Create(context.Background(), st, "scalar", meta)
	require.NoError(t, err)
	ctx := context.Background()

	value := ndarray.New([]int64{}, zarrtype.Float64)
	value.Bytes()[0] = 7
	require.NoError(t, a.Write(ctx, selection.Selection{}, value))
	assert.Equal(t, []string{"scalar/c", "scalar/zarr.json"}, st.Keys())

	got, err := a.Read(ctx, selection.Selection{})
	require.NoError(t, err)
	assert.Equal(t, value.Bytes(), got.Bytes())
}

func TestArrayShardedWriteReadRoundTrip(t *testing.T) {
	a, _ := newShardedArray(t, []int64{4, 4}, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()

	value := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))

	got, err := a.Read(ctx, selection.Full(a.Shape()))
	require.NoError(t, err)
	assert.Equal(t, value.Bytes(), got.Bytes())
}

func TestArrayShardedPartialReadWrite(t *testing.T) {
	a, _ := newShardedArray(t, []int64{4, 4}, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()

	value := iotaInt32([]int64{4, 4})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))

	sel := selection.Selection{{Start: 1, Stop: 3}, {Start: 1, Stop: 3}}
	overlay := ndarray.New([]int64{2, 2}, zarrtype.Int32)
	overlay.Bytes()[0] = 55
	require.NoError(t, a.Write(ctx, sel, overlay))

	got, err := a.Read(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, byte(55), got.Bytes()[0])

	corner, err := a.Read(ctx, selection.Selection{{Start: 0, Stop: 1}, {Start: 0, Stop: 1}})
	require.NoError(t, err)
	assert.Equal(t, value.Bytes()[0:4], corner.Bytes())
}

func TestArrayScalarBroadcastWrite(t *testing.T) {
	a, st := newPlainArray(t, []int64{4, 4}, []int64{2, 2})
	ctx := context.Background()
	mem := st.(*store.MemStore)

	scalar := ndarray.New([]int64{}, zarrtype.Int32)
	scalar.Bytes()[0] = 7
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), scalar))

	got, err := a.Read(ctx, selection.Full(a.Shape()))
	require.NoError(t, err)
	sevens, err := zarrtype.NewFillValue(zarrtype.Int32, 7)
	require.NoError(t, err)
	assert.True(t, got.IsFill(sevens))

	// Writing the fill value back as a scalar elides every chunk.
	zero := ndarray.New([]int64{}, zarrtype.Int32)
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), zero))
	assert.Equal(t, []string{"arr/zarr.json"}, mem.Keys())
}

func TestArrayV2KeyEncoding(t *testing.T) {
	st := store.NewMemStore()
	meta := Metadata{
		Shape:            []int64{5},
		DataType:         zarrtype.Int32,
		ChunkShape:       []int64{3},
		ChunkKeyEncoding: selection.ChunkKeyEncoding{Name: selection.EncodingV2, Separator: "."},
		Codecs:           []codec.Descriptor{{Name: "bytes"}},
	}
	ctx := context.Background()
	a, err := Create(ctx, st, "arr", meta)
	require.NoError(t, err)

	value := ndarray.New([]int64{5}, zarrtype.Int32)
	for i, v := range []byte{10, 20, 30, 40, 50} {
		value.Bytes()[i*4] = v
	}
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))
	assert.Equal(t, []string{"arr/0", "arr/1", "arr/zarr.json"}, st.Keys())

	got, err := a.Read(ctx, selection.Selection{{Start: 1, Stop: 4}})
	require.NoError(t, err)
	assert.Equal(t, value.Bytes()[4:16], got.Bytes())
}

func TestArrayShardedWindowRead(t *testing.T) {
	a, st := newShardedArray(t, []int64{8, 8}, []int64{8, 8}, []int64{2, 2})
	ctx := context.Background()
	mem := st.(*store.MemStore)

	value := iotaInt32([]int64{8, 8})
	require.NoError(t, a.Write(ctx, selection.Full(a.Shape()), value))

	// One physical chunk key; its object is 16 sub-chunk bodies plus a
	// 16-record trailing index.
	keys := mem.Keys()
	require.Equal(t, []string{"arr/c/0/0", "arr/zarr.json"}, keys)
	raw, err := mem.Get(ctx, "arr/c/0/0", nil)
	require.NoError(t, err)
	assert.Equal(t, 8*8*4+16*16, len(raw))

	sel := selection.Selection{{Start: 3, Stop: 6}, {Start: 3, Stop: 6}}
	got, err := a.Read(ctx, sel)
	require.NoError(t, err)
	want := ndarray.New([]int64{3, 3}, zarrtype.Int32)
	ndarray.CopyRegion(want, []int64{0, 0}, value, []int64{3, 3}, []int64{3, 3})
	assert.Equal(t, want.Bytes(), got.Bytes())
}

func TestArrayOpenRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	meta := Metadata{
		Shape:            []int64{4},
		DataType:         zarrtype.Int32,
		ChunkShape:       []int64{2},
		ChunkKeyEncoding: selection.DefaultEncoding("/"),
		Codecs:           []codec.Descriptor{{Name: "bytes"}},
	}
	ctx := context.Background()
	created, err := Create(ctx, st, "arr", meta)
	require.NoError(t, err)

	value := iotaInt32([]int64{4})
	require.NoError(t, created.Write(ctx, selection.Full(created.Shape()), value))

	reopened, err := Open(ctx, st, "arr")
	require.NoError(t, err)
	got, err := reopened.Read(ctx, selection.Full(reopened.Shape()))
	require.NoError(t, err)
	assert.Equal(t, value.Bytes(), got.Bytes())
}
