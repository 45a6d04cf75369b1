package array

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rmalhotra/zarrcore/codec"
	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/selection"
	"github.com/rmalhotra/zarrcore/store"
	"github.com/rmalhotra/zarrcore/zarrerr"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

// DefaultConcurrency bounds the number of chunks an Array fans its
// per-chunk work out to when no explicit cap is configured.
const DefaultConcurrency = 16

// metadataKey is the store key an Array's descriptor is persisted
// under, relative to the array's own key prefix.
const metadataKey = "zarr.json"

// Array is the engine: Read/Write/Resize over a logical dense array,
// driven by the indexer and codec pipeline against a Store, with
// per-chunk fan-out over arbitrary selections.
type Array struct {
	st         store.Store
	prefix     string
	meta       Metadata
	pipeline   *codec.Pipeline
	fill       zarrtype.FillValue
	concurrent int
}

// Open loads an Array's metadata from prefix+"/zarr.json" and validates
// its codec pipeline.
func Open(ctx context.Context, st store.Store, prefix string) (*Array, error) {
	raw, err := st.Get(ctx, key(prefix, metadataKey), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("array: %w: no metadata at %q", zarrerr.NotFound, prefix)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return newArray(st, prefix, meta)
}

// Create writes meta to prefix+"/zarr.json" and returns the opened
// Array. It is an error to overwrite an existing array at prefix.
func Create(ctx context.Context, st store.Store, prefix string, meta Metadata) (*Array, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	exists, err := st.Exists(ctx, key(prefix, metadataKey))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("array: %w: an array already exists at %q", zarrerr.Argument, prefix)
	}
	a, err := newArray(st, prefix, meta)
	if err != nil {
		return nil, err
	}
	if err := a.persistMetadata(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newArray(st store.Store, prefix string, meta Metadata) (*Array, error) {
	pipeline, err := meta.BuildPipeline()
	if err != nil {
		return nil, err
	}
	fill, err := meta.FillValue()
	if err != nil {
		return nil, err
	}
	return &Array{
		st:         st,
		prefix:     prefix,
		meta:       meta,
		pipeline:   pipeline,
		fill:       fill,
		concurrent: DefaultConcurrency,
	}, nil
}

// SetConcurrency overrides the per-call concurrency cap; 0 or negative
// means unbounded.
func (a *Array) SetConcurrency(n int) { a.concurrent = n }

// Shape returns the array's current logical shape.
func (a *Array) Shape() []int64 { return a.meta.Shape }

// DataType returns the array's element type.
func (a *Array) DataType() zarrtype.DataType { return a.meta.DataType }

func (a *Array) chunkContext() codec.ChunkContext {
	return codec.ChunkContext{ChunkShape: a.meta.ChunkShape, DataType: a.meta.DataType, FillValue: a.fill}
}

func (a *Array) chunkKey(coord selection.ChunkCoord) string {
	return key(a.prefix, a.meta.ChunkKeyEncoding.Key(coord))
}

func key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (a *Array) persistMetadata(ctx context.Context) error {
	raw, err := json.Marshal(a.meta)
	if err != nil {
		return err
	}
	return a.st.Set(ctx, key(a.prefix, metadataKey), raw, nil)
}

// Read materializes sel: it builds the indexer, fans per-chunk work out
// under the configured concurrency cap, and scatters each chunk's
// contribution into the output. Absent chunks read as fill value.
func (a *Array) Read(ctx context.Context, sel selection.Selection) (*ndarray.Array, error) {
	if err := selection.Validate(sel, a.meta.Shape); err != nil {
		return nil, err
	}
	outShape := sel.OutputShape()
	out := ndarray.New(outShape, a.meta.DataType)
	out.Fill(a.fill)

	var triples []selection.Triple
	for t := range selection.Iterate(sel, a.meta.Shape, a.meta.ChunkShape) {
		triples = append(triples, t)
	}

	err := runBounded(ctx, len(triples), a.concurrent, func(ctx context.Context, i int) error {
		return a.readOneChunk(ctx, triples[i], out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Array) readOneChunk(ctx context.Context, t selection.Triple, out *ndarray.Array) error {
	key := a.chunkKey(t.Chunk)
	cctx := a.chunkContext()

	dstOffset := axisStarts(t.OutChunk)
	regionShape := t.OutChunk.OutputShape()

	if a.pipeline.IsSharded() {
		exists, err := a.st.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			return nil // out already fill-initialized
		}
		h := handle.FromFile(a.st, key, nil)
		partial, err := a.pipeline.ShardCodec().DecodePartial(ctx, cctx, h, selection.Selection(t.InChunk))
		if err != nil {
			return err
		}
		ndarray.CopyRegion(out, dstOffset, partial, zerosOf(len(dstOffset)), regionShape)
		return nil
	}

	raw, err := a.st.Get(ctx, key, nil)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil // absent chunk: out already carries fill_value
	}
	decoded, err := a.pipeline.Decode(ctx, cctx, handle.FromBuffer(raw))
	if err != nil {
		return err
	}
	chunkArr, err := decoded.Array()
	if err != nil {
		return err
	}
	srcOffset := axisStarts(t.InChunk)
	ndarray.CopyRegion(out, dstOffset, chunkArr, srcOffset, regionShape)
	return nil
}

// Write stores value across sel. A rank-0 value is broadcast to the
// selection's shape; a value of a different data type is reinterpreted
// (same bit width) or cast (different bit width) first. Chunks whose
// post-write content is entirely fill value are deleted.
func (a *Array) Write(ctx context.Context, sel selection.Selection, value *ndarray.Array) error {
	if err := selection.Validate(sel, a.meta.Shape); err != nil {
		return err
	}
	wantShape := sel.OutputShape()
	if value.DataType() != a.meta.DataType {
		converted, err := zarrtype.Convert(value.DataType(), a.meta.DataType, value.Bytes())
		if err != nil {
			return err
		}
		v, err := ndarray.Wrap(value.Shape(), a.meta.DataType, converted)
		if err != nil {
			return err
		}
		value = v
	}
	if value.Rank() == 0 && len(wantShape) > 0 {
		value = ndarray.Broadcast(value, wantShape)
	}
	if !shapeEqual(value.Shape(), wantShape) {
		return fmt.Errorf("array: %w: value shape %v does not match selection shape %v", zarrerr.Argument, value.Shape(), wantShape)
	}

	var triples []selection.Triple
	for t := range selection.Iterate(sel, a.meta.Shape, a.meta.ChunkShape) {
		triples = append(triples, t)
	}

	return runBounded(ctx, len(triples), a.concurrent, func(ctx context.Context, i int) error {
		return a.writeOneChunk(ctx, triples[i], value)
	})
}

func (a *Array) writeOneChunk(ctx context.Context, t selection.Triple, value *ndarray.Array) error {
	key := a.chunkKey(t.Chunk)
	cctx := a.chunkContext()

	srcOffset := axisStarts(t.OutChunk)
	regionShape := t.OutChunk.OutputShape()

	total := selection.IsTotalSlice(t.InChunk, a.meta.ChunkShape)

	if total {
		chunk := ndarray.New(a.meta.ChunkShape, a.meta.DataType)
		ndarray.CopyRegion(chunk, zerosOf(len(a.meta.ChunkShape)), value, srcOffset, regionShape)
		if chunk.IsFill(a.fill) {
			return a.st.Delete(ctx, key)
		}
		encoded, err := a.pipeline.Encode(ctx, cctx, handle.FromArray(chunk))
		if err != nil {
			return err
		}
		raw, err := encoded.Bytes(ctx)
		if err != nil {
			return err
		}
		return a.st.Set(ctx, key, raw, nil)
	}

	if a.pipeline.IsSharded() {
		sub := ndarray.New(t.InChunk.OutputShape(), a.meta.DataType)
		ndarray.CopyRegion(sub, zerosOf(len(t.InChunk)), value, srcOffset, regionShape)
		return a.pipeline.ShardCodec().EncodePartial(ctx, cctx, a.st, key, sub, selection.Selection(t.InChunk))
	}

	// Non-sharded partial write: read-modify-write.
	raw, err := a.st.Get(ctx, key, nil)
	var chunk *ndarray.Array
	if err != nil {
		return err
	}
	if raw == nil {
		chunk = ndarray.New(a.meta.ChunkShape, a.meta.DataType)
		chunk.Fill(a.fill)
	} else {
		decoded, err := a.pipeline.Decode(ctx, cctx, handle.FromBuffer(raw))
		if err != nil {
			return err
		}
		chunk, err = decoded.Array()
		if err != nil {
			return err
		}
	}

	dstOffset := axisStarts(t.InChunk)
	ndarray.CopyRegion(chunk, dstOffset, value, srcOffset, regionShape)

	if chunk.IsFill(a.fill) {
		return a.st.Delete(ctx, key)
	}
	encoded, err := a.pipeline.Encode(ctx, cctx, handle.FromArray(chunk))
	if err != nil {
		return err
	}
	out, err := encoded.Bytes(ctx)
	if err != nil {
		return err
	}
	return a.st.Set(ctx, key, out, nil)
}

// Resize changes the array's shape in place (same rank): chunks fully
// outside the new shape are deleted concurrently, then metadata is
// rewritten.
func (a *Array) Resize(ctx context.Context, newShape []int64) error {
	if len(newShape) != len(a.meta.Shape) {
		return fmt.Errorf("array: %w: resize must preserve rank: have %d, want %d", zarrerr.Argument, len(a.meta.Shape), len(newShape))
	}

	oldPerAxis := selection.NumChunksPerAxis(a.meta.Shape, a.meta.ChunkShape)
	newPerAxis := selection.NumChunksPerAxis(newShape, a.meta.ChunkShape)

	var dropped []selection.ChunkCoord
	walkChunkGrid(oldPerAxis, make(selection.ChunkCoord, len(oldPerAxis)), 0, func(coord selection.ChunkCoord) {
		if anyAxisShrunk(newPerAxis, coord) {
			dropped = append(dropped, append(selection.ChunkCoord(nil), coord...))
		}
	})

	if err := runBounded(ctx, len(dropped), a.concurrent, func(ctx context.Context, i int) error {
		return a.st.Delete(ctx, a.chunkKey(dropped[i]))
	}); err != nil {
		return err
	}

	a.meta.Shape = newShape
	return a.persistMetadata(ctx)
}

// walkChunkGrid enumerates every chunk coordinate of a grid with
// perAxis chunks per dimension, row-major, calling visit once per
// coordinate. coord is reused across calls; visit must copy it if it
// needs to retain it.
func walkChunkGrid(perAxis []int64, coord selection.ChunkCoord, dim int, visit func(selection.ChunkCoord)) {
	if dim == len(perAxis) {
		visit(coord)
		return
	}
	for c := int64(0); c < perAxis[dim]; c++ {
		coord[dim] = c
		walkChunkGrid(perAxis, coord, dim+1, visit)
	}
}

// anyAxisShrunk reports whether coord falls outside the grid described
// by newPerAxis in any dimension.
func anyAxisShrunk(newPerAxis []int64, coord selection.ChunkCoord) bool {
	for i, c := range coord {
		if c >= newPerAxis[i] {
			return true
		}
	}
	return false
}

func axisStarts(sel selection.Selection) []int64 {
	out := make([]int64, len(sel))
	for i, ax := range sel {
		out[i] = ax.Start
	}
	return out
}

func zerosOf(n int) []int64 { return make([]int64, n) }

func shapeEqual(a, b []int64) bool {
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
