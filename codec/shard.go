package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/selection"
	"github.com/rmalhotra/zarrcore/store"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// indexRecordSize is the byte width of one (offset, length) entry in a
// shard's trailing index: two little-endian uint64s.
const indexRecordSize = 16

// absentSentinel marks a sub-chunk with no stored bytes: never written,
// or entirely fill value.
const absentSentinel = math.MaxUint64

// Shard is the sharding_indexed codec: it is always the sole codec of
// its outer pipeline and is itself a nested pipeline over an inner grid
// of sub-chunks. The physical object is the concatenation of each
// present sub-chunk's encoded bytes followed by a fixed-size trailing
// index of (offset, length) records in row-major sub-chunk order.
type Shard struct {
	innerChunkShape []int64
	inner           *Pipeline
}

func init() {
	RegisterCodec("sharding_indexed", newShard)
}

func newShard(configuration map[string]any) (Codec, error) {
	rawShape, ok := configuration["chunk_shape"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: sharding_indexed configuration missing \"chunk_shape\"", zarrerr.Malformed)
	}
	shape := make([]int64, len(rawShape))
	for i, v := range rawShape {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: sharding_indexed chunk_shape[%d] is not a number", zarrerr.Malformed, i)
		}
		shape[i] = int64(f)
	}

	rawCodecs, ok := configuration["codecs"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: sharding_indexed configuration missing \"codecs\"", zarrerr.Malformed)
	}
	inner := make([]Codec, 0, len(rawCodecs))
	for _, rc := range rawCodecs {
		m, ok := rc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: sharding_indexed codec entry is not an object", zarrerr.Malformed)
		}
		name, _ := m["name"].(string)
		cfg, _ := m["configuration"].(map[string]any)
		c, err := Build(name, cfg)
		if err != nil {
			return nil, err
		}
		inner = append(inner, c)
	}
	pipeline, err := NewPipeline(inner)
	if err != nil {
		return nil, fmt.Errorf("sharding_indexed: inner pipeline: %w", err)
	}

	return &Shard{innerChunkShape: shape, inner: pipeline}, nil
}

func (s *Shard) Name() string { return "sharding_indexed" }
func (s *Shard) Class() Class { return ClassArrayToBytes }

// Configuration reports the inner chunk shape and inner codec chain in
// the form newShard reads back from zarr.json.
func (s *Shard) Configuration() map[string]any {
	shape := make([]any, len(s.innerChunkShape))
	for i, v := range s.innerChunkShape {
		shape[i] = v
	}
	inner := make([]any, 0, len(s.inner.codecs))
	for _, d := range s.inner.Descriptors() {
		inner = append(inner, map[string]any{"name": d.Name, "configuration": d.Configuration})
	}
	return map[string]any{"chunk_shape": shape, "codecs": inner}
}

// Encode implements the full (non-partial) path: it is used when the
// engine writes a whole outer chunk in one shot.
func (s *Shard) Encode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	arr, err := h.Array()
	if err != nil {
		return handle.None(), err
	}
	n, err := s.numSubChunks(cctx.ChunkShape)
	if err != nil {
		return handle.None(), err
	}

	subs := make([][]byte, n)
	present := make([]bool, n)
	innerCtx := ChunkContext{ChunkShape: s.innerChunkShape, DataType: cctx.DataType, FillValue: cctx.FillValue}

	for idx := 0; idx < n; idx++ {
		coord := s.coordForIndex(idx, cctx.ChunkShape)
		sub := ndarray.New(s.innerChunkShape, cctx.DataType)
		ndarray.CopyRegion(sub, zeros(len(coord)), arr, s.subChunkOrigin(coord), s.innerChunkShape)
		if sub.IsFill(cctx.FillValue) {
			continue
		}
		encoded, err := s.inner.Encode(ctx, innerCtx, handle.FromArray(sub))
		if err != nil {
			return handle.None(), fmt.Errorf("sharding_indexed: encoding sub-chunk %v: %w", coord, err)
		}
		b, err := encoded.Bytes(ctx)
		if err != nil {
			return handle.None(), err
		}
		subs[idx] = b
		present[idx] = true
	}

	return handle.FromBuffer(assembleShard(subs, present)), nil
}

// Decode materializes the whole outer chunk: parse the trailing index,
// decode each present sub-chunk through the inner pipeline, scatter.
func (s *Shard) Decode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	n, err := s.numSubChunks(cctx.ChunkShape)
	if err != nil {
		return handle.None(), err
	}
	index, err := parseShardIndex(raw, n)
	if err != nil {
		return handle.None(), err
	}

	out := ndarray.New(cctx.ChunkShape, cctx.DataType)
	out.Fill(cctx.FillValue)
	innerCtx := ChunkContext{ChunkShape: s.innerChunkShape, DataType: cctx.DataType}

	for idx, rec := range index {
		if rec.absent() {
			continue
		}
		coord := s.coordForIndex(idx, cctx.ChunkShape)
		sub, err := rec.slice(raw)
		if err != nil {
			return handle.None(), err
		}
		decoded, err := s.inner.Decode(ctx, innerCtx, handle.FromBuffer(sub))
		if err != nil {
			return handle.None(), fmt.Errorf("sharding_indexed: decoding sub-chunk %v: %w", coord, err)
		}
		subArr, err := decoded.Array()
		if err != nil {
			return handle.None(), err
		}
		ndarray.CopyRegion(out, s.subChunkOrigin(coord), subArr, zeros(len(coord)), s.innerChunkShape)
	}

	return handle.FromArray(out), nil
}

// DecodePartial reads a sub-rectangle of the outer chunk without
// touching the whole object: only the trailing index and the sub-chunks
// intersecting outerSelection are fetched, each by its own concurrent
// byte-range read against h's store reference.
func (s *Shard) DecodePartial(ctx context.Context, cctx ChunkContext, h handle.Handle, outerSelection selection.Selection) (*ndarray.Array, error) {
	st, key, _, err := h.File()
	if err != nil {
		return nil, err
	}
	n, err := s.numSubChunks(cctx.ChunkShape)
	if err != nil {
		return nil, err
	}

	found, index, err := s.readIndex(ctx, st, key, n)
	if err != nil {
		return nil, err
	}
	out := ndarray.New(outerSelection.OutputShape(), cctx.DataType)
	out.Fill(cctx.FillValue)
	if !found {
		return out, nil // absent object: entirely fill
	}

	numChunksPerAxis := selection.NumChunksPerAxis(cctx.ChunkShape, s.innerChunkShape)
	var triples []selection.Triple
	for t := range selection.Iterate(outerSelection, cctx.ChunkShape, s.innerChunkShape) {
		triples = append(triples, t)
	}

	innerCtx := ChunkContext{ChunkShape: s.innerChunkShape, DataType: cctx.DataType}
	results := make([][]byte, len(triples))

	group, gctx := errgroup.WithContext(ctx)
	for i, t := range triples {
		i, t := i, t
		idx := s.linearIndex(t.Chunk, numChunksPerAxis)
		rec := index[idx]
		if rec.absent() {
			continue
		}
		group.Go(func() error {
			rng := &store.ByteRange{Start: ptr(int64(rec.offset)), End: ptr(int64(rec.offset + rec.length))}
			b, err := st.Get(gctx, key, rng)
			if err != nil {
				return fmt.Errorf("sharding_indexed: reading sub-chunk %v: %w", t.Chunk, err)
			}
			results[i] = b
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, t := range triples {
		if results[i] == nil {
			continue // absent sub-chunk: leave fill_value in out
		}
		decoded, err := s.inner.Decode(ctx, innerCtx, handle.FromBuffer(results[i]))
		if err != nil {
			return nil, fmt.Errorf("sharding_indexed: decoding sub-chunk %v: %w", t.Chunk, err)
		}
		subArr, err := decoded.Array()
		if err != nil {
			return nil, err
		}
		dstOffset := make([]int64, len(t.OutChunk))
		for i, ax := range t.OutChunk {
			dstOffset[i] = ax.Start
		}
		srcOffset := make([]int64, len(t.InChunk))
		regionShape := make([]int64, len(t.InChunk))
		for i, ax := range t.InChunk {
			srcOffset[i] = ax.Start
			regionShape[i] = ax.Len()
		}
		ndarray.CopyRegion(out, dstOffset, subArr, srcOffset, regionShape)
	}

	return out, nil
}

// EncodePartial overwrites a sub-rectangle of the outer chunk:
// read-modify-write over each affected inner chunk, then a full rewrite
// of the outer object with compacted offsets in row-major order.
func (s *Shard) EncodePartial(ctx context.Context, cctx ChunkContext, st store.Store, key string, value *ndarray.Array, outerSelection selection.Selection) error {
	n, err := s.numSubChunks(cctx.ChunkShape)
	if err != nil {
		return err
	}
	_, index, err := s.readIndex(ctx, st, key, n)
	if err != nil {
		return err
	}

	raw, err := st.Get(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("sharding_indexed: reading existing object %q: %w", key, err)
	}

	numChunksPerAxis := selection.NumChunksPerAxis(cctx.ChunkShape, s.innerChunkShape)
	innerCtx := ChunkContext{ChunkShape: s.innerChunkShape, DataType: cctx.DataType, FillValue: cctx.FillValue}

	subs := make([][]byte, n)
	present := make([]bool, n)
	for idx, rec := range index {
		if !rec.absent() {
			sub, err := rec.slice(raw)
			if err != nil {
				return err
			}
			subs[idx] = append([]byte(nil), sub...)
			present[idx] = true
		}
	}

	for t := range selection.Iterate(outerSelection, cctx.ChunkShape, s.innerChunkShape) {
		idx := s.linearIndex(t.Chunk, numChunksPerAxis)

		var sub *ndarray.Array
		if selection.IsTotalSlice(t.InChunk, s.innerChunkShape) {
			sub = ndarray.New(s.innerChunkShape, cctx.DataType)
		} else if present[idx] {
			decoded, err := s.inner.Decode(ctx, innerCtx, handle.FromBuffer(subs[idx]))
			if err != nil {
				return fmt.Errorf("sharding_indexed: decoding sub-chunk %v for overlay: %w", t.Chunk, err)
			}
			sub, err = decoded.Array()
			if err != nil {
				return err
			}
		} else {
			sub = ndarray.New(s.innerChunkShape, cctx.DataType)
			sub.Fill(cctx.FillValue)
		}

		srcOffset := make([]int64, len(t.OutChunk))
		for i, ax := range t.OutChunk {
			srcOffset[i] = ax.Start
		}
		dstOffset := make([]int64, len(t.InChunk))
		regionShape := make([]int64, len(t.InChunk))
		for i, ax := range t.InChunk {
			dstOffset[i] = ax.Start
			regionShape[i] = ax.Len()
		}
		ndarray.CopyRegion(sub, dstOffset, value, srcOffset, regionShape)

		if sub.IsFill(cctx.FillValue) {
			subs[idx] = nil
			present[idx] = false
			continue
		}
		encoded, err := s.inner.Encode(ctx, innerCtx, handle.FromArray(sub))
		if err != nil {
			return fmt.Errorf("sharding_indexed: encoding sub-chunk %v: %w", t.Chunk, err)
		}
		b, err := encoded.Bytes(ctx)
		if err != nil {
			return err
		}
		subs[idx] = b
		present[idx] = true
	}

	anyPresent := false
	for _, p := range present {
		if p {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		// Every sub-chunk decoded to fill value: elide the whole outer
		// chunk rather than store a bare index.
		return st.Delete(ctx, key)
	}

	return st.Set(ctx, key, assembleShard(subs, present), nil)
}

func (s *Shard) numSubChunks(outerShape []int64) (int, error) {
	n := 1
	for i, o := range outerShape {
		if o%s.innerChunkShape[i] != 0 {
			return 0, fmt.Errorf("%w: outer chunk axis %d (%d) is not a multiple of inner axis (%d)", zarrerr.Malformed, i, o, s.innerChunkShape[i])
		}
		n *= int(o / s.innerChunkShape[i])
	}
	return n, nil
}

// coordForIndex converts a flat sub-chunk index to its row-major
// coordinate within the outer chunk's inner grid.
func (s *Shard) coordForIndex(idx int, outerShape []int64) []int64 {
	perAxis := selection.NumChunksPerAxis(outerShape, s.innerChunkShape)
	rank := len(perAxis)
	coord := make([]int64, rank)
	remaining := idx
	for d := rank - 1; d >= 0; d-- {
		coord[d] = int64(remaining) % perAxis[d]
		remaining /= int(perAxis[d])
	}
	return coord
}

func (s *Shard) linearIndex(coord selection.ChunkCoord, perAxis []int64) int {
	idx := 0
	for d := 0; d < len(coord); d++ {
		idx = idx*int(perAxis[d]) + int(coord[d])
	}
	return idx
}

func (s *Shard) subChunkOrigin(coord []int64) []int64 {
	origin := make([]int64, len(coord))
	for i, c := range coord {
		origin[i] = c * s.innerChunkShape[i]
	}
	return origin
}

// readIndex fetches just the trailing N*16-byte index by byte range.
// found is false if the object does not exist.
func (s *Shard) readIndex(ctx context.Context, st store.Store, key string, n int) (found bool, index []shardIndexRecord, err error) {
	tail, err := st.Get(ctx, key, &store.ByteRange{Start: ptr(-int64(n * indexRecordSize))})
	if err != nil {
		return false, nil, fmt.Errorf("sharding_indexed: reading index of %q: %w", key, err)
	}
	if tail == nil {
		return false, allAbsent(n), nil
	}
	index, err = parseShardIndex(tail, n)
	if err != nil {
		return false, nil, err
	}
	return true, index, nil
}

type shardIndexRecord struct {
	offset uint64
	length uint64
}

func (r shardIndexRecord) absent() bool {
	return r.offset == absentSentinel && r.length == absentSentinel
}

func (r shardIndexRecord) slice(raw []byte) ([]byte, error) {
	end := r.offset + r.length
	if end > uint64(len(raw)) {
		return nil, fmt.Errorf("%w: sharding index record [%d:%d] out of bounds for object of length %d", zarrerr.Malformed, r.offset, end, len(raw))
	}
	return raw[r.offset:end], nil
}

func allAbsent(n int) []shardIndexRecord {
	out := make([]shardIndexRecord, n)
	for i := range out {
		out[i] = shardIndexRecord{offset: absentSentinel, length: absentSentinel}
	}
	return out
}

func parseShardIndex(raw []byte, n int) ([]shardIndexRecord, error) {
	want := n * indexRecordSize
	if len(raw) < want {
		return nil, fmt.Errorf("%w: sharding index is %d bytes, want at least %d", zarrerr.Malformed, len(raw), want)
	}
	tail := raw[len(raw)-want:]
	out := make([]shardIndexRecord, n)
	for i := 0; i < n; i++ {
		rec := tail[i*indexRecordSize : (i+1)*indexRecordSize]
		out[i] = shardIndexRecord{
			offset: binary.LittleEndian.Uint64(rec[0:8]),
			length: binary.LittleEndian.Uint64(rec[8:16]),
		}
	}
	return out, nil
}

// assembleShard concatenates present sub-chunk payloads in row-major
// order and appends a freshly built trailing index.
func assembleShard(subs [][]byte, present []bool) []byte {
	n := len(subs)
	var body []byte
	index := make([]shardIndexRecord, n)
	for i := 0; i < n; i++ {
		if !present[i] {
			index[i] = shardIndexRecord{offset: absentSentinel, length: absentSentinel}
			continue
		}
		index[i] = shardIndexRecord{offset: uint64(len(body)), length: uint64(len(subs[i]))}
		body = append(body, subs[i]...)
	}

	out := make([]byte, len(body)+n*indexRecordSize)
	copy(out, body)
	tail := out[len(body):]
	for i, rec := range index {
		binary.LittleEndian.PutUint64(tail[i*indexRecordSize:], rec.offset)
		binary.LittleEndian.PutUint64(tail[i*indexRecordSize+8:], rec.length)
	}
	return out
}

func zeros(n int) []int64 { return make([]int64, n) }

func ptr(v int64) *int64 { return &v }
