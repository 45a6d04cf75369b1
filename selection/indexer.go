package selection

import "iter"

// Triple is one unit of work the indexer yields: the chunk to touch, the
// sub-selection within that chunk's local coordinate space, and the
// sub-selection within the caller's output/input array that it
// corresponds to.
type Triple struct {
	Chunk    ChunkCoord
	InChunk  Selection
	OutChunk Selection
}

// Iterate enumerates the triples covering sel over an array of the given
// shape partitioned into chunkShape-sized chunks. Order is row-major over
// chunk coordinates and is not externally observable — callers may fan the
// sequence out to run concurrently.
//
// A rank-0 selection (shape == chunkShape == nil) yields exactly one
// triple addressing the sole chunk.
func Iterate(sel Selection, shape, chunkShape []int64) iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		if len(shape) == 0 {
			yield(Triple{Chunk: ChunkCoord{}, InChunk: Selection{}, OutChunk: Selection{}})
			return
		}

		rank := len(shape)
		minChunk := make([]int64, rank)
		maxChunk := make([]int64, rank)
		for i := 0; i < rank; i++ {
			if sel[i].Len() == 0 {
				return
			}
			minChunk[i] = sel[i].Start / chunkShape[i]
			maxChunk[i] = (sel[i].Stop - 1) / chunkShape[i]
		}

		coord := make(ChunkCoord, rank)
		var walk func(dim int) bool
		walk = func(dim int) bool {
			if dim == rank {
				inChunk, outChunk := tripleSlices(sel, coord, shape, chunkShape)
				t := Triple{
					Chunk:    append(ChunkCoord(nil), coord...),
					InChunk:  inChunk,
					OutChunk: outChunk,
				}
				return yield(t)
			}
			for c := minChunk[dim]; c <= maxChunk[dim]; c++ {
				coord[dim] = c
				if !walk(dim + 1) {
					return false
				}
			}
			return true
		}
		walk(0)
	}
}

// tripleSlices computes, for one chunk coordinate, the portion of the
// chunk the selection touches (InChunk, in the chunk's own [0,
// chunkShape) coordinate space) and the portion of the selection's output
// array it lands in (OutChunk, in [0, outputShape) space).
func tripleSlices(sel Selection, coord ChunkCoord, shape, chunkShape []int64) (Selection, Selection) {
	rank := len(shape)
	inChunk := make(Selection, rank)
	outChunk := make(Selection, rank)

	for i := 0; i < rank; i++ {
		chunkStart := coord[i] * chunkShape[i]
		chunkEnd := chunkStart + chunkShape[i]

		lo := max64(chunkStart, sel[i].Start)
		hi := min64(chunkEnd, sel[i].Stop)

		inChunk[i] = AxisSlice{Start: lo - chunkStart, Stop: hi - chunkStart}
		outChunk[i] = AxisSlice{Start: lo - sel[i].Start, Stop: hi - sel[i].Start}
	}

	return inChunk, outChunk
}

// IsTotalSlice reports whether sel covers an entire chunk of the given
// shape: start=0, stop=size, in every dimension.
func IsTotalSlice(sel Selection, chunkShape []int64) bool {
	if len(sel) != len(chunkShape) {
		return false
	}
	for i, ax := range sel {
		if ax.Start != 0 || ax.Stop != chunkShape[i] {
			return false
		}
	}
	return true
}

// NumChunksPerAxis returns, per axis, ⌈shape[i] / chunkShape[i]⌉.
func NumChunksPerAxis(shape, chunkShape []int64) []int64 {
	out := make([]int64, len(shape))
	for i := range shape {
		out[i] = (shape[i] + chunkShape[i] - 1) / chunkShape[i]
	}
	return out
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
