package selection

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

func collect(seq func(func(Triple) bool)) []Triple {
	var out []Triple
	seq(func(t Triple) bool {
		out = append(out, t)
		return true
	})
	return out
}

func TestIterateSingleChunkWhole(t *testing.T) {
	shape := []int64{4, 4}
	chunkShape := []int64{4, 4}
	sel := Full(shape)

	got := collect(Iterate(sel, shape, chunkShape))
	require.Len(t, got, 1)
	assert.Equal(t, ChunkCoord{0, 0}, got[0].Chunk)
	assert.True(t, IsTotalSlice(got[0].InChunk, chunkShape))
}

func TestIterateSpansMultipleChunks(t *testing.T) {
	shape := []int64{4, 4}
	chunkShape := []int64{2, 2}
	sel := Full(shape)

	got := collect(Iterate(sel, shape, chunkShape))
	require.Len(t, got, 4)

	var coords []ChunkCoord
	for _, tr := range got {
		coords = append(coords, tr.Chunk)
		assert.True(t, IsTotalSlice(tr.InChunk, chunkShape))
	}
	assert.True(t, slices.ContainsFunc(coords, func(c ChunkCoord) bool {
		return c[0] == 0 && c[1] == 0
	}))
	assert.True(t, slices.ContainsFunc(coords, func(c ChunkCoord) bool {
		return c[0] == 1 && c[1] == 1
	}))
}

func TestIteratePartialSelectionBoundaries(t *testing.T) {
	shape := []int64{10}
	chunkShape := []int64{4}
	sel := Selection{{Start: 3, Stop: 9}}

	got := collect(Iterate(sel, shape, chunkShape))
	// chunk 0 covers [0,4): sel intersects [3,4)
	// chunk 1 covers [4,8): sel intersects [4,8) fully
	// chunk 2 covers [8,12): sel intersects [8,9)
	require.Len(t, got, 3)

	assert.Equal(t, ChunkCoord{0}, got[0].Chunk)
	assert.Equal(t, AxisSlice{Start: 3, Stop: 4}, got[0].InChunk[0])
	assert.Equal(t, AxisSlice{Start: 0, Stop: 1}, got[0].OutChunk[0])

	assert.Equal(t, ChunkCoord{1}, got[1].Chunk)
	assert.Equal(t, AxisSlice{Start: 0, Stop: 4}, got[1].InChunk[0])
	assert.Equal(t, AxisSlice{Start: 1, Stop: 5}, got[1].OutChunk[0])

	assert.Equal(t, ChunkCoord{2}, got[2].Chunk)
	assert.Equal(t, AxisSlice{Start: 0, Stop: 1}, got[2].InChunk[0])
	assert.Equal(t, AxisSlice{Start: 5, Stop: 6}, got[2].OutChunk[0])
}

func TestIterateRank0(t *testing.T) {
	got := collect(Iterate(Selection{}, nil, nil))
	require.Len(t, got, 1)
	assert.Equal(t, ChunkCoord{}, got[0].Chunk)
}

func TestIterateEmptySelectionYieldsNothing(t *testing.T) {
	shape := []int64{10}
	chunkShape := []int64{4}
	sel := Selection{{Start: 3, Stop: 3}}

	got := collect(Iterate(sel, shape, chunkShape))
	assert.Len(t, got, 0)
}

func TestIsTotalSliceFalseOnPartial(t *testing.T) {
	assert.False(t, IsTotalSlice(Selection{{Start: 1, Stop: 4}}, []int64{4}))
	assert.True(t, IsTotalSlice(Selection{{Start: 0, Stop: 4}}, []int64{4}))
}

func TestValidateClassifiesArgumentErrors(t *testing.T) {
	shape := []int64{4, 4}

	err := Validate(Selection{{Start: 0, Stop: 4}}, shape)
	require.Error(t, err)
	assert.True(t, errors.Is(err, zarrerr.Argument))

	err = Validate(Selection{{Start: 0, Stop: 5}, {Start: 0, Stop: 4}}, shape)
	require.Error(t, err)
	assert.True(t, errors.Is(err, zarrerr.Argument))

	assert.NoError(t, Validate(Full(shape), shape))
}

func TestNumChunksPerAxis(t *testing.T) {
	assert.Equal(t, []int64{3, 2}, NumChunksPerAxis([]int64{5, 4}, []int64{2, 2}))
}
