package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkKeyDefaultEncoding(t *testing.T) {
	e := DefaultEncoding("/")
	assert.Equal(t, "c/1/2", e.Key(ChunkCoord{1, 2}))

	dot := DefaultEncoding(".")
	assert.Equal(t, "c.0.3", dot.Key(ChunkCoord{0, 3}))
}

func TestChunkKeyV2Encoding(t *testing.T) {
	e := ChunkKeyEncoding{Name: EncodingV2, Separator: "."}
	assert.Equal(t, "1.2", e.Key(ChunkCoord{1, 2}))

	slash := ChunkKeyEncoding{Name: EncodingV2, Separator: "/"}
	assert.Equal(t, "0/0", slash.Key(ChunkCoord{0, 0}))
}

func TestChunkKeyRank0Literals(t *testing.T) {
	assert.Equal(t, "c", DefaultEncoding("/").Key(ChunkCoord{}))
	assert.Equal(t, "0", ChunkKeyEncoding{Name: EncodingV2, Separator: "."}.Key(ChunkCoord{}))
}
