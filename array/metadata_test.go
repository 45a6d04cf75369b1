package array

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmalhotra/zarrcore/codec"
	"github.com/rmalhotra/zarrcore/selection"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

func testMetadata() Metadata {
	return Metadata{
		Shape:            []int64{4, 4},
		DataType:         zarrtype.Int32,
		ChunkShape:       []int64{2, 2},
		ChunkKeyEncoding: selection.DefaultEncoding("/"),
		FillValueRaw:     json.RawMessage("0"),
		Codecs:           []codec.Descriptor{{Name: "bytes"}},
	}
}

func TestMetadataDocumentShape(t *testing.T) {
	raw, err := json.Marshal(testMetadata())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, float64(3), doc["zarr_format"])
	assert.Equal(t, "array", doc["node_type"])

	grid, ok := doc["chunk_grid"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "regular", grid["name"])
	cfg, ok := grid["configuration"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(2), float64(2)}, cfg["chunk_shape"])
}

func TestMetadataRoundTrip(t *testing.T) {
	meta := testMetadata()
	raw, err := json.Marshal(meta)
	require.NoError(t, err)

	var got Metadata
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, meta.Shape, got.Shape)
	assert.Equal(t, meta.DataType, got.DataType)
	assert.Equal(t, meta.ChunkShape, got.ChunkShape)
	assert.Equal(t, meta.ChunkKeyEncoding, got.ChunkKeyEncoding)
	assert.Equal(t, meta.Codecs, got.Codecs)
}

func TestMetadataRejectsUnknownFields(t *testing.T) {
	raw, err := json.Marshal(testMetadata())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["storage_transformers"] = []any{}
	raw, err = json.Marshal(doc)
	require.NoError(t, err)

	var got Metadata
	require.Error(t, json.Unmarshal(raw, &got))
}

func TestMetadataRejectsWrongFormatVersion(t *testing.T) {
	raw, err := json.Marshal(testMetadata())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["zarr_format"] = 2
	raw, err = json.Marshal(doc)
	require.NoError(t, err)

	var got Metadata
	require.Error(t, json.Unmarshal(raw, &got))
}

func TestMetadataNullFillValueIsZero(t *testing.T) {
	meta := testMetadata()
	meta.FillValueRaw = json.RawMessage("null")
	fv, err := meta.FillValue()
	require.NoError(t, err)
	assert.Equal(t, zarrtype.ZeroFillValue(zarrtype.Int32), fv)
}

func TestMetadataValidateRankMismatch(t *testing.T) {
	meta := testMetadata()
	meta.ChunkShape = []int64{2}
	require.Error(t, meta.Validate())
}
