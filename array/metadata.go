// Package array implements the array engine: the top-level
// Read/Write/Resize surface that drives the indexer and codec pipeline
// against a store.
//
// Metadata persistence decodes the zarr.json descriptor strictly —
// every structural field is validated up front rather than left to
// zero values.
package array

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rmalhotra/zarrcore/codec"
	"github.com/rmalhotra/zarrcore/selection"
	"github.com/rmalhotra/zarrcore/zarrerr"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

// Metadata is the on-disk array descriptor, persisted as zarr.json. It
// is immutable after Open except for Shape, which Resize rewrites.
type Metadata struct {
	Shape            []int64
	DataType         zarrtype.DataType
	ChunkShape       []int64
	ChunkKeyEncoding selection.ChunkKeyEncoding
	FillValueRaw     json.RawMessage
	Codecs           []codec.Descriptor
	DimensionNames   []string
	Attributes       map[string]any
}

// chunkKeyEncodingJSON is the wire form of ChunkKeyEncoding, since
// selection.ChunkKeyEncoding itself carries no JSON tags (it belongs to
// a lower package that doesn't know about the metadata schema).
type chunkKeyEncodingJSON struct {
	Name          selection.KeyEncodingName `json:"name"`
	Configuration struct {
		Separator string `json:"separator"`
	} `json:"configuration"`
}

// chunkGridJSON is the wire form of the chunk grid: always the "regular"
// grid here, with chunk_shape nested one level down.
type chunkGridJSON struct {
	Name          string `json:"name"`
	Configuration struct {
		ChunkShape []int64 `json:"chunk_shape"`
	} `json:"configuration"`
}

// metadataJSON is the exact zarr.json document shape: the
// zarr_format/node_type discriminators and the nested chunk_grid /
// chunk_key_encoding objects live only on the wire, not on Metadata.
type metadataJSON struct {
	ZarrFormat       int                  `json:"zarr_format"`
	NodeType         string               `json:"node_type"`
	Shape            []int64              `json:"shape"`
	DataType         zarrtype.DataType    `json:"data_type"`
	ChunkGrid        chunkGridJSON        `json:"chunk_grid"`
	ChunkKeyEncoding chunkKeyEncodingJSON `json:"chunk_key_encoding"`
	FillValueRaw     json.RawMessage      `json:"fill_value"`
	Codecs           []codec.Descriptor   `json:"codecs"`
	DimensionNames   []string             `json:"dimension_names,omitempty"`
	Attributes       map[string]any       `json:"attributes,omitempty"`
}

// MarshalJSON renders Metadata as zarr.json, spelling out the
// zarr_format/node_type discriminators and the nested chunk_grid and
// chunk_key_encoding configuration objects.
func (m Metadata) MarshalJSON() ([]byte, error) {
	a := metadataJSON{
		ZarrFormat:     3,
		NodeType:       "array",
		Shape:          m.Shape,
		DataType:       m.DataType,
		FillValueRaw:   m.FillValueRaw,
		Codecs:         m.Codecs,
		DimensionNames: m.DimensionNames,
		Attributes:     m.Attributes,
	}
	if a.FillValueRaw == nil {
		a.FillValueRaw = json.RawMessage("null")
	}
	a.ChunkGrid.Name = "regular"
	a.ChunkGrid.Configuration.ChunkShape = m.ChunkShape
	a.ChunkKeyEncoding.Name = m.ChunkKeyEncoding.Name
	a.ChunkKeyEncoding.Configuration.Separator = m.ChunkKeyEncoding.Separator
	return json.Marshal(a)
}

// UnmarshalJSON decodes zarr.json with DisallowUnknownFields: an
// unrecognized top-level key is rejected rather than silently dropped,
// since forward compatibility is out of scope for this engine.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var a metadataJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return fmt.Errorf("array: %w: decoding metadata: %v", zarrerr.Malformed, err)
	}
	if a.ZarrFormat != 3 {
		return fmt.Errorf("array: %w: zarr_format is %d, want 3", zarrerr.Malformed, a.ZarrFormat)
	}
	if a.NodeType != "array" {
		return fmt.Errorf("array: %w: node_type is %q, want \"array\"", zarrerr.Malformed, a.NodeType)
	}
	if a.ChunkGrid.Name != "regular" {
		return fmt.Errorf("array: %w: chunk_grid %q is not supported, only \"regular\"", zarrerr.Malformed, a.ChunkGrid.Name)
	}
	*m = Metadata{
		Shape:            a.Shape,
		DataType:         a.DataType,
		ChunkShape:       a.ChunkGrid.Configuration.ChunkShape,
		ChunkKeyEncoding: selection.ChunkKeyEncoding{Name: a.ChunkKeyEncoding.Name, Separator: a.ChunkKeyEncoding.Configuration.Separator},
		FillValueRaw:     a.FillValueRaw,
		Codecs:           a.Codecs,
		DimensionNames:   a.DimensionNames,
		Attributes:       a.Attributes,
	}
	return m.Validate()
}

// Validate checks the descriptor's structural invariants: matching
// ranks, positive chunk extents, a known data type.
func (m Metadata) Validate() error {
	rank := len(m.Shape)
	if len(m.ChunkShape) != rank {
		return fmt.Errorf("array: %w: chunk_shape has %d axes, shape has %d", zarrerr.Malformed, len(m.ChunkShape), rank)
	}
	if m.DimensionNames != nil && len(m.DimensionNames) != rank {
		return fmt.Errorf("array: %w: dimension_names has %d entries, shape has %d", zarrerr.Malformed, len(m.DimensionNames), rank)
	}
	for i, c := range m.ChunkShape {
		if c < 1 {
			return fmt.Errorf("array: %w: chunk_shape[%d] = %d, must be >= 1", zarrerr.Malformed, i, c)
		}
	}
	for i, s := range m.Shape {
		if s < 0 {
			return fmt.Errorf("array: %w: shape[%d] = %d, must be >= 0", zarrerr.Malformed, i, s)
		}
	}
	if !m.DataType.Valid() {
		return fmt.Errorf("array: %w: invalid data_type %d", zarrerr.Malformed, m.DataType)
	}
	return nil
}

// FillValue decodes FillValueRaw against the metadata's data type. An
// absent or null fill_value means the data type's zero value.
func (m Metadata) FillValue() (zarrtype.FillValue, error) {
	if len(m.FillValueRaw) == 0 || string(m.FillValueRaw) == "null" {
		return zarrtype.ZeroFillValue(m.DataType), nil
	}
	var scalar any
	if err := json.Unmarshal(m.FillValueRaw, &scalar); err != nil {
		return zarrtype.FillValue{}, fmt.Errorf("array: %w: decoding fill_value: %v", zarrerr.Malformed, err)
	}
	return zarrtype.NewFillValue(m.DataType, scalar)
}

// BuildPipeline constructs the codec pipeline described by m.Codecs.
func (m Metadata) BuildPipeline() (*codec.Pipeline, error) {
	return codec.BuildAll(m.Codecs)
}
