// Package codec implements the codec pipeline: the ordered chain of
// array-to-array, array-to-bytes and bytes-to-bytes transforms a chunk
// passes through between its logical array form and its encoded store
// form.
//
// Concrete codecs register a constructor by their zarr.json name in
// their own init(); Pipeline validates the chain's composition at
// construction and walks it forward on encode, in reverse on decode.
package codec

import (
	"context"
	"fmt"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/zarrerr"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

// Class identifies which of the three pipeline stages a Codec belongs to.
type Class uint8

const (
	ClassArrayToArray Class = iota
	ClassArrayToBytes
	ClassBytesToBytes
)

// ChunkContext carries the per-chunk shape information codecs need but
// that isn't itself data: transpose needs the chunk's shape, endian needs
// the element data type and size, and the sharding codec also needs the
// fill value.
type ChunkContext struct {
	ChunkShape []int64
	DataType   zarrtype.DataType
	FillValue  zarrtype.FillValue
}

// Codec is one stage of the pipeline. Decode must invert Encode exactly:
// Decode(Encode(h)) reproduces h's payload.
type Codec interface {
	// Name is the zarr.json codec name, e.g. "gzip" or "transpose".
	Name() string
	Class() Class
	Encode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error)
	Decode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error)
}

// Constructor builds a Codec from its zarr.json configuration object.
type Constructor func(configuration map[string]any) (Codec, error)

// registry maps codec names to constructors. Concrete codecs register
// themselves via RegisterCodec in their own init().
var registry = map[string]Constructor{}

// RegisterCodec adds a codec constructor to the registry. Called from
// each concrete codec file's init().
func RegisterCodec(name string, ctor Constructor) {
	registry[name] = ctor
}

// Build constructs a Codec by name, per the zarr.json codec descriptor
// ({"name": ..., "configuration": {...}}).
func Build(name string, configuration map[string]any) (Codec, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("codec: %w: unknown codec %q", zarrerr.Malformed, name)
	}
	c, err := ctor(configuration)
	if err != nil {
		return nil, fmt.Errorf("codec: building %q: %w", name, err)
	}
	return c, nil
}
