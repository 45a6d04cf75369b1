package codec

import (
	"context"
	"fmt"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Pipeline is a validated codec chain: zero or more array-to-array
// codecs, exactly one array-to-bytes codec, then zero or more
// bytes-to-bytes codecs — or a single sharding codec standing in for
// the whole chain.
type Pipeline struct {
	codecs    []Codec
	isSharded bool
}

// NewPipeline validates codecs against the pipeline contract and
// constructs a Pipeline. A *Shard codec must be the pipeline's sole
// member; otherwise there must be exactly one array-to-bytes codec, with
// every array-to-array codec preceding it and every bytes-to-bytes codec
// following it.
func NewPipeline(codecs []Codec) (*Pipeline, error) {
	if len(codecs) == 1 {
		if _, ok := codecs[0].(*Shard); ok {
			return &Pipeline{codecs: codecs, isSharded: true}, nil
		}
	}
	for _, c := range codecs {
		if _, ok := c.(*Shard); ok {
			return nil, fmt.Errorf("codec: %w: sharding codec must be the pipeline's sole codec", zarrerr.PipelineContract)
		}
	}

	seenArrayToBytes := false
	for i, c := range codecs {
		switch c.Class() {
		case ClassArrayToArray:
			if seenArrayToBytes {
				return nil, fmt.Errorf("codec: %w: array-to-array codec %q follows the array-to-bytes stage", zarrerr.PipelineContract, c.Name())
			}
		case ClassArrayToBytes:
			if seenArrayToBytes {
				return nil, fmt.Errorf("codec: %w: pipeline has more than one array-to-bytes codec", zarrerr.PipelineContract)
			}
			seenArrayToBytes = true
		case ClassBytesToBytes:
			if !seenArrayToBytes {
				return nil, fmt.Errorf("codec: %w: bytes-to-bytes codec %q precedes the array-to-bytes stage", zarrerr.PipelineContract, c.Name())
			}
		default:
			return nil, fmt.Errorf("codec: %w: codec %q at position %d has unknown class", zarrerr.PipelineContract, c.Name(), i)
		}
	}
	if !seenArrayToBytes {
		return nil, fmt.Errorf("codec: %w: pipeline has no array-to-bytes codec", zarrerr.PipelineContract)
	}

	return &Pipeline{codecs: codecs}, nil
}

// IsSharded reports whether this pipeline delegates entirely to a
// sharding codec.
func (p *Pipeline) IsSharded() bool { return p.isSharded }

// ShardCodec returns the pipeline's sole sharding codec. Only valid when
// IsSharded is true.
func (p *Pipeline) ShardCodec() *Shard {
	if !p.isSharded {
		return nil
	}
	return p.codecs[0].(*Shard)
}

// Encode runs h forward through the chain: array-to-array codecs, then
// the array-to-bytes codec, then bytes-to-bytes codecs, in list order.
func (p *Pipeline) Encode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	cur := h
	for _, c := range p.codecs {
		var err error
		cur, err = c.Encode(ctx, cctx, cur)
		if err != nil {
			return handle.None(), fmt.Errorf("codec: encoding %q: %w", c.Name(), err)
		}
	}
	return cur, nil
}

// Decode runs h backward through the chain in reverse order. The
// decoded array must conform to the chunk's declared shape and data
// type: a shape or dtype mismatch with a matching byte length is
// reinterpreted in place, a byte-length mismatch is fatal.
func (p *Pipeline) Decode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	cur := h
	for i := len(p.codecs) - 1; i >= 0; i-- {
		c := p.codecs[i]
		var err error
		cur, err = c.Decode(ctx, cctx, cur)
		if err != nil {
			return handle.None(), fmt.Errorf("codec: decoding %q: %w", c.Name(), err)
		}
	}
	arr, err := cur.Array()
	if err != nil {
		return handle.None(), err
	}
	if sameShape(arr.Shape(), cctx.ChunkShape) && arr.DataType() == cctx.DataType {
		return cur, nil
	}
	conformed, err := ndarray.Wrap(cctx.ChunkShape, cctx.DataType, arr.Bytes())
	if err != nil {
		return handle.None(), fmt.Errorf("codec: decoded chunk does not conform to declared shape/dtype: %w", err)
	}
	return handle.FromArray(conformed), nil
}
