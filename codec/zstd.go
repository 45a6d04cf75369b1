package codec

import (
	"context"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/rmalhotra/zarrcore/handle"
)

// Zstd is the bytes-to-bytes zstd codec. Encoders and decoders are
// pooled for warm reuse; constructing them per call dominates the cost
// of small-chunk compression.
type Zstd struct {
	level zstd.EncoderLevel
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool = sync.Pool{
		New: func() any {
			d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic(fmt.Sprintf("codec: zstd decoder pool: %v", err))
			}
			return d
		},
	}
)

func init() {
	RegisterCodec("zstd", newZstd)
}

func newZstd(configuration map[string]any) (Codec, error) {
	level := zstd.SpeedDefault
	if v, ok := configuration["level"].(float64); ok {
		level = zstd.EncoderLevel(int(v))
	}
	return &Zstd{level: level}, nil
}

func (z *Zstd) Name() string { return "zstd" }
func (z *Zstd) Class() Class { return ClassBytesToBytes }
func (z *Zstd) Configuration() map[string]any {
	return map[string]any{"level": int(z.level)}
}

func (z *Zstd) encoder() *zstd.Encoder {
	if e, ok := zstdEncoderPool.Get().(*zstd.Encoder); ok {
		return e
	}
	e, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(z.level))
	if err != nil {
		panic(fmt.Sprintf("codec: zstd encoder pool: %v", err))
	}
	return e
}

func (z *Zstd) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	enc := z.encoder()
	defer zstdEncoderPool.Put(enc)
	return handle.FromBuffer(enc.EncodeAll(raw, nil)), nil
}

func (z *Zstd) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return handle.None(), fmt.Errorf("zstd: %w", err)
	}
	return handle.FromBuffer(out), nil
}
