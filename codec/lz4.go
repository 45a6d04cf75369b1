package codec

import (
	"context"
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/rmalhotra/zarrcore/handle"
)

// Lz4 is the bytes-to-bytes LZ4 block codec: a pooled lz4.Compressor
// plus an adaptive-buffer decompress loop, since the block format does
// not record the decompressed size.
type Lz4 struct{}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

func init() {
	RegisterCodec("lz4", newLz4)
}

func newLz4(map[string]any) (Codec, error) {
	return &Lz4{}, nil
}

func (l *Lz4) Name() string                  { return "lz4" }
func (l *Lz4) Class() Class                  { return ClassBytesToBytes }
func (l *Lz4) Configuration() map[string]any { return map[string]any{} }

func (l *Lz4) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if len(raw) == 0 {
		return handle.FromBuffer(nil), nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)
	n, err := c.CompressBlock(raw, dst)
	if err != nil {
		return handle.None(), err
	}
	return handle.FromBuffer(dst[:n]), nil
}

const maxLz4Buffer = 128 * 1024 * 1024

func (l *Lz4) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if len(raw) == 0 {
		return handle.FromBuffer(nil), nil
	}
	bufSize := len(raw) * 4
	for bufSize <= maxLz4Buffer {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(raw, buf)
		if err == nil {
			return handle.FromBuffer(buf[:n]), nil
		}
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxLz4Buffer {
			bufSize *= 2
			continue
		}
		return handle.None(), err
	}
	return handle.None(), lz4.ErrInvalidSourceShortBuffer
}
