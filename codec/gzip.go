package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/rmalhotra/zarrcore/handle"
)

// Gzip is a bytes-to-bytes codec backed by klauspost/compress/gzip, a
// drop-in replacement for the standard library's compress/gzip.
type Gzip struct {
	level int
}

func init() {
	RegisterCodec("gzip", newGzip)
}

func newGzip(configuration map[string]any) (Codec, error) {
	level := gzip.DefaultCompression
	if v, ok := configuration["level"].(float64); ok {
		level = int(v)
	}
	return &Gzip{level: level}, nil
}

func (g *Gzip) Name() string { return "gzip" }
func (g *Gzip) Class() Class { return ClassBytesToBytes }
func (g *Gzip) Configuration() map[string]any {
	return map[string]any{"level": g.level}
}

func (g *Gzip) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return handle.None(), fmt.Errorf("gzip: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return handle.None(), fmt.Errorf("gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return handle.None(), fmt.Errorf("gzip: %w", err)
	}
	return handle.FromBuffer(buf.Bytes()), nil
}

func (g *Gzip) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return handle.None(), fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return handle.None(), fmt.Errorf("gzip: %w", err)
	}
	return handle.FromBuffer(out), nil
}
