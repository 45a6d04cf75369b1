package codec

import (
	"context"

	"github.com/rmalhotra/zarrcore/handle"
)

// Shuffle is the byte-shuffle bytes-to-bytes codec: it regroups an
// encoded buffer so that byte position 0 of every element is adjacent,
// then byte position 1 of every element, and so on, which tends to help
// downstream compressors.
type Shuffle struct {
	elemSize int
}

func init() {
	RegisterCodec("shuffle", newShuffle)
}

func newShuffle(configuration map[string]any) (Codec, error) {
	elemSize := 4
	if v, ok := configuration["elementsize"].(float64); ok && v > 0 {
		elemSize = int(v)
	}
	return &Shuffle{elemSize: elemSize}, nil
}

func (s *Shuffle) Name() string { return "shuffle" }
func (s *Shuffle) Class() Class { return ClassBytesToBytes }
func (s *Shuffle) Configuration() map[string]any {
	return map[string]any{"elementsize": s.elemSize}
}

// Encode shuffles: input [elem0][elem1]...[elemM] becomes
// [all byte 0s][all byte 1s]...[all byte N-1s].
func (s *Shuffle) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if s.elemSize <= 1 {
		return handle.FromBuffer(raw), nil
	}
	numElems := len(raw) / s.elemSize
	if numElems == 0 {
		return handle.FromBuffer(raw), nil
	}
	out := make([]byte, len(raw))
	for i := 0; i < numElems; i++ {
		for j := 0; j < s.elemSize; j++ {
			out[j*numElems+i] = raw[i*s.elemSize+j]
		}
	}
	copy(out[numElems*s.elemSize:], raw[numElems*s.elemSize:])
	return handle.FromBuffer(out), nil
}

// Decode un-shuffles, gathering each element's bytes back together.
func (s *Shuffle) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if s.elemSize <= 1 {
		return handle.FromBuffer(raw), nil
	}
	numElems := len(raw) / s.elemSize
	if numElems == 0 {
		return handle.FromBuffer(raw), nil
	}
	out := make([]byte, len(raw))
	for i := 0; i < numElems; i++ {
		for j := 0; j < s.elemSize; j++ {
			out[i*s.elemSize+j] = raw[j*numElems+i]
		}
	}
	copy(out[numElems*s.elemSize:], raw[numElems*s.elemSize:])
	return handle.FromBuffer(out), nil
}
