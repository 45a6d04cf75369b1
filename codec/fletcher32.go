package codec

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Fletcher32 is a bytes-to-bytes checksum codec appending a Fletcher-32
// sum over the payload, the same algorithm HDF5 uses for its chunk
// checksum filter.
type Fletcher32 struct{}

func init() {
	RegisterCodec("fletcher32", newFletcher32)
}

func newFletcher32(map[string]any) (Codec, error) {
	return &Fletcher32{}, nil
}

func (f *Fletcher32) Name() string                  { return "fletcher32" }
func (f *Fletcher32) Class() Class                  { return ClassBytesToBytes }
func (f *Fletcher32) Configuration() map[string]any { return map[string]any{} }

func (f *Fletcher32) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	sum := fletcher32(raw)
	out := make([]byte, len(raw)+4)
	copy(out, raw)
	binary.LittleEndian.PutUint32(out[len(raw):], sum)
	return handle.FromBuffer(out), nil
}

func (f *Fletcher32) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if len(raw) < 4 {
		return handle.None(), fmt.Errorf("%w: fletcher32 input too short for checksum", zarrerr.Malformed)
	}
	data := raw[:len(raw)-4]
	stored := binary.LittleEndian.Uint32(raw[len(raw)-4:])
	computed := fletcher32(data)
	if stored != computed {
		return handle.None(), fmt.Errorf("%w: fletcher32 mismatch: stored=%08x computed=%08x", zarrerr.Malformed, stored, computed)
	}
	return handle.FromBuffer(data), nil
}

// fletcher32 treats data as a sequence of little-endian 16-bit words,
// padding an odd final byte with zero.
func fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32
	length := len(data)
	i := 0
	for ; i+1 < length; i += 2 {
		word := uint32(data[i]) | uint32(data[i+1])<<8
		sum1 = (sum1 + word) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	if i < length {
		word := uint32(data[i])
		sum1 = (sum1 + word) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	return (sum2 << 16) | sum1
}
