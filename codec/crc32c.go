package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Crc32c appends (on encode) or verifies and strips (on decode) a
// trailing CRC-32C checksum, the zarr.json "crc32c" codec. hash/crc32
// ships the Castagnoli polynomial directly.
type Crc32c struct{}

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func init() {
	RegisterCodec("crc32c", newCrc32c)
}

func newCrc32c(map[string]any) (Codec, error) {
	return &Crc32c{}, nil
}

func (c *Crc32c) Name() string                  { return "crc32c" }
func (c *Crc32c) Class() Class                  { return ClassBytesToBytes }
func (c *Crc32c) Configuration() map[string]any { return map[string]any{} }

func (c *Crc32c) Encode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	sum := crc32.Checksum(raw, crc32cTable)
	out := make([]byte, len(raw)+4)
	copy(out, raw)
	binary.LittleEndian.PutUint32(out[len(raw):], sum)
	return handle.FromBuffer(out), nil
}

func (c *Crc32c) Decode(ctx context.Context, _ ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	if len(raw) < 4 {
		return handle.None(), fmt.Errorf("%w: crc32c input too short for checksum", zarrerr.Malformed)
	}
	data := raw[:len(raw)-4]
	stored := binary.LittleEndian.Uint32(raw[len(raw)-4:])
	computed := crc32.Checksum(data, crc32cTable)
	if stored != computed {
		return handle.None(), fmt.Errorf("%w: crc32c mismatch: stored=%08x computed=%08x", zarrerr.Malformed, stored, computed)
	}
	return handle.FromBuffer(data), nil
}
