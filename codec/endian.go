package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/rmalhotra/zarrcore/handle"
	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Endian is the "bytes" codec: the array-to-bytes stage that lays an
// array's elements out as a flat byte buffer in the configured byte
// order.
type Endian struct {
	order binary.ByteOrder
	name  string // "little" or "big", as stored in configuration
}

func init() {
	RegisterCodec("bytes", newEndian)
}

func newEndian(configuration map[string]any) (Codec, error) {
	name, _ := configuration["endian"].(string)
	if name == "" {
		name = "little"
	}
	switch name {
	case "little":
		return &Endian{order: binary.LittleEndian, name: "little"}, nil
	case "big":
		return &Endian{order: binary.BigEndian, name: "big"}, nil
	default:
		return nil, fmt.Errorf("%w: unknown endian %q", zarrerr.Malformed, name)
	}
}

func (e *Endian) Name() string  { return "bytes" }
func (e *Endian) Class() Class  { return ClassArrayToBytes }
func (e *Endian) Configuration() map[string]any {
	return map[string]any{"endian": e.name}
}

// Encode reorders an array's in-memory bytes (native order, per
// ndarray.Array's contract) into e's configured wire order.
func (e *Endian) Encode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	arr, err := h.Array()
	if err != nil {
		return handle.None(), err
	}
	out := reorder(arr.Bytes(), cctx.DataType.Size(), e.order)
	return handle.FromBuffer(out), nil
}

// Decode reverses Encode: wire-order bytes back into an ndarray.Array in
// native order.
func (e *Endian) Decode(ctx context.Context, cctx ChunkContext, h handle.Handle) (handle.Handle, error) {
	raw, err := h.Bytes(ctx)
	if err != nil {
		return handle.None(), err
	}
	native := reorder(raw, cctx.DataType.Size(), e.order)
	arr, err := ndarray.Wrap(cctx.ChunkShape, cctx.DataType, native)
	if err != nil {
		return handle.None(), fmt.Errorf("%w: %v", zarrerr.Malformed, err)
	}
	return handle.FromArray(arr), nil
}

// reorder swaps each elemSize-wide element's byte order in place on a
// copy of data, relative to the machine's native order. Single-byte
// elements and already-matching orders are a no-op copy.
func reorder(data []byte, elemSize int, wire binary.ByteOrder) []byte {
	out := append([]byte(nil), data...)
	if elemSize <= 1 || nativeOrder() == wire {
		return out
	}
	for off := 0; off+elemSize <= len(out); off += elemSize {
		for i, j := off, off+elemSize-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// nativeOrder reports the host's byte order by probing a known uint16
// bit pattern.
func nativeOrder() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
