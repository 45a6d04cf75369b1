package zarrtype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Convert rewrites data, a packed buffer of src elements, into dst's
// encoding. Same bit width reinterprets the byte pattern unchanged;
// different bit widths cast element-wise. The fast path covers matching
// representations, the slow path walks elements one by one.
func Convert(src, dst DataType, data []byte) ([]byte, error) {
	if src == dst {
		return data, nil
	}
	if src.Size() == 0 || dst.Size() == 0 {
		return nil, fmt.Errorf("zarrtype: %w: unsupported data type in conversion", zarrerr.Argument)
	}
	if len(data)%src.Size() != 0 {
		return nil, fmt.Errorf("zarrtype: %w: data length %d is not a multiple of element size %d", zarrerr.Malformed, len(data), src.Size())
	}

	if src.Size() == dst.Size() {
		// Same bit width: reinterpret the byte pattern unchanged.
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	// Different bit width: element-wise numeric cast.
	n := len(data) / src.Size()
	out := make([]byte, n*dst.Size())
	for i := 0; i < n; i++ {
		elem := decodeElement(src, data[i*src.Size():(i+1)*src.Size()])
		bits, err := toBits(dst, elem)
		if err != nil {
			return nil, err
		}
		dstElem := out[i*dst.Size() : (i+1)*dst.Size()]
		putBits(dst, bits, dstElem)
	}
	return out, nil
}

// decodeElement reads one little-endian element of type dt from data
// (len(data) == dt.Size()) into a canonical Go scalar.
func decodeElement(dt DataType, data []byte) any {
	switch dt {
	case Bool:
		return data[0] != 0
	case Int8:
		return int8(data[0])
	case Uint8:
		return data[0]
	case Int16:
		return int16(binary.LittleEndian.Uint16(data))
	case Uint16:
		return binary.LittleEndian.Uint16(data)
	case Int32:
		return int32(binary.LittleEndian.Uint32(data))
	case Uint32:
		return binary.LittleEndian.Uint32(data)
	case Int64:
		return int64(binary.LittleEndian.Uint64(data))
	case Uint64:
		return binary.LittleEndian.Uint64(data)
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(data))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	default:
		return nil
	}
}

func putBits(dt DataType, bits uint64, out []byte) {
	switch dt.Size() {
	case 1:
		out[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(out, bits)
	}
}
