package zarrtype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

// FillValue holds the logical value used for any array cell not backed by a
// stored chunk. It is built from the v3 metadata document's JSON scalar
// (the document itself keeps the raw JSON; FillValue has no JSON encoding
// of its own), and also knows how to paint itself across a
// raw little-endian buffer so codecs and the array engine can fill whole
// chunks without a per-element loop.
type FillValue struct {
	dtype DataType
	bits  uint64 // the element's bit pattern, little-endian, zero-extended
}

// NewFillValue builds a FillValue from a Go scalar, checking that v is
// representable in dt.
func NewFillValue(dt DataType, v any) (FillValue, error) {
	bits, err := toBits(dt, v)
	if err != nil {
		return FillValue{}, err
	}
	fv := FillValue{dtype: dt, bits: bits}
	if dt.IsInteger() {
		// An integer fill must survive the round trip through dt's width.
		want, _ := asFloat(v)
		got, _ := asFloat(fv.Scalar())
		if want != got {
			return FillValue{}, invalidFill(dt, v)
		}
	}
	return fv, nil
}

// ZeroFillValue returns the zero value of dt, used when a metadata document
// omits fill_value.
func ZeroFillValue(dt DataType) FillValue {
	return FillValue{dtype: dt}
}

// DataType returns the fill value's element type.
func (f FillValue) DataType() DataType { return f.dtype }

// Bytes returns the element's encoded form, little-endian, sized to
// dt.Size().
func (f FillValue) Bytes() []byte {
	buf := make([]byte, f.dtype.Size())
	f.putInto(buf)
	return buf
}

// putInto writes the fill element's bytes into the front of buf.
func (f FillValue) putInto(buf []byte) {
	switch f.dtype.Size() {
	case 1:
		buf[0] = byte(f.bits)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(f.bits))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(f.bits))
	case 8:
		binary.LittleEndian.PutUint64(buf, f.bits)
	}
}

// Fill repeats the fill element across buf, which must be a whole multiple
// of the element size. This is the hot path for initializing fill-valued
// chunks.
func (f FillValue) Fill(buf []byte) {
	size := f.dtype.Size()
	if size == 0 || len(buf) == 0 {
		return
	}
	f.putInto(buf[:size])
	// Classic doubling fill: after the first element is placed, repeatedly
	// copy the filled prefix to double it until buf is covered.
	for filled := size; filled < len(buf); filled *= 2 {
		n := filled
		if n > len(buf)-filled {
			n = len(buf) - filled
		}
		copy(buf[filled:filled+n], buf[:n])
	}
}

// IsFill reports whether every element of buf equals the fill value. An
// empty buf is vacuously all-fill.
func (f FillValue) IsFill(buf []byte) bool {
	size := f.dtype.Size()
	if size == 0 {
		return true
	}
	if len(buf)%size != 0 {
		return false
	}
	elem := f.Bytes()
	for off := 0; off < len(buf); off += size {
		for i := 0; i < size; i++ {
			if buf[off+i] != elem[i] {
				return false
			}
		}
	}
	return true
}

// Scalar returns the fill value as a Go scalar of the natural type for dt.
func (f FillValue) Scalar() any {
	switch f.dtype {
	case Bool:
		return f.bits != 0
	case Int8:
		return int8(f.bits)
	case Int16:
		return int16(f.bits)
	case Int32:
		return int32(f.bits)
	case Int64:
		return int64(f.bits)
	case Uint8:
		return uint8(f.bits)
	case Uint16:
		return uint16(f.bits)
	case Uint32:
		return uint32(f.bits)
	case Uint64:
		return f.bits
	case Float32:
		return math.Float32frombits(uint32(f.bits))
	case Float64:
		return math.Float64frombits(f.bits)
	default:
		return nil
	}
}

// toBits converts a Go scalar to its little-endian bit pattern for dt,
// rejecting values of a kind dt cannot hold (a non-bool for Bool, a
// non-number otherwise). There is no range check: integers are truncated
// to dt's width and floats are truncated toward zero for integer types.
func toBits(dt DataType, v any) (uint64, error) {
	switch dt {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return 0, invalidFill(dt, v)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case Float32:
		f, ok := asFloat(v)
		if !ok {
			return 0, invalidFill(dt, v)
		}
		return uint64(math.Float32bits(float32(f))), nil
	case Float64:
		f, ok := asFloat(v)
		if !ok {
			return 0, invalidFill(dt, v)
		}
		return math.Float64bits(f), nil
	default:
		i, ok := asInt(v)
		if !ok {
			return 0, invalidFill(dt, v)
		}
		return maskToSize(uint64(i), dt.Size()), nil
	}
}

func maskToSize(v uint64, size int) uint64 {
	if size >= 8 {
		return v
	}
	return v & ((uint64(1) << (uint(size) * 8)) - 1)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}

func invalidFill(dt DataType, v any) error {
	return fmt.Errorf("zarrtype: %w: value %v is not representable in %s", zarrerr.Argument, v, dt)
}
