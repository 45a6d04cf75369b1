// Package zarrtype provides the element data types supported by the core
// engine and the conversions between their wire encoding (little-endian
// bytes) and Go values: booleans, signed/unsigned integers of 8 through
// 64 bits, and IEEE-754 32/64-bit floats.
package zarrtype

import (
	"fmt"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

// DataType enumerates the element types a core array may hold.
type DataType uint8

const (
	Bool DataType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

// names mirrors the v3 metadata document's data_type strings.
var names = map[DataType]string{
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

var byName = func() map[string]DataType {
	m := make(map[string]DataType, len(names))
	for dt, name := range names {
		m[name] = dt
	}
	return m
}()

// String returns the v3 metadata name for dt.
func (dt DataType) String() string {
	if name, ok := names[dt]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", uint8(dt))
}

// MarshalText implements encoding.TextMarshaler so DataType can appear
// directly as a zarr.json data_type field.
func (dt DataType) MarshalText() ([]byte, error) {
	if _, ok := names[dt]; !ok {
		return nil, fmt.Errorf("zarrtype: %w: unknown data type %d", zarrerr.Argument, dt)
	}
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, ok := byName[string(text)]
	if !ok {
		return fmt.Errorf("zarrtype: %w: unknown data type %q", zarrerr.Argument, text)
	}
	*dt = parsed
	return nil
}

// ParseDataType parses a v3 metadata data_type string.
func ParseDataType(name string) (DataType, error) {
	dt, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("zarrtype: %w: unknown data type %q", zarrerr.Argument, name)
	}
	return dt, nil
}

// Size returns the element size in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether dt is one of the signed/unsigned integer types.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether dt is one of the IEEE-754 float types.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// Valid reports whether dt is one of the enumerated data types.
func (dt DataType) Valid() bool {
	_, ok := names[dt]
	return ok
}
