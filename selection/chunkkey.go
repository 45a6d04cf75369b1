package selection

import "strconv"

// ChunkCoord identifies one chunk in the regular grid: one non-negative
// integer per dimension.
type ChunkCoord []int64

// KeyEncodingName is the chunk_key_encoding variant named in metadata.
type KeyEncodingName string

const (
	EncodingDefault KeyEncodingName = "default"
	EncodingV2      KeyEncodingName = "v2"
)

// ChunkKeyEncoding derives a chunk's store key from its coordinate.
// Either separator is valid under either variant.
type ChunkKeyEncoding struct {
	Name      KeyEncodingName
	Separator string
}

// DefaultEncoding returns the default-variant encoding with separator sep
// ("." or "/").
func DefaultEncoding(sep string) ChunkKeyEncoding {
	return ChunkKeyEncoding{Name: EncodingDefault, Separator: sep}
}

// Key renders coord as a store key string.
func (e ChunkKeyEncoding) Key(coord ChunkCoord) string {
	switch e.Name {
	case EncodingV2:
		if len(coord) == 0 {
			return "0"
		}
		return joinCoord(coord, e.Separator)
	default: // EncodingDefault
		if len(coord) == 0 {
			return "c"
		}
		return "c" + e.Separator + joinCoord(coord, e.Separator)
	}
}

func joinCoord(coord ChunkCoord, sep string) string {
	out := strconv.FormatInt(coord[0], 10)
	for _, c := range coord[1:] {
		out += sep + strconv.FormatInt(c, 10)
	}
	return out
}
