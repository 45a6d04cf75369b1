// Package zarrerr defines the error kinds shared across the storage engine.
//
// Errors that zarrcore raises itself wrap one of the sentinels below, so
// callers can classify them with errors.Is regardless of which package
// produced them. Errors from the compression libraries behind the gzip,
// zstd and lz4 codecs are passed through without a sentinel.
package zarrerr

import "errors"

var (
	// NotFound means the store reported a key as absent. It is never fatal
	// at the engine layer: an absent chunk becomes fill value, an absent
	// sharded object with a partial read yields an all-fill result.
	NotFound = errors.New("zarrcore: not found")

	// Malformed means metadata or chunk bytes failed structural validation:
	// JSON decode failure, a decoded chunk whose byte length doesn't match
	// its declared shape/dtype, or a sharding index record pointing outside
	// its object.
	Malformed = errors.New("zarrcore: malformed data")

	// PipelineContract means a codec chain violates the composition rules:
	// more than one array-to-bytes codec, a sharding codec co-listed with
	// others, or an array-to-array codec following the array-to-bytes one.
	PipelineContract = errors.New("zarrcore: invalid codec pipeline")

	// Io means the backing store failed with an error other than not-found.
	Io = errors.New("zarrcore: store io error")

	// Argument means the caller supplied an out-of-bounds selection, a rank
	// mismatch, a value shape mismatch, or an unsupported data type.
	Argument = errors.New("zarrcore: invalid argument")
)
