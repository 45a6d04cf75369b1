// Package store defines the key-addressed binary blob service that backs
// the chunk engine, and a reference in-memory implementation.
//
// Concrete production backends (local filesystem, remote object storage)
// plug in behind the Store interface; only MemStore lives here.
package store

import "context"

// ByteRange selects a sub-range of an object's bytes. Start may be
// negative, meaning "this many bytes from the end". Either field may be
// nil, meaning "from the beginning" / "through the end".
type ByteRange struct {
	Start *int64
	End   *int64
}

// Resolve resolves a ByteRange against an object of the given total
// length into concrete, in-bounds [start, end) offsets.
func (r ByteRange) Resolve(total int64) (start, end int64) {
	start, end = 0, total
	if r.Start != nil {
		start = *r.Start
		if start < 0 {
			start += total
		}
		if start < 0 {
			start = 0
		}
	}
	if r.End != nil {
		end = *r.End
		if end < 0 {
			end += total
		}
	}
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// Store is a key-addressed binary blob service with byte-range support.
//
// Implementations report an absent key from Get as a nil byte slice plus
// nil error (see Get's doc), not as an error, and wrap any other store
// failure in zarrerr.Io. All operations return only once
// their effect is visible to a subsequent call from the same caller;
// cross-caller visibility follows the backing store's own semantics.
type Store interface {
	// Get returns the bytes at key, optionally restricted to byteRange. It
	// returns (nil, nil) when the key does not exist, is a directory, or is
	// otherwise unreadable by policy — never an error for plain absence.
	Get(ctx context.Context, key string, byteRange *ByteRange) ([]byte, error)

	// Set stores value at key. Without a byte range this replaces the
	// object outright; with byteRange.Start set (End is ignored), it
	// performs a positional overwrite and the caller must ensure the
	// object already exists and is large enough.
	Set(ctx context.Context, key string, value []byte, byteRange *ByteRange) error

	// Delete idempotently removes key; deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is currently stored.
	Exists(ctx context.Context, key string) (bool, error)
}
