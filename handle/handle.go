// Package handle implements the value handle: the tagged union codec
// stages pass between each other so that a stage which can work
// directly against store bytes, or hand back an in-memory array, is
// never forced through an intermediate buffer it doesn't need.
package handle

import (
	"context"
	"fmt"

	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/store"
	"github.com/rmalhotra/zarrcore/zarrerr"
)

// Kind identifies which variant of Handle is populated.
type Kind uint8

const (
	// KindNone carries no payload; codec stages return it alongside an
	// error.
	KindNone Kind = iota
	// KindBuffer carries an in-memory byte slice, the result of a
	// bytes-to-bytes codec or an encoded array-to-bytes codec.
	KindBuffer
	// KindArray carries a decoded ndarray.Array, the result of an
	// array-to-array or array-to-bytes decode stage.
	KindArray
	// KindFile carries a pointer into a Store object rather than
	// materialized bytes, letting a later stage issue a ranged Get only
	// when it actually needs the data (e.g. the sharding codec's partial
	// reads).
	KindFile
)

// Handle is the tagged union passed between codec pipeline stages.
type Handle struct {
	kind Kind

	buf   []byte
	arr   *ndarray.Array
	store store.Store
	key   string
	rng   *store.ByteRange
}

// None returns the empty handle.
func None() Handle { return Handle{kind: KindNone} }

// FromBuffer wraps raw bytes.
func FromBuffer(b []byte) Handle { return Handle{kind: KindBuffer, buf: b} }

// FromArray wraps a decoded array.
func FromArray(a *ndarray.Array) Handle { return Handle{kind: KindArray, arr: a} }

// FromFile wraps a store reference without reading it yet.
func FromFile(s store.Store, key string, rng *store.ByteRange) Handle {
	return Handle{kind: KindFile, store: s, key: key, rng: rng}
}

// Kind reports which variant is populated.
func (h Handle) Kind() Kind { return h.kind }

// IsNone reports whether the handle carries no payload.
func (h Handle) IsNone() bool { return h.kind == KindNone }

// Bytes materializes the handle's payload as bytes, resolving a File
// handle against its store if necessary. An Array handle's payload is
// its raw backing buffer, not an encoding of it: callers needing an
// encoded form must run the array-to-bytes codec first.
func (h Handle) Bytes(ctx context.Context) ([]byte, error) {
	switch h.kind {
	case KindNone:
		return nil, nil
	case KindBuffer:
		return h.buf, nil
	case KindArray:
		return h.arr.Bytes(), nil
	case KindFile:
		b, err := h.store.Get(ctx, h.key, h.rng)
		if err != nil {
			return nil, fmt.Errorf("handle: reading %q: %w", h.key, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("handle: %w: unknown kind %d", zarrerr.Argument, h.kind)
	}
}

// Array returns the handle's array payload. It is an error to call this
// on anything but a KindArray handle; codec stages that produce arrays
// are expected to hand a KindArray handle to the next array-consuming
// stage rather than let callers coerce other kinds implicitly.
func (h Handle) Array() (*ndarray.Array, error) {
	if h.kind != KindArray {
		return nil, fmt.Errorf("handle: %w: expected array handle, got kind %d", zarrerr.PipelineContract, h.kind)
	}
	return h.arr, nil
}

// File returns the store, key and byte range of a KindFile handle.
func (h Handle) File() (store.Store, string, *store.ByteRange, error) {
	if h.kind != KindFile {
		return nil, "", nil, fmt.Errorf("handle: %w: expected file handle, got kind %d", zarrerr.PipelineContract, h.kind)
	}
	return h.store, h.key, h.rng, nil
}
