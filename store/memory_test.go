package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreGetSetRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Set(ctx, "c0", []byte("hello"), nil))

	got, err := s.Get(ctx, "c0", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	ok, err := s.Exists(ctx, "c0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemStoreGetAbsentReturnsNilNil(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	got, err := s.Get(ctx, "missing", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemStoreByteRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "obj", []byte("0123456789"), nil))

	start := int64(2)
	end := int64(5)
	got, err := s.Get(ctx, "obj", &ByteRange{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), got)

	negStart := int64(-3)
	got, err = s.Get(ctx, "obj", &ByteRange{Start: &negStart})
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), got)
}

func TestMemStorePositionalSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "obj", []byte("0123456789"), nil))

	start := int64(2)
	require.NoError(t, s.Set(ctx, "obj", []byte("XY"), &ByteRange{Start: &start}))

	got, err := s.Get(ctx, "obj", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("01XY456789"), got)
}

func TestMemStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Delete(ctx, "never-existed"))

	require.NoError(t, s.Set(ctx, "obj", []byte("x"), nil))
	require.NoError(t, s.Delete(ctx, "obj"))
	require.NoError(t, s.Delete(ctx, "obj"))

	ok, err := s.Exists(ctx, "obj")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStoreKeysSorted(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Set(ctx, "c.1.0", []byte("a"), nil))
	require.NoError(t, s.Set(ctx, "c.0.0", []byte("b"), nil))

	assert.Equal(t, []string{"c.0.0", "c.1.0"}, s.Keys())
}
