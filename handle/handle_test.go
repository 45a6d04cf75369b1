package handle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmalhotra/zarrcore/ndarray"
	"github.com/rmalhotra/zarrcore/store"
	"github.com/rmalhotra/zarrcore/zarrtype"
)

func TestNoneHandle(t *testing.T) {
	h := None()
	assert.True(t, h.IsNone())
	b, err := h.Bytes(context.Background())
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestBufferHandle(t *testing.T) {
	h := FromBuffer([]byte{1, 2, 3})
	b, err := h.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestArrayHandle(t *testing.T) {
	a := ndarray.New([]int64{2}, zarrtype.Int32)
	h := FromArray(a)
	got, err := h.Array()
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, _, _, err = h.File()
	require.Error(t, err)
}

func TestFileHandle(t *testing.T) {
	s := store.NewMemStore()
	require.NoError(t, s.Set(context.Background(), "k", []byte("hello"), nil))

	h := FromFile(s, "k", nil)
	b, err := h.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)

	_, err = h.Array()
	require.Error(t, err)
}
