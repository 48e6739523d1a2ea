package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "ticket_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "ticket_1", []byte(`{"ID":1}`)))
	data, ok, err := store.Get(ctx, "ticket_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"ID":1}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "ticket_1.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirStoreOverwrite(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user_5", []byte("a")))
	require.NoError(t, store.Set(ctx, "user_5", []byte("b")))
	data, ok, err := store.Get(ctx, "user_5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", string(data))
}
