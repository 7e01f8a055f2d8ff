package readinglist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "bookworld.json")
	kv := NewFileKV(path)

	_, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	store := NewStore(kv, StorageKey, nil)
	_, err = store.Toggle(ctx, "OL45804W")
	require.NoError(t, err)

	t.Run("survives a new handle", func(t *testing.T) {
		reopened := NewStore(NewFileKV(path), StorageKey, nil)
		member, err := reopened.IsMember(ctx, "OL45804W")
		require.NoError(t, err)
		assert.True(t, member)
	})

	t.Run("garbage file reads as empty", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
		ids, err := NewStore(NewFileKV(path), StorageKey, nil).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
