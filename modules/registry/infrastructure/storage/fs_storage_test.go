package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/storage"
)

func TestFSStorageRoundtrip(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFSStorage(root)
	ctx := context.Background()

	n, err := store.Save(ctx, "ab/cd/abcd1234", strings.NewReader("deed scan bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("deed scan bytes")), n)

	r, err := store.Open(ctx, "ab/cd/abcd1234")
	require.NoError(t, err)
	defer r.Close()

	payload, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "deed scan bytes", string(payload))
}

func TestFSStorageSaveLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFSStorage(root)

	_, err := store.Save(context.Background(), "aa/bb/key", strings.NewReader("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "aa", "bb"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "key", entries[0].Name())
}

func TestFSStorageRemove(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFSStorage(root)
	ctx := context.Background()

	_, err := store.Save(ctx, "aa/bb/key", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, "aa/bb/key"))

	_, err = store.Open(ctx, "aa/bb/key")
	assert.Error(t, err)

	// Removing a missing key is not an error.
	assert.NoError(t, store.Remove(ctx, "aa/bb/key"))
}
