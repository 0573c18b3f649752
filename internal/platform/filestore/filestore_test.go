// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package filestore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/internal/platform/filestore"
)

/*
TestDisk_WriteAndDelete verifies the full lifecycle of a stored file.
*/
func TestDisk_WriteAndDelete(t *testing.T) {
	baseDir := t.TempDir()
	store, err := filestore.NewDisk(baseDir)
	require.NoError(t, err)

	// 1. Write creates the place directory and the file
	path, err := store.Write("place-1", "abc123.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "place-1", "abc123.jpg"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	// 2. Delete removes the file but keeps the directory
	require.NoError(t, store.Delete("place-1", "abc123.jpg"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// 3. Deleting a missing file is not an error
	assert.NoError(t, store.Delete("place-1", "abc123.jpg"))
}

/*
TestDisk_RemoveDirIfEmpty verifies empty-directory cleanup semantics.
*/
func TestDisk_RemoveDirIfEmpty(t *testing.T) {
	baseDir := t.TempDir()
	store, err := filestore.NewDisk(baseDir)
	require.NoError(t, err)

	_, err = store.Write("place-2", "one.png", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Write("place-2", "two.png", strings.NewReader("b"))
	require.NoError(t, err)

	dir := filepath.Join(baseDir, "place-2")

	// Directory still holds a file: must stay
	require.NoError(t, store.Delete("place-2", "one.png"))
	require.NoError(t, store.RemoveDirIfEmpty("place-2"))
	_, err = os.Stat(dir)
	assert.NoError(t, err)

	// Last file gone: directory is removed
	require.NoError(t, store.Delete("place-2", "two.png"))
	require.NoError(t, store.RemoveDirIfEmpty("place-2"))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Missing directory is a no-op
	assert.NoError(t, store.RemoveDirIfEmpty("place-2"))
}

/*
TestDisk_RemoveAll verifies the whole-place purge used on place deletion.
*/
func TestDisk_RemoveAll(t *testing.T) {
	baseDir := t.TempDir()
	store, err := filestore.NewDisk(baseDir)
	require.NoError(t, err)

	_, err = store.Write("place-3", "a.webp", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Write("place-3", "b.webp", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveAll("place-3"))

	_, err = os.Stat(filepath.Join(baseDir, "place-3"))
	assert.True(t, os.IsNotExist(err))

	// Purging an unknown place is a no-op
	assert.NoError(t, store.RemoveAll("place-404"))
}
