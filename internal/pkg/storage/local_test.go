package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutAndRemove(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := local.Put(ctx, "abc123.png", []byte("payload"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc123.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, local.Remove(ctx, "abc123.png"))
	_, err = os.Stat(filepath.Join(dir, "abc123.png"))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing key is not an error.
	assert.NoError(t, local.Remove(ctx, "abc123.png"))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = local.Put(context.Background(), "../escape.txt", []byte("x"), "text/plain")
	assert.Error(t, err)
}

func TestNewLocal_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
