package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), FileModeDefault))

	assert.True(t, Exists(dir))
	assert.True(t, IsDir(dir))
	assert.True(t, Exists(file))
	assert.False(t, IsDir(file))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestCanWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CanWrite(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file must be removed")

	assert.Error(t, CanWrite(filepath.Join(dir, "does-not-exist")))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "node_modules")

	created, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureDir(dir)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestMove(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "a.txt")
		dst := filepath.Join(dir, "nested", "b.txt")
		require.NoError(t, os.WriteFile(src, []byte("hello"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.False(t, Exists(src))
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "staging")
		require.NoError(t, os.MkdirAll(filepath.Join(src, "lib"), DirModeDefault))
		require.NoError(t, os.WriteFile(filepath.Join(src, "lib", "index.js"), []byte("x"), FileModeDefault))
		dst := filepath.Join(dir, "homebridge-foo")

		require.NoError(t, Move(src, dst))
		assert.True(t, Exists(filepath.Join(dst, "lib", "index.js")))
		assert.False(t, Exists(src))
	})

	t.Run("empty paths", func(t *testing.T) {
		assert.Error(t, Move("", "x"))
		assert.Error(t, Move("x", ""))
	})

	t.Run("missing source", func(t *testing.T) {
		dir := t.TempDir()
		assert.Error(t, Move(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")))
	})
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("content"), FileModeDefault))

	require.NoError(t, Copy(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.True(t, Exists(src))
}
