package fsys

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("read", "/x", nil))

	err := Wrap("read", "/x", fs.ErrPermission)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.Equal(t, "/x", ioErr.Path)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "read /x")

	again := Wrap("copy", "/y", err)
	assert.Same(t, err, again)
}

func TestIsNotFound(t *testing.T) {
	mem := Memory()
	_, err := mem.Stat("/missing")
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(Wrap("stat", "/missing", err)))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(fs.ErrPermission))
}

func TestDirExists(t *testing.T) {
	mem := Memory()
	require.NoError(t, mem.MkdirAll("/a/b", 0755))
	require.NoError(t, afero.WriteFile(mem, "/a/file.txt", []byte("x"), 0644))

	assert.True(t, DirExists(mem, "/a"))
	assert.True(t, DirExists(mem, "/a/b"))
	assert.False(t, DirExists(mem, "/a/file.txt"))
	assert.False(t, DirExists(mem, "/nope"))
}

func TestWriteFileAtomic(t *testing.T) {
	mem := Memory()

	err := WriteFileAtomic(mem, "/cfg/nested/config.yaml", []byte("a: 1\n"), 0644)
	require.NoError(t, err)

	data, err := afero.ReadFile(mem, "/cfg/nested/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	exists, err := afero.Exists(mem, "/cfg/nested/config.yaml.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemoveIfExists(t *testing.T) {
	mem := Memory()
	require.NoError(t, afero.WriteFile(mem, "/f", []byte("x"), 0644))

	assert.NoError(t, RemoveIfExists(mem, "/f"))
	assert.NoError(t, RemoveIfExists(mem, "/f"))
}
