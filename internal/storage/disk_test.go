package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAssignsUniqueNamesAndWritesContent(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Store(Upload{Filename: "orden.pdf", Size: 5, Content: strings.NewReader("hola!")})
	require.NoError(t, err)
	b, err := s.Store(Upload{Filename: "orden.pdf", Size: 5, Content: strings.NewReader("mundo")})
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same client filename must not collide")
	assert.True(t, strings.HasPrefix(a, "archivo-"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))

	data, err := os.ReadFile(filepath.Join(s.Dir(), a))
	require.NoError(t, err)
	assert.Equal(t, "hola!", string(data))
}

func TestStoreDropsSuspectExtensions(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Store(Upload{Filename: "raro.extensionmuylarga", Content: strings.NewReader("x")})
	require.NoError(t, err)
	assert.False(t, strings.Contains(name, "extensionmuylarga"))
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Store(Upload{Filename: "doc.pdf", Content: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(name))
	_, statErr := os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, s.Delete(name), "deleting a missing blob is not an error")
}

func TestDeleteIgnoresPathComponents(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	name, err := s.Store(Upload{Filename: "doc.pdf", Content: strings.NewReader("x")})
	require.NoError(t, err)

	// Only the base name counts, so a traversal-looking input still hits
	// the blob inside the store directory.
	require.NoError(t, s.Delete("../"+name))
	_, statErr := os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewDiskStoreCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s, err := NewDiskStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
