package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["photo"][0]
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename("photo", "Ma Photo.PNG")
	assert.True(t, strings.HasPrefix(name, "photo-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, " ")

	other := GenerateFilename("photo", "Ma Photo.PNG")
	assert.NotEqual(t, name, other, "names must not collide")
}

func TestDiskStoreSaveAndRemove(t *testing.T) {
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	name, err := store.Save(uploadHeader(t, "doc.pdf", []byte("%PDF-1.4")), "signed_pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "signed_pdf-"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreRemoveMissingFileIsNotAnError(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove("never-existed.pdf"))
}

func TestDiskStoreRemoveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	require.NoError(t, store.Remove("../outside.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "files outside the store must never be touched")
}
