package filestorage

import (
	"io"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id, err := uuid.NewV4()
	require.NoError(t, err)

	exists, err := storage.Exist(id)
	require.NoError(t, err)
	assert.False(t, exists, "object must not exist before save")

	data := []byte("%PDF-1.4 test payload")
	require.NoError(t, storage.Save(data, id, "application/pdf", &Metadata{DocumentId: "doc-1"}))

	exists, err = storage.Exist(id)
	require.NoError(t, err)
	assert.True(t, exists)

	reader, err := storage.LoadReader(id)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, data, got, "loaded content differs from saved")

	info, err := storage.GetFileInfo(id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), info.Name)
	assert.EqualValues(t, len(data), info.Size)

	var listed []string
	require.NoError(t, storage.ListRoot(func(fi FileInfo) error {
		listed = append(listed, fi.Name)
		return nil
	}))
	assert.Equal(t, []string{id.String()}, listed)

	require.NoError(t, storage.Delete(id))
	exists, err = storage.Exist(id)
	require.NoError(t, err)
	assert.False(t, exists, "object must not exist after delete")

	_, err = storage.GetFileInfo(id)
	assert.Error(t, err)
}

func TestMetadataGetMap(t *testing.T) {
	assert.Empty(t, Metadata{}.GetMap())
	assert.Equal(t,
		map[string]string{"documentId": "doc-1"},
		Metadata{DocumentId: "doc-1"}.GetMap(),
	)
}
