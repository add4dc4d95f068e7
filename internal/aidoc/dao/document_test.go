package dao

import (
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestDocumentCRUD(t *testing.T) {
	db := newTestDB(t)

	content, err := tiptap.ParseJSON(strings.NewReader(`{"type":"doc","content":[{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Title"}]}]}`))
	require.NoError(t, err)

	doc := Document{Title: "Test", Content: *content}
	require.NoError(t, CreateDocument(db, &doc))
	assert.False(t, doc.ID.IsNil(), "id must be generated on create")

	loaded, err := GetDocument(db, doc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Test", loaded.Title)

	// Содержимое переживает сериализацию в JSONB и обратно
	assert.True(t, tiptap.Equal(content, &loaded.Content), "content mismatch after db round-trip")

	// Обновление содержимого
	updated := tiptap.DefaultContent()
	require.NoError(t, UpdateDocumentContent(db, doc.ID.String(), updated))

	loaded, err = GetDocument(db, doc.ID.String())
	require.NoError(t, err)
	assert.True(t, tiptap.Equal(updated, &loaded.Content))

	// Обновление названия
	require.NoError(t, UpdateDocumentTitle(db, doc.ID.String(), "Renamed"))
	loaded, err = GetDocument(db, doc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Title)

	// Удаление
	require.NoError(t, DeleteDocument(db, doc.ID.String()))
	_, err = GetDocument(db, doc.ID.String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateMissingDocument(t *testing.T) {
	db := newTestDB(t)

	err := UpdateDocumentContent(db, GenID(), tiptap.DefaultContent())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = UpdateDocumentTitle(db, GenID(), "x")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetDocumentList(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, CreateDocument(db, &Document{Title: "Doc", Content: *tiptap.DefaultContent()}))
	}

	docs, count, err := GetDocumentList(db, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.Len(t, docs, 2)

	docs, _, err = GetDocumentList(db, 2, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestGetStaleFileAssets(t *testing.T) {
	db := newTestDB(t)

	doc := Document{Title: "Doc", Content: *tiptap.DefaultContent()}
	require.NoError(t, CreateDocument(db, &doc))

	old := FileAsset{Id: GenUUID(), Name: "orphan.pdf", CreatedAt: time.Now().AddDate(0, 0, -10)}
	require.NoError(t, db.Create(&old).Error)

	fresh := FileAsset{Id: GenUUID(), Name: "fresh.pdf", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&fresh).Error)

	attached := FileAsset{
		Id:         GenUUID(),
		Name:       "attached.pdf",
		CreatedAt:  time.Now().AddDate(0, 0, -10),
		DocumentId: uuid.NullUUID{UUID: doc.ID, Valid: true},
	}
	require.NoError(t, db.Create(&attached).Error)

	stale, err := GetStaleFileAssets(db, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)

	// Только старый неприкрепленный файл считается устаревшим
	require.Len(t, stale, 1)
	assert.Equal(t, old.Id, stale[0].Id)
}

func TestDeleteDocumentRemovesAssets(t *testing.T) {
	db := newTestDB(t)

	doc := Document{Title: "Doc", Content: *tiptap.DefaultContent()}
	require.NoError(t, CreateDocument(db, &doc))

	asset := FileAsset{
		Id:         GenUUID(),
		Name:       "source.pdf",
		DocumentId: uuid.NullUUID{UUID: doc.ID, Valid: true},
	}
	require.NoError(t, CreateFileAsset(db, &asset))

	require.NoError(t, DeleteDocument(db, doc.ID.String()))

	_, err := GetFileAsset(db, asset.Id.String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
