package dao

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

type Document struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title   string          `json:"title" validate:"required,max=150"`
	Content tiptap.Document `json:"content" gorm:"type:jsonb"`

	// Исходный PDF, из которого документ был сконвертирован
	SourceAssetId uuid.NullUUID `json:"source_asset" gorm:"type:uuid"`
	SourceAsset   *FileAsset    `json:"source_asset_detail,omitempty" gorm:"foreignKey:SourceAssetId" extensions:"x-nullable"`
}

// Возвращает имя таблицы для данного типа структуры.
func (Document) TableName() string { return "documents" }

func CreateDocument(db *gorm.DB, doc *Document) error {
	if doc.ID.IsNil() {
		doc.ID = GenUUID()
	}
	return db.Create(doc).Error
}

func GetDocument(db *gorm.DB, id string) (*Document, error) {
	var doc Document
	if err := db.Preload("SourceAsset").Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func GetDocumentList(db *gorm.DB, offset int, limit int) ([]Document, int64, error) {
	var count int64
	if err := db.Model(&Document{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var docs []Document
	if err := db.Order("updated_at desc").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, count, nil
}

// UpdateDocumentContent перезаписывает содержимое документа.
func UpdateDocumentContent(db *gorm.DB, id string, content *tiptap.Document) error {
	res := db.Model(&Document{}).Where("id = ?", id).Update("content", content.Clone())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func UpdateDocumentTitle(db *gorm.DB, id string, title string) error {
	res := db.Model(&Document{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func DeleteDocument(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&FileAsset{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Document{}).Error
	})
}
