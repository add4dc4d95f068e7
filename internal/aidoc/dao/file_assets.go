package dao

import (
	"log/slog"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type FileAsset struct {
	Id        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	DocumentId uuid.NullUUID `json:"document" gorm:"type:uuid;index"`
}

// Возвращает имя таблицы для данного типа структуры.
func (FileAsset) TableName() string { return "file_assets" }

func CreateFileAsset(db *gorm.DB, asset *FileAsset) error {
	if asset.Id.IsNil() {
		asset.Id = GenUUID()
	}
	return db.Create(asset).Error
}

func GetFileAsset(db *gorm.DB, id string) (*FileAsset, error) {
	var asset FileAsset
	if err := db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetStaleFileAssets возвращает файлы, не прикрепленные ни к одному
// документу и созданные раньше cutoff. Кандидаты на фоновую очистку.
func GetStaleFileAssets(db *gorm.DB, cutoff time.Time) ([]FileAsset, error) {
	var assets []FileAsset
	if err := db.Where("document_id IS NULL AND created_at < ?", cutoff).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// DeleteFileAsset удаляет запись о файле и сам файл из хранилища.
func DeleteFileAsset(db *gorm.DB, asset *FileAsset) error {
	if err := db.Delete(asset).Error; err != nil {
		return err
	}
	if FileStorage != nil {
		if err := FileStorage.Delete(asset.Id); err != nil {
			slog.Error("Delete file from storage", "id", asset.Id, "err", err)
		}
	}
	return nil
}
