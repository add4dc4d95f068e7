// DAO (Data Access Object) - предоставляет интерфейс для взаимодействия с базой данных.  Содержит функции для работы с сущностями приложения: документами и файлами.  Обеспечивает абстракцию от конкретной реализации базы данных и упрощает доступ к данным приложения.
//
// Основные возможности:
//   - Работа с документами (создание, чтение, обновление, удаление).
//   - Доступ к файлам (сохранение, удаление, получение).
//   - Поиск устаревших неприкрепленных файлов для фоновой очистки.
package dao

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/config"
	filestorage "github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/file-storage"
)

// GenID генерирует уникальный идентификатор в формате UUID.
// Не принимает параметров и возвращает строку, представляющую собой UUID.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

var Config *config.Config
var FileStorage filestorage.FileStorage

// Migrate приводит схему базы данных к актуальному состоянию моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Document{},
		&FileAsset{},
	)
}
