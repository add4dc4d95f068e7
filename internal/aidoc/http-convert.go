package aidoc

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/dao"
	filestorage "github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/file-storage"
)

func (s *Services) AddConvertServices(g *echo.Group) {
	g.POST("convert/", s.convertPDF)
	g.GET("convert/status/", s.getConvertStatus)
}

// convertPDF godoc
// @id convertPDF
// @Summary convert: загрузка PDF и конвертация в документ
// @Description Принимает PDF, конвертирует его во внешнем сервисе и создает документ с полученным содержимым. Файлы других типов отклоняются без обращения к сервису конвертации.
// @Tags Convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF файл"
// @Success 201 {object} dao.Document "созданный документ"
// @Failure 400 {object} apierrors.DefinedError "Загружен не PDF файл"
// @Failure 409 {object} apierrors.DefinedError "Загрузка уже выполняется"
// @Failure 502 {object} apierrors.DefinedError "Ошибка конвертации"
// @Router /api/convert/ [post]
func (s *Services) convertPDF(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidRequestBody)
	}

	contentType := fileHeader.Header.Get("Content-Type")

	file, err := fileHeader.Open()
	if err != nil {
		return EError(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return EError(c, err)
	}

	if err := s.convert.Upload(c.Request().Context(), bytes.NewReader(data), fileHeader.Filename, contentType); err != nil {
		return EError(c, err)
	}

	converted := s.convert.Result()
	s.convert.ClearResult()
	if converted == nil {
		return EErrorDefined(c, apierrors.ErrConversionBadReply)
	}
	converted.EnsureIDs()

	doc := dao.Document{
		ID:      dao.GenUUID(),
		Title:   documentTitle(fileHeader.Filename),
		Content: *converted,
	}

	// Исходный PDF сохраняется рядом с документом
	asset := dao.FileAsset{
		Id:          dao.GenUUID(),
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		DocumentId:  uuid.NullUUID{UUID: doc.ID, Valid: true},
	}
	if err := s.storage.Save(data, asset.Id, contentType, &filestorage.Metadata{DocumentId: doc.ID.String()}); err != nil {
		return EErrorDefined(c, apierrors.ErrAssetUploadFailed)
	}
	if err := dao.CreateFileAsset(s.db, &asset); err != nil {
		return EError(c, err)
	}

	doc.SourceAssetId = uuid.NullUUID{UUID: asset.Id, Valid: true}
	if err := dao.CreateDocument(s.db, &doc); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, doc)
}

// getConvertStatus godoc
// @id getConvertStatus
// @Summary convert: состояние загрузки
// @Tags Convert
// @Produce json
// @Success 200 {object} map[string]interface{} "состояние"
// @Router /api/convert/status/ [get]
func (s *Services) getConvertStatus(c echo.Context) error {
	resp := map[string]interface{}{
		"status": s.convert.Status(),
	}
	if err := s.convert.Err(); err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// documentTitle выводит название документа из имени загруженного файла.
func documentTitle(filename string) string {
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if title == "" {
		title = "Document"
	}
	if len([]rune(title)) > 150 {
		title = string([]rune(title)[:150])
	}
	return title
}
