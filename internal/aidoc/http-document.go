package aidoc

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/dao"
)

type DocumentContext struct {
	echo.Context
	Document *dao.Document
}

// DocumentMiddleware загружает документ по id из пути в контекст запроса.
func (s *Services) DocumentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := dao.GetDocument(s.db, c.Param("documentId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrDocumentNotFound)
			}
			return EError(c, err)
		}
		return next(DocumentContext{c, doc})
	}
}

func (s *Services) AddDocumentServices(g *echo.Group) {
	g.GET("documents/", s.getDocumentList)
	g.POST("documents/", s.createDocument)

	documentGroup := g.Group("documents/:documentId", s.DocumentMiddleware)
	documentGroup.GET("/", s.getDocument)
	documentGroup.PATCH("/", s.updateDocument)
	documentGroup.DELETE("/", s.deleteDocument)
	documentGroup.GET("/html/", s.getDocumentHTML)
}

// getDocumentList godoc
// @id getDocumentList
// @Summary documents: список документов
// @Description Возвращает документы, отсортированные по времени изменения
// @Tags Documents
// @Produce json
// @Param offset query int false "Смещение"
// @Param limit query int false "Количество, по умолчанию 25"
// @Success 200 {array} dao.Document "документы"
// @Failure 500 {object} apierrors.DefinedError "Ошибка сервера"
// @Router /api/documents/ [get]
func (s *Services) getDocumentList(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	docs, count, err := dao.GetDocumentList(s.db, offset, limit)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  count,
		"result": docs,
	})
}

// createDocument godoc
// @id createDocument
// @Summary documents: создание документа
// @Description Создает документ с указанным содержимым или пустым документом по умолчанию
// @Tags Documents
// @Accept json
// @Produce json
// @Param data body CreateDocumentRequest true "данные документа"
// @Success 201 {object} dao.Document "созданный документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректные параметры запроса"
// @Failure 500 {object} apierrors.DefinedError "Ошибка сервера"
// @Router /api/documents/ [post]
func (s *Services) createDocument(c echo.Context) error {
	var req CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidRequestBody)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	var doc dao.Document
	if err := req.Bind(&doc); err != nil {
		return EError(c, err)
	}

	if err := dao.CreateDocument(s.db, &doc); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, doc)
}

// getDocument godoc
// @id getDocument
// @Summary documents: получение документа
// @Tags Documents
// @Produce json
// @Param documentId path string true "Id документа"
// @Success 200 {object} dao.Document "документ"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/documents/{documentId}/ [get]
func (s *Services) getDocument(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(DocumentContext).Document)
}

// updateDocument godoc
// @id updateDocument
// @Summary documents: обновление документа
// @Description Обновляет название и/или содержимое документа
// @Tags Documents
// @Accept json
// @Produce json
// @Param documentId path string true "Id документа"
// @Param data body UpdateDocumentRequest true "изменения"
// @Success 200 {object} dao.Document "обновленный документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректные параметры запроса"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/documents/{documentId}/ [patch]
func (s *Services) updateDocument(c echo.Context) error {
	doc := c.(DocumentContext).Document

	var req UpdateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidRequestBody)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	if err := req.Bind(doc); err != nil {
		return EError(c, err)
	}

	if err := s.db.Save(doc).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, doc)
}

// deleteDocument godoc
// @id deleteDocument
// @Summary documents: удаление документа
// @Description Удаляет документ вместе с прикрепленными файлами
// @Tags Documents
// @Param documentId path string true "Id документа"
// @Success 204 "документ удален"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Router /api/documents/{documentId}/ [delete]
func (s *Services) deleteDocument(c echo.Context) error {
	doc := c.(DocumentContext).Document
	if err := dao.DeleteDocument(s.db, doc.ID.String()); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// getDocumentHTML godoc
// @id getDocumentHTML
// @Summary documents: HTML-представление документа
// @Description Рендерит документ в санитизированный HTML-фрагмент с формулами
// @Tags Documents
// @Produce html
// @Param documentId path string true "Id документа"
// @Success 200 {string} string "HTML-фрагмент"
// @Failure 404 {object} apierrors.DefinedError "Документ не найден"
// @Failure 500 {object} apierrors.DefinedError "Ошибка рендеринга"
// @Router /api/documents/{documentId}/html/ [get]
func (s *Services) getDocumentHTML(c echo.Context) error {
	doc := c.(DocumentContext).Document

	html, err := s.registry.RenderDocument(&doc.Content)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrDocumentRenderFailed)
	}

	return c.HTML(http.StatusOK, html)
}

// getFile godoc
// @id getFile
// @Summary files: получение файла
// @Tags Files
// @Param fileId path string true "Id файла"
// @Success 200 {file} file "содержимое файла"
// @Failure 404 {object} apierrors.DefinedError "Файл не найден"
// @Router /api/file/{fileId}/ [get]
func (s *Services) getFile(c echo.Context) error {
	asset, err := dao.GetFileAsset(s.db, c.Param("fileId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrAssetNotFound)
		}
		return EError(c, err)
	}

	// Запись в базе могла пережить сам объект в хранилище
	exists, err := s.storage.Exist(asset.Id)
	if err != nil {
		return EError(c, err)
	}
	if !exists {
		return EErrorDefined(c, apierrors.ErrAssetNotFound)
	}

	info, err := s.storage.GetFileInfo(asset.Id)
	if err != nil {
		return EError(c, err)
	}

	reader, err := s.storage.LoadReader(asset.Id)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrAssetNotFound)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	return c.Stream(http.StatusOK, asset.ContentType, reader)
}
