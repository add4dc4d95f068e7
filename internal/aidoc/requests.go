// Пакет aidoc предоставляет структуры запросов API для работы с документами.
//
// Основные возможности:
//   - Создание документов с начальным содержимым.
//   - Частичное обновление документов (название, содержимое).
package aidoc

import (
	"bytes"
	"encoding/json"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

type CreateDocumentRequest struct {
	Title   string          `json:"title" validate:"documentTitle"`
	Content json.RawMessage `json:"content"`
}

func (req *CreateDocumentRequest) Bind(doc *dao.Document) error {
	doc.Title = req.Title

	if len(req.Content) == 0 {
		doc.Content = *tiptap.DefaultContent()
		return nil
	}

	content, err := parseContent(req.Content)
	if err != nil {
		return err
	}
	doc.Content = *content
	return nil
}

type UpdateDocumentRequest struct {
	Title   *string         `json:"title" validate:"omitempty,documentTitle"`
	Content json.RawMessage `json:"content"`
}

func (req *UpdateDocumentRequest) Bind(doc *dao.Document) error {
	if req.Title != nil {
		doc.Title = *req.Title
	}

	if len(req.Content) > 0 {
		content, err := parseContent(req.Content)
		if err != nil {
			return err
		}
		doc.Content = *content
	}
	return nil
}

func parseContent(raw json.RawMessage) (*tiptap.Document, error) {
	if !tiptap.IsValidContent(raw) {
		return nil, apierrors.ErrDocumentBadContent
	}
	content, err := tiptap.ParseJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, apierrors.ErrDocumentBadContent
	}
	content.EnsureIDs()
	return content, nil
}
