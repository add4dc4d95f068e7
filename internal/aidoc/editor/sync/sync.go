// Пакет sync согласует внешнее значение документа с живым состоянием
// редактируемой поверхности.
//
// Сверка level-triggered: Reconcile безопасно вызывать на каждое
// изменение внешнего значения, сколько угодно раз подряд. Ветка
// "ничего не делать при равенстве" обязательна: без нее каждая
// локальная правка, вернувшаяся через внешнее значение, затирала бы
// позицию каретки и незавершенный ввод пользователя.
package sync

import (
	"bytes"
	"log/slog"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/surface"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// Controller связывает внешнее значение документа, которым владеет
// приложение, с редактируемой поверхностью.
type Controller struct {
	surface *surface.Surface
}

func NewController(s *surface.Surface) *Controller {
	return &Controller{surface: s}
}

// Reconcile согласует внешнее значение с поверхностью:
//  1. Невалидный контент заменяется документом по умолчанию, без
//     ошибки пользователю: "пока нечего показывать" - штатное состояние.
//  2. Текущий документ поверхности сравнивается с внешним значением
//     по глубокому структурному равенству.
//  3. При равенстве ничего не происходит - защита от осцилляции.
//  4. При различии поверхность принимает внешнее значение; программная
//     замена не пишется в историю отмены.
func (c *Controller) Reconcile(external []byte) {
	if !tiptap.IsValidContent(external) {
		c.surface.ReplaceContent(tiptap.DefaultContent(), false)
		return
	}

	doc, err := tiptap.ParseJSON(bytes.NewReader(external))
	if err != nil {
		slog.Error("Parse external content", "err", err)
		c.surface.ReplaceContent(tiptap.DefaultContent(), false)
		return
	}

	c.adopt(doc)
}

// ReconcileDocument - вариант Reconcile для уже распарсенного дерева.
func (c *Controller) ReconcileDocument(doc *tiptap.Document) {
	if doc == nil || doc.Type != tiptap.TypeDoc || doc.Content == nil {
		c.surface.ReplaceContent(tiptap.DefaultContent(), false)
		return
	}

	c.adopt(doc)
}

func (c *Controller) adopt(doc *tiptap.Document) {
	// Сравнение с точностью до назначения id: лениво назначенный
	// идентификатор не считается содержательной правкой
	if tiptap.EqualContent(c.surface.CurrentDocument(), doc) {
		return
	}

	c.surface.ReplaceContent(doc, false)
}
