// Пакет surface реализует редактируемую поверхность: живое, курсорное
// представление документа, которым напрямую управляет пользователь.
//
// Основные возможности:
//   - Инициализация контентом с fallback на документ по умолчанию.
//   - Сериализация текущего состояния обратно в Document (round-trip).
//   - Локальные правки с событием изменения после каждой мутации.
//   - Программная замена контента для контроллера синхронизации.
package surface

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/schema"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

var ErrNodeNotFound = errors.New("node not found on editing surface")

// Cursor указывает позицию каретки: блочная нода и смещение в ее тексте.
type Cursor struct {
	NodeID string
	Offset int
}

// Surface - редактируемая поверхность. Внутреннее состояние принадлежит
// только ей: внешний документ копируется на входе и на выходе, снимки
// никогда не разделяют память с живым деревом.
type Surface struct {
	mu sync.Mutex

	registry *schema.Registry
	doc      *tiptap.Document
	cursor   Cursor

	history    []*tiptap.Document
	maxHistory int

	onChange func(*tiptap.Document)
}

// New создает поверхность, сконфигурированную реестром типов нод.
func New(registry *schema.Registry) *Surface {
	return &Surface{
		registry:   registry,
		doc:        tiptap.DefaultContent(),
		maxHistory: 100,
	}
}

// Initialize устанавливает начальный контент. Невалидное значение молча
// заменяется документом по умолчанию: на этом этапе "нечего показывать" -
// штатная ситуация, а не ошибка пользователя.
func (s *Surface) Initialize(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !tiptap.IsValidContent(raw) {
		s.doc = tiptap.DefaultContent()
		s.cursor = Cursor{}
		return
	}

	doc, err := tiptap.ParseJSON(bytes.NewReader(raw))
	if err != nil {
		slog.Error("Parse initial content", "err", err)
		s.doc = tiptap.DefaultContent()
		s.cursor = Cursor{}
		return
	}

	s.doc = doc
	s.cursor = Cursor{}
}

// OnChange регистрирует обработчик, вызываемый после каждой локальной
// правки с новым сериализованным снимком документа.
func (s *Surface) OnChange(fn func(*tiptap.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// CurrentDocument сериализует текущее состояние поверхности в Document.
// Идентификаторы блочных нод назначаются лениво при первой сериализации
// и далее стабильны между чтениями. Сбой сериализации логируется и дает
// документ по умолчанию, но никогда не роняет сессию редактирования.
func (s *Surface) CurrentDocument() (doc *tiptap.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Surface) currentLocked() (doc *tiptap.Document) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Document serialization failed", "err", r)
			doc = tiptap.DefaultContent()
		}
	}()

	s.doc.EnsureIDs()
	return s.doc.Clone()
}

// RenderHTML рендерит текущее состояние поверхности в HTML-фрагмент
// через реестр типов нод.
func (s *Surface) RenderHTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.RenderDocument(s.doc)
}

// ReplaceContent принудительно заменяет состояние поверхности.
// Используется только контроллером синхронизации, не обработчиками
// пользовательского ввода. При recordHistory=false программная замена
// не попадает в историю отмены.
func (s *Surface) ReplaceContent(doc *tiptap.Document, recordHistory bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recordHistory {
		s.pushHistory()
	}

	s.doc = doc.Clone()
	s.clampCursor()
}

// Cursor возвращает текущую позицию каретки.
func (s *Surface) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// InsertText вставляет текст в блочную ноду по ее идентификатору.
// Пользовательская правка: двигает каретку, пишет историю и эмитит
// событие изменения.
func (s *Surface) InsertText(nodeID string, offset int, text string) error {
	s.mu.Lock()

	node := findNode(s.doc, nodeID)
	if node == nil {
		s.mu.Unlock()
		return ErrNodeNotFound
	}

	s.pushHistory()
	run := lastTextRun(node)
	if offset < 0 || offset > len(run.Text) {
		offset = len(run.Text)
	}
	run.Text = run.Text[:offset] + text + run.Text[offset:]
	s.cursor = Cursor{NodeID: nodeID, Offset: offset + len(text)}

	s.mu.Unlock()
	s.emitLocalChange()
	return nil
}

// SetNodeAttr устанавливает атрибут блочной ноды (например, formula
// math-ноды). Пользовательская правка.
func (s *Surface) SetNodeAttr(nodeID string, key string, value interface{}) error {
	s.mu.Lock()

	node := findNode(s.doc, nodeID)
	if node == nil {
		s.mu.Unlock()
		return ErrNodeNotFound
	}

	s.pushHistory()
	if node.Attrs == nil {
		node.Attrs = make(map[string]interface{})
	}
	node.Attrs[key] = value

	s.mu.Unlock()
	s.emitLocalChange()
	return nil
}

// Undo откатывает последнюю пользовательскую правку.
func (s *Surface) Undo() bool {
	s.mu.Lock()

	if len(s.history) == 0 {
		s.mu.Unlock()
		return false
	}

	s.doc = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.clampCursor()

	s.mu.Unlock()
	s.emitLocalChange()
	return true
}

// emitLocalChange сериализует документ и уведомляет подписчика.
// Любой сбой здесь логируется и не распространяется: ошибка обработчика
// не должна ронять сессию редактирования.
func (s *Surface) emitLocalChange() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Local change notification failed", "err", r)
		}
	}()

	s.mu.Lock()
	fn := s.onChange
	doc := s.currentLocked()
	s.mu.Unlock()

	if fn != nil {
		fn(doc)
	}
}

func (s *Surface) pushHistory() {
	s.history = append(s.history, s.doc.Clone())
	if len(s.history) > s.maxHistory {
		s.history = s.history[1:]
	}
}

// clampCursor сбрасывает каретку, если нода под ней исчезла после замены.
func (s *Surface) clampCursor() {
	if s.cursor.NodeID == "" {
		return
	}
	if findNode(s.doc, s.cursor.NodeID) == nil {
		s.cursor = Cursor{}
	}
}

// findNode ищет блочную ноду по стабильному идентификатору.
func findNode(doc *tiptap.Document, id string) *tiptap.Node {
	for i := range doc.Content {
		if n := findInSubtree(&doc.Content[i], id); n != nil {
			return n
		}
	}
	return nil
}

func findInSubtree(n *tiptap.Node, id string) *tiptap.Node {
	if n.AttrString("id") == id {
		return n
	}
	for i := range n.Content {
		if found := findInSubtree(&n.Content[i], id); found != nil {
			return found
		}
	}
	return nil
}

// lastTextRun возвращает последний текстовый run ноды, создавая пустой
// при необходимости.
func lastTextRun(n *tiptap.Node) *tiptap.Node {
	for i := len(n.Content) - 1; i >= 0; i-- {
		if n.Content[i].Type == tiptap.TypeText {
			return &n.Content[i]
		}
	}
	n.Content = append(n.Content, tiptap.Node{Type: tiptap.TypeText})
	return &n.Content[len(n.Content)-1]
}
