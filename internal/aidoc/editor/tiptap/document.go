package tiptap

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseJSON парсит JSON контент редактора в Document.
// Принимает io.Reader с JSON данными и возвращает распарсенный документ.
func ParseJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	if doc.Type != TypeDoc {
		return nil, errors.New("not a document: type is not \"doc\"")
	}

	if doc.Content == nil {
		doc.Content = make([]Node, 0)
	}

	return &doc, nil
}

// IsValidContent выполняет поверхностную проверку внешнего значения документа:
// JSON-объект, type == "doc", content — массив. Ноды неизвестных типов
// намеренно не отклоняются, чтобы новые типы от сервиса конвертации
// деградировали мягко, а не ломали весь документ.
func IsValidContent(raw []byte) bool {
	var shallow struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&shallow); err != nil {
		return false
	}

	if shallow.Type != TypeDoc {
		return false
	}

	// content должен быть именно массивом (допускается пустой)
	content := bytes.TrimSpace(shallow.Content)
	return len(content) > 0 && content[0] == '['
}

// DefaultContent возвращает документ по умолчанию: один пустой параграф
// с одной пустой текстовой нодой. Используется как fallback для
// невалидного внешнего контента.
func DefaultContent() *Document {
	return &Document{
		Type: TypeDoc,
		Content: []Node{
			{
				Type:    TypeParagraph,
				Content: []Node{{Type: TypeText}},
			},
		},
	}
}

// Clone возвращает глубокую структурную копию документа.
// Снимки документа никогда не разделяют mutable состояние.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{Type: d.Type, Content: make([]Node, 0, len(d.Content))}
	for _, n := range d.Content {
		clone.Content = append(clone.Content, *n.clone())
	}
	return clone
}

func (n *Node) clone() *Node {
	c := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make(map[string]interface{}, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	for _, child := range n.Content {
		c.Content = append(c.Content, *child.clone())
	}
	for _, m := range n.Marks {
		mc := Mark{Type: m.Type}
		if m.Attrs != nil {
			mc.Attrs = make(map[string]interface{}, len(m.Attrs))
			for k, v := range m.Attrs {
				mc.Attrs[k] = v
			}
		}
		c.Marks = append(c.Marks, mc)
	}
	return c
}

// Equal сравнивает два документа по глубокому структурному равенству.
// Сравнение идет через каноничный JSON: ключи map сериализуются в
// отсортированном порядке, а числовые атрибуты из разных источников
// (int после правок, float64 после json.Unmarshal) приводятся к одному виду.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// EqualContent сравнивает документы с точностью до назначения
// идентификаторов нод. Используется контроллером синхронизации:
// лениво назначенный id не должен считаться содержательной правкой,
// иначе сверка никогда не сойдется.
func EqualContent(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	as := a.Clone()
	as.StripIDs()
	bs := b.Clone()
	bs.StripIDs()
	return Equal(as, bs)
}

// StripIDs удаляет идентификаторы всех нод документа.
func (d *Document) StripIDs() {
	for i := range d.Content {
		stripSubtreeIDs(&d.Content[i])
	}
}

func stripSubtreeIDs(n *Node) {
	if n.Attrs != nil {
		delete(n.Attrs, "id")
		if len(n.Attrs) == 0 {
			n.Attrs = nil
		}
	}
	for i := range n.Content {
		stripSubtreeIDs(&n.Content[i])
	}
}

// Value реализует интерфейс driver.Valuer для сохранения Document в JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner для чтения Document из JSONB.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = *DefaultContent()
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	doc, err := ParseJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// GormDataType указывает GORM использовать тип JSONB для колонок документа.
func (Document) GormDataType() string {
	return "jsonb"
}
