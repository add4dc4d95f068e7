package tiptap

import (
	"github.com/gofrs/uuid"
)

// EnsureID возвращает стабильный идентификатор ноды. Если идентификатор
// еще не назначен, генерируется новый uuid V4 и запоминается в Attrs ноды,
// поэтому повторные рендеры не перегенерируют id. Текстовые ноды
// идентификаторов не несут.
func (n *Node) EnsureID() string {
	if n.Type == TypeText {
		return ""
	}

	if id := n.AttrString("id"); id != "" {
		return id
	}

	id, _ := uuid.NewV4()
	if n.Attrs == nil {
		n.Attrs = make(map[string]interface{})
	}
	n.Attrs["id"] = id.String()
	return id.String()
}

// EnsureIDs назначает идентификаторы всем блочным нодам документа.
// Вызывается при первом рендере; уже назначенные id не меняются.
func (d *Document) EnsureIDs() {
	for i := range d.Content {
		ensureSubtreeIDs(&d.Content[i])
	}
}

func ensureSubtreeIDs(n *Node) {
	n.EnsureID()
	for i := range n.Content {
		ensureSubtreeIDs(&n.Content[i])
	}
}

// AttrString безопасно извлекает строковый атрибут ноды.
func (n *Node) AttrString(key string) string {
	return getAttrString(n.Attrs, key)
}

// AttrInt безопасно извлекает целочисленный атрибут ноды.
func (n *Node) AttrInt(key string) int {
	return getAttrInt(n.Attrs, key)
}

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// getAttrInt безопасно извлекает целочисленный атрибут из map.
func getAttrInt(attrs map[string]interface{}, key string) int {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	// Может быть float64 из JSON
	if f, ok := val.(float64); ok {
		return int(f)
	}

	if i, ok := val.(int); ok {
		return i
	}

	return 0
}
