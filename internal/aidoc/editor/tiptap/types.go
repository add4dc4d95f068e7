// Пакет tiptap содержит модель структурированного документа редактора.
// Описывает дерево нод TipTap/ProseMirror, его валидацию, глубокое
// структурное сравнение и назначение стабильных идентификаторов нод.
package tiptap

// Document представляет корневой документ TipTap.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Node представляет узел в дереве документа.
// Используется универсальная структура с map для атрибутов для поддержки различных типов нод.
type Node struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []Node                 `json:"content,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// Mark представляет форматирование текста (bold, italic, link и т.д.).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Закрытый набор типов нод, приходящих от сервиса конвертации.
const (
	TypeDoc         = "doc"
	TypeParagraph   = "paragraph"
	TypeHeading     = "heading"
	TypeBulletList  = "bulletList"
	TypeOrderedList = "orderedList"
	TypeListItem    = "listItem"
	TypeCodeBlock   = "codeBlock"
	TypeBlockquote  = "blockQuote"
	TypeTable       = "table"
	TypeTableRow    = "tableRow"
	TypeTableHeader = "tableHeader"
	TypeTableCell   = "tableCell"
	TypeImage       = "image"
	TypeMath        = "math"
	TypeText        = "text"
)

// Типы marks текстовых нод.
const (
	MarkBold          = "bold"
	MarkItalic        = "italic"
	MarkSuperscript   = "superscript"
	MarkStrikethrough = "strikethrough"
	MarkColor         = "color"
	MarkLink          = "link"
)
