package schema

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/katex"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/policy"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// RenderDocument рендерит дерево документа в безопасный HTML-фрагмент.
// Блочные ноды при первом рендере получают стабильный идентификатор,
// который выводится в data-node-id и в title-подсказку элемента.
func (r *Registry) RenderDocument(doc *tiptap.Document) (string, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div"}

	for i := range doc.Content {
		r.appendNode(root, &doc.Content[i])
	}

	var buf bytes.Buffer
	for el := root.FirstChild; el != nil; el = el.NextSibling {
		if err := html.Render(&buf, el); err != nil {
			return "", err
		}
	}

	return policy.Fragment.Sanitize(buf.String()), nil
}

// appendNode рендерит одну ноду и ее поддерево в родительский HTML-элемент.
func (r *Registry) appendNode(parent *html.Node, n *tiptap.Node) {
	if n.Type == tiptap.TypeText {
		appendText(parent, n)
		return
	}

	spec, ok := r.Lookup(n.Type)
	if !ok {
		// Неизвестный тип от сервиса конвертации рендерится как ничего,
		// остальной документ не страдает
		slog.Warn("Unknown node type", "type", n.Type)
		return
	}

	tag, attrs := spec.Render(n)
	el := &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
	parent.AppendChild(el)

	switch {
	case n.Type == tiptap.TypeMath:
		// Единственный дочерний контент math-ноды - вывод рендерера формул
		spliceFragment(el, katex.Render(n.AttrString("formula")))
	case n.Type == tiptap.TypeCodeBlock:
		el.AppendChild(&html.Node{Type: html.TextNode, Data: plainText(n)})
	case n.Type == tiptap.TypeTable:
		tbody := &html.Node{Type: html.ElementNode, Data: "tbody"}
		el.AppendChild(tbody)
		for i := range n.Content {
			r.appendNode(tbody, &n.Content[i])
		}
	case spec.Atomic:
		// нет дочерних нод
	default:
		for i := range n.Content {
			r.appendNode(el, &n.Content[i])
		}
	}
}

// blockAttrs возвращает общие атрибуты блочной ноды: стабильный
// идентификатор в data-node-id и человекочитаемую title-подсказку.
func blockAttrs(n *tiptap.Node) []html.Attribute {
	id := n.EnsureID()
	return []html.Attribute{
		{Key: "data-node-id", Val: id},
		{Key: "title", Val: id},
	}
}

func renderParagraph(n *tiptap.Node) (string, []html.Attribute) {
	return "p", blockAttrs(n)
}

func renderHeading(n *tiptap.Node) (string, []html.Attribute) {
	level := n.AttrInt("level")
	if level != 2 {
		level = 1
	}
	return "h" + strconv.Itoa(level), blockAttrs(n)
}

func renderBulletList(n *tiptap.Node) (string, []html.Attribute) {
	return "ul", blockAttrs(n)
}

func renderOrderedList(n *tiptap.Node) (string, []html.Attribute) {
	return "ol", blockAttrs(n)
}

func renderListItem(n *tiptap.Node) (string, []html.Attribute) {
	return "li", blockAttrs(n)
}

func renderCodeBlock(n *tiptap.Node) (string, []html.Attribute) {
	attrs := blockAttrs(n)
	if lang := n.AttrString("language"); lang != "" {
		attrs = append(attrs, html.Attribute{Key: "data-language", Val: lang})
	}
	return "pre", attrs
}

func renderBlockquote(n *tiptap.Node) (string, []html.Attribute) {
	return "blockquote", blockAttrs(n)
}

func renderTable(n *tiptap.Node) (string, []html.Attribute) {
	return "table", blockAttrs(n)
}

func renderTableRow(n *tiptap.Node) (string, []html.Attribute) {
	return "tr", blockAttrs(n)
}

func renderTableHeader(n *tiptap.Node) (string, []html.Attribute) {
	return "th", spanAttrs(n)
}

func renderTableCell(n *tiptap.Node) (string, []html.Attribute) {
	return "td", spanAttrs(n)
}

func spanAttrs(n *tiptap.Node) []html.Attribute {
	attrs := blockAttrs(n)
	if colspan := n.AttrInt("colspan"); colspan > 1 {
		attrs = append(attrs, html.Attribute{Key: "colspan", Val: strconv.Itoa(colspan)})
	}
	if rowspan := n.AttrInt("rowspan"); rowspan > 1 {
		attrs = append(attrs, html.Attribute{Key: "rowspan", Val: strconv.Itoa(rowspan)})
	}
	return attrs
}

func renderImage(n *tiptap.Node) (string, []html.Attribute) {
	attrs := blockAttrs(n)
	if src := n.AttrString("src"); src != "" {
		attrs = append(attrs, html.Attribute{Key: "src", Val: src})
	}
	return "img", attrs
}

func renderMath(n *tiptap.Node) (string, []html.Attribute) {
	attrs := blockAttrs(n)
	attrs = append(attrs,
		html.Attribute{Key: "class", Val: "aidoc-math"},
		html.Attribute{Key: "data-formula", Val: n.AttrString("formula")},
	)
	return "span", attrs
}

// appendText рендерит текстовую ноду, оборачивая ее в элементы marks
// в каноничном порядке: bold, italic, strikethrough, superscript, color, link.
func appendText(parent *html.Node, n *tiptap.Node) {
	parent.AppendChild(wrapText(n))
}

// wrapText строит цепочку элементов форматирования вокруг текста.
func wrapText(n *tiptap.Node) *html.Node {
	node := &html.Node{Type: html.TextNode, Data: n.Text}

	for _, mark := range sortedMarks(n.Marks) {
		wrapper := markElement(mark)
		if wrapper == nil {
			continue
		}
		wrapper.AppendChild(node)
		node = wrapper
	}

	return node
}

// markElement возвращает HTML-обертку для mark. Невалидные marks
// (например link с запрещенной схемой) просто не рендерятся.
func markElement(mark tiptap.Mark) *html.Node {
	switch mark.Type {
	case tiptap.MarkBold:
		return &html.Node{Type: html.ElementNode, Data: "strong"}
	case tiptap.MarkItalic:
		return &html.Node{Type: html.ElementNode, Data: "em"}
	case tiptap.MarkStrikethrough:
		return &html.Node{Type: html.ElementNode, Data: "s"}
	case tiptap.MarkSuperscript:
		return &html.Node{Type: html.ElementNode, Data: "sup"}
	case tiptap.MarkColor:
		color := getMarkAttr(mark, "color")
		if !policy.ValidColor(color) {
			return nil
		}
		return &html.Node{
			Type: html.ElementNode,
			Data: "span",
			Attr: []html.Attribute{{Key: "style", Val: "color: " + color}},
		}
	case tiptap.MarkLink:
		href := getMarkAttr(mark, "href")
		if !policy.ValidLink(href) {
			// ссылка с недопустимой схемой не становится кликабельной
			return nil
		}
		return &html.Node{
			Type: html.ElementNode,
			Data: "a",
			Attr: []html.Attribute{{Key: "href", Val: href}},
		}
	default:
		slog.Debug("Unknown mark type", "type", mark.Type)
		return nil
	}
}

func getMarkAttr(mark tiptap.Mark, key string) string {
	if mark.Attrs == nil {
		return ""
	}
	s, _ := mark.Attrs[key].(string)
	return s
}

// markRank задает каноничный порядок marks.
var markRank = map[string]int{
	tiptap.MarkBold:          0,
	tiptap.MarkItalic:        1,
	tiptap.MarkStrikethrough: 2,
	tiptap.MarkSuperscript:   3,
	tiptap.MarkColor:         4,
	tiptap.MarkLink:          5,
}

func sortedMarks(marks []tiptap.Mark) []tiptap.Mark {
	sorted := make([]tiptap.Mark, len(marks))
	copy(sorted, marks)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && markRank[sorted[j].Type] < markRank[sorted[j-1].Type]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// plainText собирает текст дочерних нод (содержимое блока кода).
func plainText(n *tiptap.Node) string {
	var b strings.Builder
	for _, child := range n.Content {
		if child.Type == tiptap.TypeText {
			b.WriteString(child.Text)
		}
	}
	return b.String()
}

// spliceFragment вставляет готовый HTML-фрагмент дочерним контентом элемента.
func spliceFragment(parent *html.Node, fragment string) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: fragment})
		return
	}
	for _, node := range nodes {
		parent.AppendChild(node)
	}
}
