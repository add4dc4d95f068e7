package schema

import (
	"io"
	"log/slog"
	"slices"
	"strconv"

	"golang.org/x/net/html"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/policy"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// ParseDocument восстанавливает дерево документа из его HTML-представления.
// Обратная операция к RenderDocument: идентификаторы нод читаются из
// data-node-id, формулы из data-formula.
func (r *Registry) ParseDocument(rd io.Reader) (*tiptap.Document, error) {
	rootNode, err := html.Parse(rd)
	if err != nil {
		return nil, err
	}

	doc := &tiptap.Document{Type: tiptap.TypeDoc, Content: make([]tiptap.Node, 0)}

	for el := getBody(rootNode).FirstChild; el != nil; el = el.NextSibling {
		if el.Type != html.ElementNode {
			continue
		}
		if n := r.parseBlock(el); n != nil {
			doc.Content = append(doc.Content, *n)
		}
	}

	return doc, nil
}

// parseBlock восстанавливает одну блочную ноду из HTML-элемента.
func (r *Registry) parseBlock(el *html.Node) *tiptap.Node {
	var n *tiptap.Node

	switch el.Data {
	case "p":
		n = parseParagraphAttrs(el)
		parseInlineContent(el, n)
	case "h1", "h2":
		n = parseHeadingAttrs(el)
		parseInlineContent(el, n)
	case "ul", "ol":
		n = parseListAttrs(el)
		r.parseBlockContent(el, n)
	case "li":
		n = parseListItemAttrs(el)
		r.parseBlockContent(el, n)
	case "pre":
		n = parseCodeBlockAttrs(el)
		if text := elementText(el); text != "" {
			n.Content = append(n.Content, tiptap.Node{Type: tiptap.TypeText, Text: text})
		}
	case "blockquote":
		n = parseBlockquoteAttrs(el)
		r.parseBlockContent(el, n)
	case "table":
		n = parseTableAttrs(el)
		body := findElementByTagName(el, "tbody")
		if body == nil {
			body = el
		}
		r.parseBlockContent(body, n)
	case "tr":
		n = parseTableRowAttrs(el)
		r.parseBlockContent(el, n)
	case "th", "td":
		n = parseTableCellAttrs(el)
		r.parseBlockContent(el, n)
	case "img":
		n = parseImageAttrs(el)
	case "span":
		if attrExists("data-formula", el.Attr) {
			n = parseMathAttrs(el)
		}
	}

	return n
}

// parseBlockContent собирает дочерние блочные ноды контейнера.
func (r *Registry) parseBlockContent(el *html.Node, n *tiptap.Node) {
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if block := r.parseBlock(child); block != nil {
			n.Content = append(n.Content, *block)
		}
	}
}

// parseInlineContent собирает текстовые ноды с marks внутри параграфа
// или заголовка. Пустой элемент дает один пустой текстовый run,
// чтобы документ по умолчанию проходил round-trip без изменений.
func parseInlineContent(el *html.Node, n *tiptap.Node) {
	parseInline(el, nil, &n.Content)
	if len(n.Content) == 0 {
		n.Content = append(n.Content, tiptap.Node{Type: tiptap.TypeText})
	}
}

func parseInline(el *html.Node, marks []tiptap.Mark, out *[]tiptap.Node) {
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if child.Data == "" {
				continue
			}
			node := tiptap.Node{Type: tiptap.TypeText, Text: child.Data}
			if len(marks) > 0 {
				node.Marks = sortedMarks(marks)
			}
			*out = append(*out, node)
		case html.ElementNode:
			parseInlineElement(child, marks, out)
		}
	}
}

func parseInlineElement(el *html.Node, marks []tiptap.Mark, out *[]tiptap.Node) {
	switch el.Data {
	case "strong", "b":
		parseInline(el, withMark(marks, tiptap.Mark{Type: tiptap.MarkBold}), out)
	case "em", "i":
		parseInline(el, withMark(marks, tiptap.Mark{Type: tiptap.MarkItalic}), out)
	case "s", "del", "strike":
		parseInline(el, withMark(marks, tiptap.Mark{Type: tiptap.MarkStrikethrough}), out)
	case "sup":
		parseInline(el, withMark(marks, tiptap.Mark{Type: tiptap.MarkSuperscript}), out)
	case "a":
		href := getAttrValue("href", el.Attr)
		if policy.ValidLink(href) {
			mark := tiptap.Mark{Type: tiptap.MarkLink, Attrs: map[string]interface{}{"href": href}}
			parseInline(el, withMark(marks, mark), out)
		} else {
			parseInline(el, marks, out)
		}
	case "span":
		if attrExists("data-formula", el.Attr) {
			if math := parseMathAttrs(el); math != nil {
				*out = append(*out, *math)
			}
			return
		}
		if color := styleValue(el, "color"); policy.ValidColor(color) {
			mark := tiptap.Mark{Type: tiptap.MarkColor, Attrs: map[string]interface{}{"color": color}}
			parseInline(el, withMark(marks, mark), out)
			return
		}
		parseInline(el, marks, out)
	case "img":
		if img := parseImageAttrs(el); img != nil {
			*out = append(*out, *img)
		}
	default:
		slog.Debug("Unknown inline element", "tag", el.Data)
		parseInline(el, marks, out)
	}
}

func withMark(marks []tiptap.Mark, mark tiptap.Mark) []tiptap.Mark {
	return append(slices.Clone(marks), mark)
}

// idAttrs восстанавливает стабильный идентификатор ноды из data-node-id.
func idAttrs(el *html.Node) map[string]interface{} {
	if id := getAttrValue("data-node-id", el.Attr); id != "" {
		return map[string]interface{}{"id": id}
	}
	return nil
}

func parseParagraphAttrs(el *html.Node) *tiptap.Node {
	return &tiptap.Node{Type: tiptap.TypeParagraph, Attrs: idAttrs(el)}
}

func parseHeadingAttrs(el *html.Node) *tiptap.Node {
	level := 1
	if el.Data == "h2" {
		level = 2
	}
	n := &tiptap.Node{Type: tiptap.TypeHeading, Attrs: idAttrs(el)}
	if n.Attrs == nil {
		n.Attrs = make(map[string]interface{})
	}
	n.Attrs["level"] = level
	return n
}

func parseListAttrs(el *html.Node) *tiptap.Node {
	kind := tiptap.TypeBulletList
	if el.Data == "ol" {
		kind = tiptap.TypeOrderedList
	}
	return &tiptap.Node{Type: kind, Attrs: idAttrs(el)}
}

func parseListItemAttrs(el *html.Node) *tiptap.Node {
	return &tiptap.Node{Type: tiptap.TypeListItem, Attrs: idAttrs(el)}
}

func parseCodeBlockAttrs(el *html.Node) *tiptap.Node {
	n := &tiptap.Node{Type: tiptap.TypeCodeBlock, Attrs: idAttrs(el)}
	if lang := getAttrValue("data-language", el.Attr); lang != "" {
		if n.Attrs == nil {
			n.Attrs = make(map[string]interface{})
		}
		n.Attrs["language"] = lang
	}
	return n
}

func parseBlockquoteAttrs(el *html.Node) *tiptap.Node {
	return &tiptap.Node{Type: tiptap.TypeBlockquote, Attrs: idAttrs(el)}
}

func parseTableAttrs(el *html.Node) *tiptap.Node {
	return &tiptap.Node{Type: tiptap.TypeTable, Attrs: idAttrs(el)}
}

func parseTableRowAttrs(el *html.Node) *tiptap.Node {
	return &tiptap.Node{Type: tiptap.TypeTableRow, Attrs: idAttrs(el)}
}

func parseTableCellAttrs(el *html.Node) *tiptap.Node {
	kind := tiptap.TypeTableCell
	if el.Data == "th" {
		kind = tiptap.TypeTableHeader
	}
	n := &tiptap.Node{Type: kind, Attrs: idAttrs(el)}

	colspan, _ := strconv.Atoi(getAttrValue("colspan", el.Attr))
	rowspan, _ := strconv.Atoi(getAttrValue("rowspan", el.Attr))
	if colspan > 1 || rowspan > 1 {
		if n.Attrs == nil {
			n.Attrs = make(map[string]interface{})
		}
		if colspan > 1 {
			n.Attrs["colspan"] = colspan
		}
		if rowspan > 1 {
			n.Attrs["rowspan"] = rowspan
		}
	}

	return n
}

func parseImageAttrs(el *html.Node) *tiptap.Node {
	src := getAttrValue("src", el.Attr)
	if src == "" {
		return nil
	}
	n := &tiptap.Node{Type: tiptap.TypeImage, Attrs: idAttrs(el)}
	if n.Attrs == nil {
		n.Attrs = make(map[string]interface{})
	}
	n.Attrs["src"] = src
	return n
}

func parseMathAttrs(el *html.Node) *tiptap.Node {
	n := &tiptap.Node{Type: tiptap.TypeMath, Attrs: idAttrs(el)}
	if n.Attrs == nil {
		n.Attrs = make(map[string]interface{})
	}
	n.Attrs["formula"] = getAttrValue("data-formula", el.Attr)
	return n
}
