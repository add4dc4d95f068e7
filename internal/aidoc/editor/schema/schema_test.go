package schema

import (
	"strings"
	"testing"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

func TestRenderDocumentAttrs(t *testing.T) {
	r := New()

	doc := &tiptap.Document{
		Type: tiptap.TypeDoc,
		Content: []tiptap.Node{{
			Type:    tiptap.TypeParagraph,
			Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "Hello"}},
		}},
	}

	html, err := r.RenderDocument(doc)
	if err != nil {
		t.Fatalf("RenderDocument failed: %v", err)
	}

	id := doc.Content[0].AttrString("id")
	if id == "" {
		t.Fatal("render must assign a node id")
	}

	// Каждая блочная нода несет data-node-id и title с идентификатором
	if !strings.Contains(html, `data-node-id="`+id+`"`) {
		t.Errorf("missing data-node-id in %q", html)
	}
	if !strings.Contains(html, `title="`+id+`"`) {
		t.Errorf("missing title tooltip in %q", html)
	}

	// Повторный рендер использует тот же идентификатор
	html2, err := r.RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if html != html2 {
		t.Error("repeated render produced different output")
	}
}

func TestRenderMath(t *testing.T) {
	r := New()

	doc := &tiptap.Document{
		Type: tiptap.TypeDoc,
		Content: []tiptap.Node{{
			Type:  tiptap.TypeMath,
			Attrs: map[string]interface{}{"formula": `\frac{1}{2}`},
		}},
	}

	html, err := r.RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	// Исходник формулы сохраняется в data-formula для обратного парсинга
	if !strings.Contains(html, `data-formula=`) {
		t.Errorf("missing data-formula in %q", html)
	}
	if !strings.Contains(html, "katex") {
		t.Errorf("missing rendered formula markup in %q", html)
	}
}

func TestRenderInvalidLinkDropped(t *testing.T) {
	r := New()

	doc := &tiptap.Document{
		Type: tiptap.TypeDoc,
		Content: []tiptap.Node{{
			Type: tiptap.TypeParagraph,
			Content: []tiptap.Node{{
				Type:  tiptap.TypeText,
				Text:  "click",
				Marks: []tiptap.Mark{{Type: tiptap.MarkLink, Attrs: map[string]interface{}{"href": "javascript:alert(1)"}}},
			}},
		}},
	}

	html, err := r.RenderDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(html, "javascript:") {
		t.Errorf("dangerous href leaked into %q", html)
	}
	// Текст остается, ссылка нет
	if !strings.Contains(html, "click") {
		t.Errorf("text lost from %q", html)
	}
	if strings.Contains(html, "<a") {
		t.Errorf("invalid link rendered as anchor in %q", html)
	}
}

func TestRenderHeadingLevels(t *testing.T) {
	r := New()

	tests := []struct {
		level interface{}
		tag   string
	}{
		{1, "<h1"},
		{2, "<h2"},
		{float64(2), "<h2"},
		// Недопустимый уровень откатывается к h1
		{5, "<h1"},
		{0, "<h1"},
		{nil, "<h1"},
	}

	for _, tt := range tests {
		attrs := map[string]interface{}{}
		if tt.level != nil {
			attrs["level"] = tt.level
		}
		doc := &tiptap.Document{
			Type: tiptap.TypeDoc,
			Content: []tiptap.Node{{
				Type:    tiptap.TypeHeading,
				Attrs:   attrs,
				Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "Title"}},
			}},
		}

		html, err := r.RenderDocument(doc)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(html, tt.tag) {
			t.Errorf("level %v: want %s in %q", tt.level, tt.tag, html)
		}
	}
}

// Закон round-trip: рендер документа в HTML и обратный парсинг дают
// документ, равный исходному с точностью до назначения идентификаторов.
func TestRoundTrip(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		doc  *tiptap.Document
	}{
		{
			name: "default document",
			doc:  tiptap.DefaultContent(),
		},
		{
			name: "paragraph with marks",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type: tiptap.TypeParagraph,
				Content: []tiptap.Node{
					{Type: tiptap.TypeText, Text: "plain "},
					{Type: tiptap.TypeText, Text: "bold", Marks: []tiptap.Mark{{Type: tiptap.MarkBold}}},
					{Type: tiptap.TypeText, Text: " both", Marks: []tiptap.Mark{{Type: tiptap.MarkBold}, {Type: tiptap.MarkItalic}}},
				},
			}}},
		},
		{
			// Внешний контент может нести свои идентификаторы, не uuid
			name: "custom node id",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type:    tiptap.TypeParagraph,
				Attrs:   map[string]interface{}{"id": "intro_note-1"},
				Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "custom"}},
			}}},
		},
		{
			name: "heading",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type:    tiptap.TypeHeading,
				Attrs:   map[string]interface{}{"level": 2},
				Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "Section"}},
			}}},
		},
		{
			name: "link",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type: tiptap.TypeParagraph,
				Content: []tiptap.Node{{
					Type:  tiptap.TypeText,
					Text:  "site",
					Marks: []tiptap.Mark{{Type: tiptap.MarkLink, Attrs: map[string]interface{}{"href": "https://example.com"}}},
				}},
			}}},
		},
		{
			name: "bullet list",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type: tiptap.TypeBulletList,
				Content: []tiptap.Node{{
					Type: tiptap.TypeListItem,
					Content: []tiptap.Node{{
						Type:    tiptap.TypeParagraph,
						Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "item"}},
					}},
				}},
			}}},
		},
		{
			name: "code block",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type:    tiptap.TypeCodeBlock,
				Attrs:   map[string]interface{}{"language": "go"},
				Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "package main"}},
			}}},
		},
		{
			name: "blockquote",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type: tiptap.TypeBlockquote,
				Content: []tiptap.Node{{
					Type:    tiptap.TypeParagraph,
					Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "quote"}},
				}},
			}}},
		},
		{
			name: "table with span",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type: tiptap.TypeTable,
				Content: []tiptap.Node{{
					Type: tiptap.TypeTableRow,
					Content: []tiptap.Node{
						{Type: tiptap.TypeTableHeader, Attrs: map[string]interface{}{"colspan": 2}, Content: []tiptap.Node{{
							Type:    tiptap.TypeParagraph,
							Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "head"}},
						}}},
					},
				}, {
					Type: tiptap.TypeTableRow,
					Content: []tiptap.Node{
						{Type: tiptap.TypeTableCell, Content: []tiptap.Node{{
							Type:    tiptap.TypeParagraph,
							Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "a"}},
						}}},
						{Type: tiptap.TypeTableCell, Content: []tiptap.Node{{
							Type:    tiptap.TypeParagraph,
							Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "b"}},
						}}},
					},
				}},
			}}},
		},
		{
			name: "math node",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type:  tiptap.TypeMath,
				Attrs: map[string]interface{}{"formula": `\frac{a}{b}`},
			}}},
		},
		{
			name: "image",
			doc: &tiptap.Document{Type: tiptap.TypeDoc, Content: []tiptap.Node{{
				Type:  tiptap.TypeImage,
				Attrs: map[string]interface{}{"src": "https://example.com/pic.png"},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.RenderDocument(tt.doc)
			if err != nil {
				t.Fatalf("RenderDocument failed: %v", err)
			}

			parsed, err := r.ParseDocument(strings.NewReader(html))
			if err != nil {
				t.Fatalf("ParseDocument failed: %v", err)
			}

			if !tiptap.EqualContent(tt.doc, parsed) {
				t.Errorf("round-trip mismatch:\n  orig:   %+v\n  parsed: %+v\n  html:   %s", tt.doc, parsed, html)
			}

			// Идентификаторы, назначенные при рендере, выживают парсинг
			if !tiptap.Equal(tt.doc, parsed) {
				t.Errorf("node ids lost in round-trip:\n  html: %s", html)
			}
		})
	}
}
