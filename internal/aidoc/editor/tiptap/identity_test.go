package tiptap

import (
	"regexp"
	"testing"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestEnsureID(t *testing.T) {
	n := &Node{Type: TypeParagraph}

	id := n.EnsureID()
	if !uuidRe.MatchString(id) {
		t.Fatalf("generated id %q is not a uuid", id)
	}

	// Повторный вызов возвращает тот же идентификатор
	if again := n.EnsureID(); again != id {
		t.Errorf("id regenerated: %q != %q", again, id)
	}

	// Существующий id сохраняется
	n2 := &Node{Type: TypeParagraph, Attrs: map[string]interface{}{"id": "existing"}}
	if got := n2.EnsureID(); got != "existing" {
		t.Errorf("existing id replaced with %q", got)
	}

	// Текстовые ноды идентификаторов не получают
	txt := &Node{Type: TypeText, Text: "hello"}
	if got := txt.EnsureID(); got != "" {
		t.Errorf("text node got id %q", got)
	}
	if txt.Attrs != nil {
		t.Error("text node attrs allocated")
	}
}

func TestEnsureIDsStability(t *testing.T) {
	doc := &Document{
		Type: TypeDoc,
		Content: []Node{
			{Type: TypeParagraph, Content: []Node{{Type: TypeText, Text: "a"}}},
			{Type: TypeBulletList, Content: []Node{
				{Type: TypeListItem, Content: []Node{
					{Type: TypeParagraph, Content: []Node{{Type: TypeText, Text: "b"}}},
				}},
			}},
		},
	}

	doc.EnsureIDs()

	first := collectIDs(doc)
	if len(first) != 4 {
		t.Fatalf("got %d ids, want 4 block nodes with ids", len(first))
	}
	for _, id := range first {
		if !uuidRe.MatchString(id) {
			t.Errorf("id %q is not a uuid", id)
		}
	}

	// Повторное назначение ничего не меняет
	doc.EnsureIDs()
	second := collectIDs(doc)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("id %d changed between passes: %q != %q", i, first[i], second[i])
		}
	}
}

func collectIDs(doc *Document) []string {
	var ids []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Type != TypeText {
			ids = append(ids, n.AttrString("id"))
		}
		for i := range n.Content {
			walk(&n.Content[i])
		}
	}
	for i := range doc.Content {
		walk(&doc.Content[i])
	}
	return ids
}
