package sync

import (
	"encoding/json"
	"testing"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/schema"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/surface"
	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

const external = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"External"}]}]}`

func newController() (*Controller, *surface.Surface) {
	s := surface.New(schema.New())
	return NewController(s), s
}

func TestReconcileAdoptsExternalValue(t *testing.T) {
	c, s := newController()

	c.Reconcile([]byte(external))

	if got := s.CurrentDocument().Content[0].Content[0].Text; got != "External" {
		t.Errorf("text = %q, want %q", got, "External")
	}
}

// Повторная сверка с тем же внешним значением ничего не меняет:
// сериализованный вывод стабилен после первого принятия.
func TestReconcileIdempotent(t *testing.T) {
	c, s := newController()

	c.Reconcile([]byte(external))
	first, err := json.Marshal(s.CurrentDocument())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		c.Reconcile([]byte(external))
		again, err := json.Marshal(s.CurrentDocument())
		if err != nil {
			t.Fatal(err)
		}
		if string(first) != string(again) {
			t.Fatalf("serialized output changed on reconcile %d:\n%s\n%s", i+1, first, again)
		}
	}
}

// Локальная правка, вернувшаяся через внешнее значение, не затирает
// состояние поверхности: защита от осцилляции.
func TestReconcileAntiOscillation(t *testing.T) {
	c, s := newController()
	c.Reconcile([]byte(external))

	var echoed []byte
	s.OnChange(func(doc *tiptap.Document) {
		b, err := json.Marshal(doc)
		if err != nil {
			t.Errorf("marshal: %v", err)
			return
		}
		echoed = b
	})

	id := s.CurrentDocument().Content[0].AttrString("id")
	if err := s.InsertText(id, 8, "!"); err != nil {
		t.Fatal(err)
	}
	if echoed == nil {
		t.Fatal("local change not emitted")
	}

	cursorBefore := s.Cursor()

	// Приложение записало снимок во внешнее значение, оно вернулось в сверку
	c.Reconcile(echoed)

	if got := s.Cursor(); got != cursorBefore {
		t.Errorf("cursor reset by echo reconcile: %+v -> %+v", cursorBefore, got)
	}
	if got := s.CurrentDocument().Content[0].Content[0].Text; got != "External!" {
		t.Errorf("text = %q, want %q", got, "External!")
	}
}

func TestReconcileInvalidFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not json"},
		{name: "wrong root", raw: `{"type":"paragraph","content":[]}`},
		{name: "missing content", raw: `{"type":"doc"}`},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newController()
			c.Reconcile([]byte(external))

			c.Reconcile([]byte(tt.raw))

			if !tiptap.EqualContent(s.CurrentDocument(), tiptap.DefaultContent()) {
				t.Errorf("surface not reset to default content")
			}
		})
	}
}

// Принятие внешнего значения не попадает в историю отмены.
func TestReconcileNotUndoable(t *testing.T) {
	c, s := newController()

	c.Reconcile([]byte(external))
	if s.Undo() {
		t.Error("reconcile must not be undoable")
	}
}

func TestReconcileDocument(t *testing.T) {
	c, s := newController()

	doc := &tiptap.Document{
		Type: tiptap.TypeDoc,
		Content: []tiptap.Node{{
			Type:    tiptap.TypeParagraph,
			Content: []tiptap.Node{{Type: tiptap.TypeText, Text: "tree"}},
		}},
	}
	c.ReconcileDocument(doc)
	if got := s.CurrentDocument().Content[0].Content[0].Text; got != "tree" {
		t.Errorf("text = %q, want %q", got, "tree")
	}

	c.ReconcileDocument(nil)
	if !tiptap.EqualContent(s.CurrentDocument(), tiptap.DefaultContent()) {
		t.Error("nil document must reset surface to default")
	}
}
