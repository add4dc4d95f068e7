// Пакет schema описывает, как каждый тип ноды документа отображается
// в HTML-представление и восстанавливается из него.
//
// Основные возможности:
//   - Декларативный реестр спецификаций нод: тип -> (Render, Parse).
//   - Рендер документа в безопасный HTML-фрагмент с назначением
//     стабильных data-node-id.
//   - Парсинг HTML-представления обратно в дерево документа.
//   - Рендер формул math-нод через пакет katex.
package schema

import (
	"golang.org/x/net/html"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/tiptap"
)

// NodeSpec описывает поведение одного типа ноды.
type NodeSpec struct {
	// Render возвращает имя тега и атрибуты HTML-элемента для ноды.
	// Чистая функция: не меняет другие ноды и глобальное состояние.
	// Идентификатор ноды назначается лениво при первом рендере.
	Render func(n *tiptap.Node) (tag string, attrs []html.Attribute)

	// Parse восстанавливает атрибуты ноды из HTML-элемента.
	// Дочерний контент собирает обходчик, не сама спецификация.
	Parse func(el *html.Node) *tiptap.Node

	// Atomic - нода никогда не имеет дочерних нод (math, image).
	Atomic bool
}

// Registry - закрытая таблица диспетчеризации тип ноды -> спецификация.
// Набор типов фиксирован и известен на этапе проектирования.
type Registry struct {
	specs map[string]NodeSpec
}

// New создает реестр со всеми встроенными типами нод.
// Регистрация декларативна и не зависит от порядка.
func New() *Registry {
	r := &Registry{specs: make(map[string]NodeSpec)}

	r.register(tiptap.TypeParagraph, NodeSpec{Render: renderParagraph, Parse: parseParagraphAttrs})
	r.register(tiptap.TypeHeading, NodeSpec{Render: renderHeading, Parse: parseHeadingAttrs})
	r.register(tiptap.TypeBulletList, NodeSpec{Render: renderBulletList, Parse: parseListAttrs})
	r.register(tiptap.TypeOrderedList, NodeSpec{Render: renderOrderedList, Parse: parseListAttrs})
	r.register(tiptap.TypeListItem, NodeSpec{Render: renderListItem, Parse: parseListItemAttrs})
	r.register(tiptap.TypeCodeBlock, NodeSpec{Render: renderCodeBlock, Parse: parseCodeBlockAttrs})
	r.register(tiptap.TypeBlockquote, NodeSpec{Render: renderBlockquote, Parse: parseBlockquoteAttrs})
	r.register(tiptap.TypeTable, NodeSpec{Render: renderTable, Parse: parseTableAttrs})
	r.register(tiptap.TypeTableRow, NodeSpec{Render: renderTableRow, Parse: parseTableRowAttrs})
	r.register(tiptap.TypeTableHeader, NodeSpec{Render: renderTableHeader, Parse: parseTableCellAttrs})
	r.register(tiptap.TypeTableCell, NodeSpec{Render: renderTableCell, Parse: parseTableCellAttrs})
	r.register(tiptap.TypeImage, NodeSpec{Render: renderImage, Parse: parseImageAttrs, Atomic: true})
	r.register(tiptap.TypeMath, NodeSpec{Render: renderMath, Parse: parseMathAttrs, Atomic: true})

	return r
}

func (r *Registry) register(kind string, spec NodeSpec) {
	r.specs[kind] = spec
}

// Lookup возвращает спецификацию типа ноды.
func (r *Registry) Lookup(kind string) (NodeSpec, bool) {
	spec, ok := r.specs[kind]
	return spec, ok
}
