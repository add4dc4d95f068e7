// Пакет katex рендерит исходный текст LaTeX-формулы в безопасный HTML-фрагмент.
// Рендерер работает в error-tolerant режиме: некорректная формула дает
// частичный best-effort вывод, а не ошибку. Функция Render чистая и
// детерминированная, никогда не паникует.
package katex

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aisa-it/aidoc/aidoc.go/internal/aidoc/editor/policy"
)

// Соответствие команд LaTeX символам Unicode.
var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ",
	"phi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ",
	"Pi": "Π", "Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"infty": "∞", "partial": "∂", "nabla": "∇",
	"times": "×", "div": "÷", "cdot": "⋅", "pm": "±", "mp": "∓",
	"leq": "≤", "geq": "≥", "neq": "≠", "approx": "≈", "equiv": "≡",
	"in": "∈", "notin": "∉", "subset": "⊂", "cup": "∪", "cap": "∩",
	"forall": "∀", "exists": "∃", "emptyset": "∅",
	"rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒", "Leftarrow": "⇐",
	"sum": "∑", "prod": "∏", "int": "∫",
	"ldots": "…", "cdots": "⋯", "prime": "′",
}

// Команды без визуального представления, пропускаются при рендере.
var ignored = map[string]bool{
	"left": true, "right": true, "displaystyle": true,
	"limits": true, "nolimits": true, "!": true, ",": true, ";": true,
	"quad": true, "qquad": true,
}

// Render преобразует исходный текст формулы в HTML-фрагмент.
// Пустая формула дает пустой, но валидный фрагмент. Любой сбой парсера
// деградирует к экранированному исходному тексту, ошибки наружу не выходят.
func Render(formula string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Formula render panic", "formula", formula, "err", r)
			out = fmt.Sprintf(`<span class="katex katex-error">%s</span>`, html.EscapeString(formula))
		}
	}()

	if strings.TrimSpace(formula) == "" {
		return `<span class="katex katex-empty"></span>`
	}

	p := parser{input: []rune(formula)}
	var b strings.Builder
	b.WriteString(`<span class="katex">`)
	p.renderGroup(&b, 0)
	b.WriteString(`</span>`)

	return policy.Formula.Sanitize(b.String())
}

type parser struct {
	input []rune
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	return p.input[p.pos]
}

// renderGroup рендерит ноды до закрывающей скобки текущего уровня
// или до конца ввода. Глубина ограничена от патологического ввода.
func (p *parser) renderGroup(b *strings.Builder, depth int) {
	if depth > 64 {
		return
	}

	for !p.eof() {
		switch c := p.peek(); c {
		case '}':
			p.pos++
			if depth > 0 {
				return
			}
			// лишняя закрывающая скобка на верхнем уровне игнорируется
		case '{':
			p.pos++
			p.renderGroup(b, depth+1)
		case '\\':
			p.renderCommand(b, depth)
		case '^':
			p.pos++
			b.WriteString("<sup>")
			p.renderArg(b, depth)
			b.WriteString("</sup>")
		case '_':
			p.pos++
			b.WriteString("<sub>")
			p.renderArg(b, depth)
			b.WriteString("</sub>")
		default:
			p.pos++
			b.WriteString(html.EscapeString(string(c)))
		}
	}
}

// renderArg рендерит один аргумент: группу в фигурных скобках
// или одиночный символ.
func (p *parser) renderArg(b *strings.Builder, depth int) {
	if p.eof() {
		return
	}
	if p.peek() == '{' {
		p.pos++
		p.renderGroup(b, depth+1)
		return
	}
	if p.peek() == '\\' {
		p.renderCommand(b, depth)
		return
	}
	b.WriteString(html.EscapeString(string(p.input[p.pos])))
	p.pos++
}

func (p *parser) renderCommand(b *strings.Builder, depth int) {
	p.pos++ // пропустить '\'
	if p.eof() {
		b.WriteString(html.EscapeString("\\"))
		return
	}

	name := p.readCommandName()

	switch name {
	case "frac", "dfrac", "tfrac":
		b.WriteString(`<span class="katex-frac"><span class="katex-num">`)
		p.renderArg(b, depth)
		b.WriteString(`</span><span class="katex-den">`)
		p.renderArg(b, depth)
		b.WriteString(`</span></span>`)
	case "sqrt":
		b.WriteString(`<span class="katex-sqrt">√<span class="katex-radicand">`)
		p.renderArg(b, depth)
		b.WriteString(`</span></span>`)
	case "text", "mathrm", "operatorname":
		p.renderArg(b, depth)
	default:
		if sym, ok := symbols[name]; ok {
			b.WriteString(sym)
			return
		}
		if ignored[name] {
			return
		}
		// Неизвестная команда: показать исходник как есть,
		// не прерывая рендер остальной формулы
		b.WriteString(`<span class="katex-error">`)
		b.WriteString(html.EscapeString("\\" + name))
		b.WriteString(`</span>`)
	}
}

// readCommandName читает имя команды после '\'. Односимвольные команды
// вида "\," или "\<" читаются как один символ.
func (p *parser) readCommandName() string {
	start := p.pos
	for !p.eof() && isLetter(p.peek()) {
		p.pos++
	}
	if p.pos == start && !p.eof() {
		p.pos++
	}
	return string(p.input[start:p.pos])
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
