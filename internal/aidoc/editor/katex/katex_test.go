package katex

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    []string
	}{
		{
			name:    "empty formula",
			formula: "",
			want:    []string{`katex-empty`},
		},
		{
			name:    "whitespace only",
			formula: "   ",
			want:    []string{`katex-empty`},
		},
		{
			name:    "plain expression",
			formula: "a+b",
			want:    []string{"a+b"},
		},
		{
			name:    "fraction",
			formula: `\frac{1}{2}`,
			want:    []string{"katex-frac", "katex-num", "katex-den", "1", "2"},
		},
		{
			name:    "square root",
			formula: `\sqrt{x}`,
			want:    []string{"katex-sqrt", "√", "x"},
		},
		{
			name:    "superscript and subscript",
			formula: "x^2_i",
			want:    []string{"<sup>2</sup>", "<sub>i</sub>"},
		},
		{
			name:    "greek letters",
			formula: `\alpha+\beta`,
			want:    []string{"α", "β"},
		},
		{
			name:    "unknown command degrades to source",
			formula: `\unknowncmd{x}`,
			want:    []string{"katex-error", `\unknowncmd`},
		},
		{
			name:    "html is escaped",
			formula: `<script>alert(1)</script>`,
			want:    []string{"&lt;script&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.formula)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Render(%q) = %q, missing %q", tt.formula, got, want)
				}
			}
			if !strings.Contains(got, "katex") {
				t.Errorf("Render(%q) = %q, output not wrapped in katex span", tt.formula, got)
			}
		})
	}
}

// Рендер никогда не возвращает ошибку и не паникует, каким бы ни был ввод.
func TestRenderNeverFails(t *testing.T) {
	inputs := []string{
		"",
		`\frac{1}{0}`,
		`\frac`,
		`\frac{`,
		`{{{{{`,
		`}}}}}`,
		`\`,
		`\\\\\\`,
		`not\valid\<<<`,
		`^^^___`,
		strings.Repeat(`\frac{`, 200) + "x" + strings.Repeat("}", 200),
		strings.Repeat("{", 10000),
		"\x00\xff",
	}

	for _, in := range inputs {
		got := Render(in)
		if got == "" {
			t.Errorf("Render(%q) returned empty output", in)
		}
		if !strings.HasPrefix(got, "<span") {
			t.Errorf("Render(%q) = %q, want span fragment", in, got)
		}
	}
}

// Вывод детерминирован: одинаковый ввод дает одинаковый результат.
func TestRenderDeterministic(t *testing.T) {
	formula := `\frac{\alpha}{\beta}+\sqrt{x^2}`
	first := Render(formula)
	for i := 0; i < 10; i++ {
		if got := Render(formula); got != first {
			t.Fatalf("non-deterministic output: %q != %q", got, first)
		}
	}
}
