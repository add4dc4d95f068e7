// Определяет политики безопасности для HTML-представления документа.
// Политики ограничивают допустимые элементы, атрибуты и стили, чтобы
// размеченный контент редактора и формулы не могли стать источником XSS.
//
// Основные возможности:
//   - Политика Fragment для полного HTML-представления документа.
//   - Политика Formula для фрагментов, порождаемых рендерером формул.
//   - Разрешение только http/https ссылок.
package policy

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Fragment применяется к HTML-представлению документа целиком.
var Fragment *bluemonday.Policy = bluemonday.UGCPolicy()

// Formula применяется к выводу рендерера формул.
var Formula *bluemonday.Policy = bluemonday.NewPolicy()

var (
	colorRegexp = regexp.MustCompile(`^#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	langRegexp  = regexp.MustCompile(`^[a-zA-Z0-9+#-]{1,32}$`)
	classRegexp = regexp.MustCompile(`^(katex(-[a-z]+)*|aidoc-[a-z-]+)( (katex(-[a-z]+)*|aidoc-[a-z-]+))*$`)
	// Идентификатор ноды не обязан быть uuid, внешний контент может нести
	// свои id. Допускается любая строка из безопасного набора символов.
	nodeIDRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	spanRegexp   = regexp.MustCompile(`^[0-9]{1,3}$`)
	linkRegexp   = regexp.MustCompile(`^https?://`)
)

func init() {
	Fragment.AllowElements("h1", "h2", "tbody", "span")

	Fragment.AllowAttrs("data-node-id", "title").Matching(nodeIDRegexp).Globally()
	Fragment.AllowAttrs("class").Matching(classRegexp).Globally()

	Fragment.AllowAttrs("data-formula").OnElements("span")
	Fragment.AllowAttrs("data-language").Matching(langRegexp).OnElements("pre")
	Fragment.AllowAttrs("colspan", "rowspan").Matching(spanRegexp).OnElements("td", "th")
	Fragment.AllowStyles("color").Matching(colorRegexp).OnElements("span")

	// UGCPolicy сам требует http/https для ссылок; относительные URL запрещены,
	// чтобы javascript: и data: не пролезали через обход схемы
	Fragment.AllowRelativeURLs(false)
	Fragment.RequireNoFollowOnLinks(true)

	Formula.AllowElements("span", "sup", "sub")
	Formula.AllowAttrs("class").Matching(classRegexp).OnElements("span")
}

// ValidLink проверяет, что href ссылки использует схему http или https.
// Невалидная ссылка не рендерится кликабельной, это не ошибка.
func ValidLink(href string) bool {
	return linkRegexp.MatchString(href)
}

// ValidColor проверяет hex-значение цвета текстового mark.
func ValidColor(color string) bool {
	return colorRegexp.MatchString(color)
}
