// Package markup turns model replies into a small, safe subset of HTML.
package markup

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "strong", "b", "em", "i", "ul", "ol", "li", "br", "code")
	return p
}

// Render converts Markdown to HTML and strips everything outside the
// allow-list. Disallowed elements keep their text; scripts and styles are
// removed entirely.
func Render(text string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	raw := blackfriday.MarkdownCommon([]byte(text))
	return template.HTML(policy.SanitizeBytes(raw))
}
