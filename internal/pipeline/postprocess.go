package pipeline

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// DefaultTableClass is added to tables that carry no class.
const DefaultTableClass = "table"

// HTMLPostProcessor defines the contract for final HTML fixups.
type HTMLPostProcessor interface {
	PostProcess(ctx context.Context, htmlContent string) string
}

// TableClasser adds a CSS class to every <table> start tag without one.
// It works on tokens, so "<table>" inside escaped code text is never touched.
type TableClasser struct {
	Class string
}

// PostProcess returns htmlContent with classes added. Applying it twice
// yields the same result as applying it once.
func (t *TableClasser) PostProcess(ctx context.Context, htmlContent string) string {
	if ctx.Err() != nil {
		return htmlContent
	}
	class := t.Class
	if class == "" {
		class = DefaultTableClass
	}

	toks := scanTokens(htmlContent)

	var out strings.Builder
	last := 0
	for _, tk := range toks {
		if tk.typ != html.StartTagToken || tk.tok.Data != "table" || hasAttr(tk.tok.Attr, "class") {
			continue
		}
		tag := tk.tok
		tag.Attr = append([]html.Attribute{{Key: "class", Val: class}}, tag.Attr...)

		out.WriteString(htmlContent[last:tk.start])
		out.WriteString(tag.String())
		last = tk.end
	}

	if last == 0 {
		return htmlContent
	}
	out.WriteString(htmlContent[last:])
	return out.String()
}

func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}
