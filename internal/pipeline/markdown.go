package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion wraps a Markdown parse or render failure.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Converter turns a Markdown body into an HTML fragment.
type Converter interface {
	Convert(ctx context.Context, src string) (string, error)
}

// Markdown is the goldmark-backed Converter. It reuses its output buffer,
// so like Pipeline it belongs to one worker.
type Markdown struct {
	md  goldmark.Markdown
	buf bytes.Buffer
}

// NewMarkdown returns a GFM converter with footnotes, heading ids and
// ::: fenced divs. Raw HTML is replaced by a comment unless unsafe is set.
// Fenced code stays <pre><code class="language-x"> for the Highlighter.
func NewMarkdown(unsafe bool) *Markdown {
	opts := []renderer.Option{html.WithXHTML()}
	if unsafe {
		opts = append(opts, html.WithUnsafe())
	}
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, &fences.Extender{}),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(opts...),
		),
	}
}

// Convert renders src. Goldmark cannot be interrupted, so ctx is only
// checked before starting.
func (m *Markdown) Convert(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.buf.Reset()
	if err := m.md.Convert([]byte(normalizeSource(src)), &m.buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return m.buf.String(), nil
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeSource drops a BOM, converts line endings to \n and ends the
// text with a newline so a fence on the last line is closed.
func normalizeSource(s string) string {
	s = lineEndings.Replace(strings.TrimPrefix(s, "\uFEFF"))
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
