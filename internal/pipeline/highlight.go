package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"

	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// DefaultStyle is the chroma style used for the generated stylesheet.
const DefaultStyle = "witchhazel"

// Sentinel errors for highlighting.
var (
	ErrUnknownStyle = errors.New("unknown highlight style")
	ErrHighlight    = errors.New("highlighting failed")
)

// DefaultAliases redirects fence languages before lexer lookup. A bare
// "python" fence means Python 3.
var DefaultAliases = map[string]string{
	"python": "python3",
}

// CodeHighlighter defines the contract for highlighting code blocks in HTML.
type CodeHighlighter interface {
	Highlight(ctx context.Context, htmlContent string) (string, error)
}

// Highlighter re-renders fenced code blocks in HTML with chroma token spans.
type Highlighter struct {
	aliases   map[string]string
	formatter *chromahtml.Formatter
	style     *chroma.Style
	unknown   *UnknownLanguages
}

// HighlighterOption configures a Highlighter.
type HighlighterOption func(*Highlighter)

// WithAliases adds fence language aliases on top of DefaultAliases.
// Keys are matched case-insensitively.
func WithAliases(aliases map[string]string) HighlighterOption {
	return func(h *Highlighter) {
		for k, v := range aliases {
			h.aliases[strings.ToLower(k)] = v
		}
	}
}

// WithUnknownLanguages routes unknown-language reports to u, which may be
// shared between highlighters.
func WithUnknownLanguages(u *UnknownLanguages) HighlighterOption {
	return func(h *Highlighter) {
		if u != nil {
			h.unknown = u
		}
	}
}

// NewHighlighter creates a Highlighter that emits class-based markup.
func NewHighlighter(opts ...HighlighterOption) *Highlighter {
	h := &Highlighter{
		aliases: maps.Clone(DefaultAliases),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Fallback,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.unknown == nil {
		h.unknown = NewUnknownLanguages(nil)
	}
	return h
}

// Highlight finds every <pre><code class="language-x">...</code></pre> block
// and replaces it with <pre class="lang-x chroma">...</pre> holding chroma
// spans. Blocks with any markup inside the code element, or any other shape,
// are copied through untouched, which makes Highlight idempotent.
func (h *Highlighter) Highlight(ctx context.Context, htmlContent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	toks := scanTokens(htmlContent)

	var out strings.Builder
	out.Grow(len(htmlContent) + len(htmlContent)/2)
	last := 0

	for i := 0; i < len(toks); i++ {
		block, ok := matchCodeBlock(toks, i)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out.WriteString(htmlContent[last:toks[i].start])
		if err := h.writeBlock(&out, block.lang, block.code); err != nil {
			return "", err
		}
		last = toks[block.end].end
		i = block.end
	}

	if last == 0 {
		return htmlContent, nil
	}
	out.WriteString(htmlContent[last:])
	return out.String(), nil
}

// Canonical applies the alias table to a fence language.
func (h *Highlighter) Canonical(lang string) string {
	if alias, ok := h.aliases[strings.ToLower(lang)]; ok {
		return alias
	}
	return lang
}

// lexer resolves a canonical language name. Unknown names get the
// plain-text fallback and known is false.
func (h *Highlighter) lexer(canonical string) (lexer chroma.Lexer, known bool) {
	l := lexers.Get(canonical)
	if l == nil {
		return lexers.Fallback, false
	}
	return chroma.Coalesce(l), true
}

func (h *Highlighter) writeBlock(w io.StringWriter, lang, code string) error {
	canonical := h.Canonical(lang)
	lexer, known := h.lexer(canonical)
	if !known {
		h.unknown.report(lang)
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		// A lexer failure degrades to plain text rather than failing the post.
		it, err = lexers.Fallback.Tokenise(nil, code)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrHighlight, lang, err)
		}
	}

	var body strings.Builder
	if err := h.formatter.Format(&body, h.style, it); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHighlight, lang, err)
	}

	_, _ = w.WriteString(`<pre class="lang-` + html.EscapeString(canonical) + ` chroma">`)
	_, _ = w.WriteString(body.String())
	_, _ = w.WriteString("</pre>")
	return nil
}

// StyleCSS returns the stylesheet for a registered chroma style. Selectors
// are scoped under .chroma, the class carried by every highlighted block.
func StyleCSS(name string) (string, error) {
	style, ok := LookupStyle(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("writing %s stylesheet: %w", name, err)
	}
	return buf.String(), nil
}

// LookupStyle returns the named chroma style without falling back.
func LookupStyle(name string) (*chroma.Style, bool) {
	style, ok := styles.Registry[strings.ToLower(name)]
	return style, ok
}

// StyleNames lists the registered chroma styles.
func StyleNames() []string {
	return slices.Sorted(maps.Keys(styles.Registry))
}

// UnknownLanguages records fence languages without a lexer and logs a
// warning the first time each one is seen. Safe for concurrent use.
type UnknownLanguages struct {
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewUnknownLanguages creates a recorder. A nil logger discards warnings.
func NewUnknownLanguages(logger *slog.Logger) *UnknownLanguages {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UnknownLanguages{logger: logger, seen: map[string]struct{}{}}
}

func (u *UnknownLanguages) report(lang string) {
	u.mu.Lock()
	_, dup := u.seen[lang]
	u.seen[lang] = struct{}{}
	u.mu.Unlock()

	if !dup {
		u.logger.Warn("unknown code fence language, using plain text", logfields.Lang(lang))
	}
}

// Tags returns the unknown languages seen so far, sorted.
func (u *UnknownLanguages) Tags() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Sorted(maps.Keys(u.seen))
}

// ---------------------------------------------------------------------------
// Structural scan
// ---------------------------------------------------------------------------

// scanToken is one tokenizer token with its byte span in the source.
type scanToken struct {
	typ        html.TokenType
	tok        html.Token
	start, end int
}

// scanTokens tokenizes src, recording byte offsets. The raw token texts
// concatenate back to src; on a tokenizer error the remainder is simply not
// covered by any token and is copied through verbatim by callers.
func scanTokens(src string) []scanToken {
	z := html.NewTokenizer(strings.NewReader(src))
	var toks []scanToken
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return toks
		}
		n := len(z.Raw())
		toks = append(toks, scanToken{typ: tt, tok: z.Token(), start: offset, end: offset + n})
		offset += n
	}
}

type codeBlock struct {
	lang string
	code string
	end  int // index of the closing </pre> token
}

// matchCodeBlock reports whether toks[i:] starts with a bare <pre>, then a
// <code> carrying a language-x class, then text only, then </code></pre>.
func matchCodeBlock(toks []scanToken, i int) (codeBlock, bool) {
	if i+3 >= len(toks) {
		return codeBlock{}, false
	}
	pre := toks[i]
	if pre.typ != html.StartTagToken || pre.tok.Data != "pre" || len(pre.tok.Attr) != 0 {
		return codeBlock{}, false
	}
	code := toks[i+1]
	if code.typ != html.StartTagToken || code.tok.Data != "code" {
		return codeBlock{}, false
	}
	lang := languageFromClass(code.tok.Attr)
	if lang == "" {
		return codeBlock{}, false
	}

	var text strings.Builder
	j := i + 2
	for ; j < len(toks) && toks[j].typ == html.TextToken; j++ {
		text.WriteString(toks[j].tok.Data)
	}
	if j+1 >= len(toks) {
		return codeBlock{}, false
	}
	if toks[j].typ != html.EndTagToken || toks[j].tok.Data != "code" {
		return codeBlock{}, false
	}
	if toks[j+1].typ != html.EndTagToken || toks[j+1].tok.Data != "pre" {
		return codeBlock{}, false
	}

	return codeBlock{lang: lang, code: text.String(), end: j + 1}, true
}

// languageFromClass returns x from the first "language-x" class, or "".
func languageFromClass(attrs []html.Attribute) string {
	for _, a := range attrs {
		if a.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(a.Val) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}
