package pipeline

// Notes:
// - chroma's exact span layout (line wrappers, coalescing) is not asserted;
//   tests look for token classes and escaped text
// - "nb" is chroma's class for NameBuiltin, "k" for Keyword

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func highlight(t *testing.T, h *Highlighter, in string) string {
	t.Helper()
	got, err := h.Highlight(context.Background(), in)
	if err != nil {
		t.Fatalf("Highlight() unexpected error: %v", err)
	}
	return got
}

// ---------------------------------------------------------------------------
// TestHighlight - Block matching and output shape
// ---------------------------------------------------------------------------

func TestHighlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:  "python uses the python3 lexer",
			input: `<pre><code class="language-python">print(&quot;x&quot;)` + "\n</code></pre>",
			wantContains: []string{
				`<pre class="lang-python3 chroma">`,
				`<span class="nb">print</span>`,
			},
			wantExcludes: []string{`<span class="k">print</span>`, "<code"},
		},
		{
			name:  "entities are decoded before lexing",
			input: `<pre><code class="language-go">s := &quot;a &amp; b&quot;` + "\n</code></pre>",
			wantContains: []string{
				`<pre class="lang-go chroma">`,
				`&#34;a &amp; b&#34;`,
			},
			wantExcludes: []string{"&amp;quot;", "&amp;amp;"},
		},
		{
			name:  "unknown language falls back to plain text",
			input: `<pre><code class="language-zz-fake-lang">a &lt; b</code></pre>`,
			wantContains: []string{
				`<pre class="lang-zz-fake-lang chroma">`,
				"a &lt; b",
			},
		},
		{
			name:         "code without language is untouched",
			input:        "<pre><code>plain</code></pre>",
			wantContains: []string{"<pre><code>plain</code></pre>"},
			wantExcludes: []string{"chroma"},
		},
		{
			name:         "inline code is untouched",
			input:        `<p><code class="language-go">x</code></p>`,
			wantContains: []string{`<p><code class="language-go">x</code></p>`},
		},
		{
			name:         "markup inside code aborts the match",
			input:        `<pre><code class="language-go">a<em>b</em></code></pre>`,
			wantContains: []string{`<pre><code class="language-go">a<em>b</em></code></pre>`},
		},
		{
			name:         "class order does not matter",
			input:        `<pre><code class="wide language-go">x := 1</code></pre>`,
			wantContains: []string{`<pre class="lang-go chroma">`},
		},
		{
			name:         "empty block",
			input:        `<pre><code class="language-go"></code></pre>`,
			wantContains: []string{`<pre class="lang-go chroma">`},
			wantExcludes: []string{"<code"},
		},
		{
			name:  "surrounding bytes copied verbatim",
			input: "<h1 id=\"t\">T</h1>\n<pre><code class=\"language-go\">x</code></pre>\n<p>after &amp; done</p>",
			wantContains: []string{
				"<h1 id=\"t\">T</h1>\n<pre class=\"lang-go chroma\">",
				"</pre>\n<p>after &amp; done</p>",
			},
		},
		{
			name:  "language class is escaped",
			input: `<pre><code class="language-x&quot;y">z</code></pre>`,
			wantContains: []string{
				`<pre class="lang-x&#34;y chroma">`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := highlight(t, NewHighlighter(), tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Highlight() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Highlight() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestHighlight_MultipleBlocksIndependent(t *testing.T) {
	t.Parallel()

	goBlock := `<pre><code class="language-go">x := 1</code></pre>`
	pyBlock := `<pre><code class="language-python">print(1)</code></pre>`

	h := NewHighlighter()
	goOut := highlight(t, h, goBlock)
	pyOut := highlight(t, h, pyBlock)

	both := highlight(t, h, goBlock+"\n"+pyBlock)
	if both != goOut+"\n"+pyOut {
		t.Errorf("blocks highlighted together differ from separately:\n%s\nvs\n%s", both, goOut+"\n"+pyOut)
	}

	reversed := highlight(t, h, pyBlock+"\n"+goBlock)
	if reversed != pyOut+"\n"+goOut {
		t.Error("block order changed individual block output")
	}
}

func TestHighlight_Idempotent(t *testing.T) {
	t.Parallel()

	h := NewHighlighter()
	once := highlight(t, h, `<p>x</p><pre><code class="language-python">if a &lt; b: print(&quot;&lt;&quot;)</code></pre>`)
	twice := highlight(t, h, once)
	if once != twice {
		t.Errorf("second pass changed output:\n%s\n%s", once, twice)
	}
	if strings.Contains(twice, "&amp;lt;") {
		t.Error("output was double-escaped")
	}
}

func TestHighlight_NoBlocksReturnsInput(t *testing.T) {
	t.Parallel()

	in := "<p>Nothing &amp; nobody</p>"
	if got := highlight(t, NewHighlighter(), in); got != in {
		t.Errorf("Highlight() = %q, want %q", got, in)
	}
}

func TestHighlight_Aliases(t *testing.T) {
	t.Parallel()

	h := NewHighlighter(WithAliases(map[string]string{"Shell-Session": "console"}))

	if got := h.Canonical("python"); got != "python3" {
		t.Errorf("Canonical(python) = %q, want python3", got)
	}
	if got := h.Canonical("PYTHON"); got != "python3" {
		t.Errorf("Canonical(PYTHON) = %q, want python3", got)
	}
	if got := h.Canonical("shell-session"); got != "console" {
		t.Errorf("Canonical(shell-session) = %q, want console", got)
	}
	if got := h.Canonical("go"); got != "go" {
		t.Errorf("Canonical(go) = %q, want go", got)
	}

	// Options never mutate the package defaults.
	if _, ok := DefaultAliases["shell-session"]; ok {
		t.Error("WithAliases mutated DefaultAliases")
	}
}

func TestHighlight_UnknownLanguageWarnsOnce(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	unknown := NewUnknownLanguages(slog.New(slog.NewTextHandler(&logs, nil)))
	h := NewHighlighter(WithUnknownLanguages(unknown))

	block := `<pre><code class="language-zz-fake-lang">x</code></pre>`
	highlight(t, h, block+block)
	highlight(t, NewHighlighter(WithUnknownLanguages(unknown)), block)

	if n := strings.Count(logs.String(), "unknown code fence language"); n != 1 {
		t.Errorf("warning logged %d times, want 1:\n%s", n, logs.String())
	}
	if tags := unknown.Tags(); len(tags) != 1 || tags[0] != "zz-fake-lang" {
		t.Errorf("Tags() = %v, want [zz-fake-lang]", tags)
	}
}

func TestHighlight_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHighlighter().Highlight(ctx, `<pre><code class="language-go">x</code></pre>`)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Highlight() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestStyleCSS - Theme stylesheet
// ---------------------------------------------------------------------------

func TestStyleCSS(t *testing.T) {
	t.Parallel()

	css, err := StyleCSS(DefaultStyle)
	if err != nil {
		t.Fatalf("StyleCSS(%q) unexpected error: %v", DefaultStyle, err)
	}
	for _, want := range []string{".chroma {", ".chroma .k "} {
		if !strings.Contains(css, want) {
			t.Errorf("StyleCSS() missing %q", want)
		}
	}

	again, _ := StyleCSS(DefaultStyle)
	if css != again {
		t.Error("StyleCSS() is not deterministic")
	}
}

func TestStyleCSS_Unknown(t *testing.T) {
	t.Parallel()

	_, err := StyleCSS("no-such-style")
	if !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("StyleCSS() error = %v, want ErrUnknownStyle", err)
	}
}

func TestStyleNames(t *testing.T) {
	t.Parallel()

	names := StyleNames()
	found := false
	for _, n := range names {
		if n == DefaultStyle {
			found = true
		}
	}
	if !found {
		t.Errorf("StyleNames() = %v, missing %q", names, DefaultStyle)
	}
}
