package pipeline

import (
	"context"
	"testing"
)

func TestTableClasser_PostProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		class string
		input string
		want  string
	}{
		{
			name:  "plain table gets default class",
			input: "<table>\n<thead></thead>\n</table>",
			want:  "<table class=\"table\">\n<thead></thead>\n</table>",
		},
		{
			name:  "custom class",
			class: "striped",
			input: "<table><tr><td>1</td></tr></table>",
			want:  `<table class="striped"><tr><td>1</td></tr></table>`,
		},
		{
			name:  "existing class kept",
			input: `<table class="mine"></table>`,
			want:  `<table class="mine"></table>`,
		},
		{
			name:  "other attributes preserved",
			input: `<table id="t1"></table>`,
			want:  `<table class="table" id="t1"></table>`,
		},
		{
			name:  "escaped table inside code untouched",
			input: `<pre class="lang-html chroma"><span class="p">&lt;table&gt;</span></pre>`,
			want:  `<pre class="lang-html chroma"><span class="p">&lt;table&gt;</span></pre>`,
		},
		{
			name:  "multiple tables",
			input: "<table></table><p>x</p><table></table>",
			want:  `<table class="table"></table><p>x</p><table class="table"></table>`,
		},
		{
			name:  "no tables",
			input: "<p>a &amp; b</p>",
			want:  "<p>a &amp; b</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &TableClasser{Class: tt.class}
			got := p.PostProcess(context.Background(), tt.input)
			if got != tt.want {
				t.Errorf("PostProcess() = %q, want %q", got, tt.want)
			}
			if again := p.PostProcess(context.Background(), got); again != got {
				t.Errorf("PostProcess() not idempotent: %q then %q", got, again)
			}
		})
	}
}
