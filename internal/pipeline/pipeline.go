package pipeline

import (
	"context"
	"fmt"
)

// Config holds the renderer configuration shared by every Pipeline of a build.
type Config struct {
	// Unsafe lets raw HTML in Markdown through to the output.
	Unsafe bool
	// Aliases are fence language aliases applied on top of DefaultAliases.
	Aliases map[string]string
	// TableClass is added to class-less tables. Empty uses DefaultTableClass.
	TableClass string
	// Unknown collects unknown fence languages. May be shared; nil discards.
	Unknown *UnknownLanguages
}

// Pipeline renders one post body at a time. It is not safe for concurrent
// use: create one per worker.
type Pipeline struct {
	Converter     Converter
	Highlighter   CodeHighlighter
	PostProcessor HTMLPostProcessor
}

// New assembles a Pipeline with the default stage implementations.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		Converter: NewMarkdown(cfg.Unsafe),
		Highlighter: NewHighlighter(
			WithAliases(cfg.Aliases),
			WithUnknownLanguages(cfg.Unknown),
		),
		PostProcessor: &TableClasser{Class: cfg.TableClass},
	}
}

// Render converts a Markdown body to final HTML content.
// The same body always renders to byte-identical output.
func (p *Pipeline) Render(ctx context.Context, body string) (string, error) {
	out, err := p.Converter.Convert(ctx, body)
	if err != nil {
		return "", err
	}

	out, err = p.Highlighter.Highlight(ctx, out)
	if err != nil {
		return "", fmt.Errorf("highlighting: %w", err)
	}

	out = p.PostProcessor.PostProcess(ctx, out)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return out, nil
}
