package blog

import (
	"log/slog"
	"maps"

	"github.com/theacodes/blog.thea.codes/internal/config"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithWorkers sets the number of posts rendered in parallel.
// Zero picks a size from GOMAXPROCS (see ResolvePoolSize).
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithStaticDir sets the directory copied to static/ in the output.
// Empty disables the copy.
func WithStaticDir(dir string) Option {
	return func(b *Builder) {
		b.staticDir = dir
	}
}

// WithTemplatesDir sets a directory whose post.html, index.html, feed.xml
// and site.css override the built-in ones file by file.
func WithTemplatesDir(dir string) Option {
	return func(b *Builder) {
		b.templatesDir = dir
	}
}

// WithSite sets the site description passed to every template.
func WithSite(site SiteInfo) Option {
	return func(b *Builder) {
		b.site = site
	}
}

// WithStyle selects the chroma style of the highlight stylesheet.
func WithStyle(name string) Option {
	return func(b *Builder) {
		b.style = name
	}
}

// WithStylesheet sets the output-relative path of the highlight stylesheet.
func WithStylesheet(rel string) Option {
	return func(b *Builder) {
		b.stylesheet = rel
	}
}

// WithFeed sets the output-relative path of the RSS feed. Empty disables it.
func WithFeed(rel string) Option {
	return func(b *Builder) {
		b.feedPath = rel
	}
}

// WithUnsafeHTML lets raw HTML in posts through to the output.
func WithUnsafeHTML(on bool) Option {
	return func(b *Builder) {
		b.unsafe = on
	}
}

// WithAliases adds code fence language aliases on top of the defaults.
func WithAliases(aliases map[string]string) Option {
	return func(b *Builder) {
		b.aliases = maps.Clone(aliases)
	}
}

// WithCNAME writes a CNAME file holding domain. Empty writes nothing.
func WithCNAME(domain string) Option {
	return func(b *Builder) {
		b.cname = domain
	}
}

// WithFiles writes fixed auxiliary files: output-relative path to content.
func WithFiles(files map[string]string) Option {
	return func(b *Builder) {
		b.files = maps.Clone(files)
	}
}

// ConfigOptions translates a site configuration into builder options.
func ConfigOptions(cfg *config.Config) []Option {
	feed := ""
	if cfg.Feed.FeedEnabled() {
		feed = cfg.Feed.Path
	}
	return []Option{
		WithSite(SiteInfo{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			URL:         cfg.Site.URL,
			Author:      cfg.Site.Author,
		}),
		WithStaticDir(cfg.Paths.Static),
		WithTemplatesDir(cfg.Paths.Templates),
		WithStyle(cfg.Highlight.Style),
		WithStylesheet(cfg.Highlight.Stylesheet),
		WithAliases(cfg.Highlight.Aliases),
		WithFeed(feed),
		WithUnsafeHTML(cfg.Markdown.Unsafe),
		WithWorkers(cfg.Build.Workers),
		WithCNAME(cfg.CNAME),
		WithFiles(cfg.Files),
	}
}

// NewFromConfig creates a Builder from a site configuration. Extra options
// are applied after the configuration and override it.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Builder, error) {
	all := append(ConfigOptions(cfg), opts...)
	return NewBuilder(cfg.Paths.Sources, cfg.Paths.Output, all...)
}
