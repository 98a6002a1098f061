package blog

import (
	"strings"
	"time"

	"github.com/theacodes/blog.thea.codes/internal/frontmatter"
)

// Frontmatter keys the build reads itself. Everything else is passed to
// templates untouched through Post.Params.
const (
	FieldDate           = "date"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldTags           = "tags"
	FieldLegacyURL      = "legacy_url"
	FieldLegacyRedirect = "legacy_redirect"
)

// Post is one source file carried through a build. Content is attached once
// by the render phase; after that a Post is read-only.
type Post struct {
	stem      string
	source    string
	bundle    string
	meta      *frontmatter.Metadata
	body      string
	content   string
	resources []resource
}

// resource is a file copied next to a bundle post's output.
type resource struct {
	src string // filesystem path
	rel string // slash-separated, relative to the bundle directory
}

// ParsePost builds a Post from raw source text. Metadata is optional; a
// metadata block that is opened but not closed, or that is not a mapping,
// returns an error wrapping ErrMalformedFrontmatter.
func ParsePost(stem, content string) (*Post, error) {
	meta, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, err
	}
	return &Post{stem: stem, meta: meta, body: body}, nil
}

// Stem is the post's slug: the file name without extension, or the bundle
// directory's name.
func (p *Post) Stem() string { return p.stem }

// Source is the file the post was read from. Empty for posts built with ParsePost.
func (p *Post) Source() string { return p.source }

// BundleDir is the directory holding a bundle post's resources, empty for flat posts.
func (p *Post) BundleDir() string { return p.bundle }

// IsBundle reports whether the post came from <dir>/index.md.
func (p *Post) IsBundle() bool { return p.bundle != "" }

// Meta returns the parsed frontmatter.
func (p *Post) Meta() *frontmatter.Metadata { return p.meta }

// Body is the raw Markdown after the frontmatter block.
func (p *Post) Body() string { return p.body }

// Content is the rendered HTML, empty until the post has been rendered.
func (p *Post) Content() string { return p.content }

// Title falls back to the stem when unset or blank.
func (p *Post) Title() string {
	if t := strings.TrimSpace(p.meta.String(FieldTitle, "")); t != "" {
		return t
	}
	return p.stem
}

func (p *Post) Description() string { return p.meta.String(FieldDescription, "") }

func (p *Post) Tags() []string { return p.meta.Strings(FieldTags) }

// Date returns the post date, or the zero time when HasDate is false.
func (p *Post) Date() time.Time {
	d, _ := p.meta.Date(FieldDate)
	return d
}

// HasDate reports whether the date field holds a calendar date.
func (p *Post) HasDate() bool {
	_, ok := p.meta.Date(FieldDate)
	return ok
}

// Legacy reports whether the post keeps an extensionless URL for old links.
func (p *Post) Legacy() bool {
	return p.meta.Bool(FieldLegacyURL, false) || p.meta.Bool(FieldLegacyRedirect, false)
}

// DirectoryStyle reports whether the post is written as <stem>/index.html.
// Bundles always are, so their resources sit next to the page.
func (p *Post) DirectoryStyle() bool {
	return p.IsBundle() || p.Legacy()
}

// OutputPath is the slash-separated page path relative to the output root.
func (p *Post) OutputPath() string {
	if p.DirectoryStyle() {
		return p.stem + "/index.html"
	}
	return p.stem + ".html"
}

// URL is the site-relative link to the post, without a leading slash.
func (p *Post) URL() string {
	if p.DirectoryStyle() {
		return p.stem + "/"
	}
	return p.stem + ".html"
}

// Params exposes all frontmatter to templates. Dates are time.Time, lists []string.
func (p *Post) Params() map[string]any { return p.meta.Map() }

// Resources lists the bundle files copied with the post, as paths relative
// to the output root.
func (p *Post) Resources() []string {
	out := make([]string, len(p.resources))
	for i, r := range p.resources {
		out[i] = p.stem + "/" + r.rel
	}
	return out
}

// missingDate returns the error reported for a post that cannot be ordered.
func (p *Post) missingDate() *MissingRequiredFieldError {
	e := &MissingRequiredFieldError{Stem: p.stem, Source: p.source, Field: FieldDate}
	if v, ok := p.meta.Get(FieldDate); ok {
		e.Reason = "not a calendar date: " + v.String()
	} else {
		e.Reason = "not set"
	}
	return e
}
