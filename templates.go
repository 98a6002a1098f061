package blog

import (
	"bytes"
	"encoding/xml"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"

	"github.com/theacodes/blog.thea.codes/internal/assets"
	"github.com/theacodes/blog.thea.codes/internal/dateutil"
	"github.com/theacodes/blog.thea.codes/internal/fileutil"
	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// SiteInfo describes the site to templates.
type SiteInfo struct {
	Title       string
	Description string
	URL         string // absolute root URL, may be empty
	Author      string
}

// Links are root-relative URLs of site-wide outputs. Feed is empty when the
// feed is disabled.
type Links struct {
	Home       string
	SiteCSS    string
	Stylesheet string
	Feed       string
}

// PageData is the context of the post template.
type PageData struct {
	Site    SiteInfo
	Links   Links
	Post    *Post
	Content htmltemplate.HTML
}

// IndexData is the context of the index template. Posts are newest first.
type IndexData struct {
	Site  SiteInfo
	Links Links
	Posts []*Post
}

// FeedData is the context of the feed template. Posts are in index order.
type FeedData struct {
	Site    SiteInfo
	Links   Links
	Posts   []*Post
	SiteURL string
	Updated time.Time
}

// renderContext holds everything the render phase shares across workers.
// Parsed templates are safe for concurrent execution.
type renderContext struct {
	site  SiteInfo
	links Links
	post  *htmltemplate.Template
	index *htmltemplate.Template
	feed  *texttemplate.Template // nil when the feed is disabled
}

// newRenderContext parses the template set. Feed parsing is skipped when
// links.Feed is empty.
func newRenderContext(ts *assets.TemplateSet, site SiteInfo, links Links) (*renderContext, error) {
	rc := &renderContext{site: site, links: links}
	funcs := rc.funcs()

	var err error
	if rc.post, err = htmltemplate.New(assets.PostTemplate).Funcs(funcs).Parse(ts.Post); err != nil {
		return nil, &TemplateError{Template: assets.PostTemplate, Err: err}
	}
	if rc.index, err = htmltemplate.New(assets.IndexTemplate).Funcs(funcs).Parse(ts.Index); err != nil {
		return nil, &TemplateError{Template: assets.IndexTemplate, Err: err}
	}
	if links.Feed != "" {
		feedFuncs := texttemplate.FuncMap(rc.funcs())
		feedFuncs["xml"] = xmlEscape
		feedFuncs["guid"] = rc.guid
		feedFuncs["feedContent"] = rc.feedContent
		if rc.feed, err = texttemplate.New(assets.FeedTemplate).Funcs(feedFuncs).Parse(ts.Feed); err != nil {
			return nil, &TemplateError{Template: assets.FeedTemplate, Err: err}
		}
	}
	return rc, nil
}

// funcs returns a fresh map of the functions shared by every template.
func (rc *renderContext) funcs() map[string]any {
	return map[string]any{
		"date":   formatDate,
		"rfc822": rfc822,
		"url":    rootURL,
		"absURL": rc.absURL,
	}
}

func (rc *renderContext) renderPage(p *Post) ([]byte, error) {
	var buf bytes.Buffer
	err := rc.post.Execute(&buf, PageData{
		Site:    rc.site,
		Links:   rc.links,
		Post:    p,
		Content: htmltemplate.HTML(p.Content()), // #nosec G203 -- produced by the render pipeline
	})
	if err != nil {
		return nil, &TemplateError{Template: assets.PostTemplate, Stem: p.Stem(), Err: err}
	}
	return buf.Bytes(), nil
}

func (rc *renderContext) renderIndex(posts []*Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := rc.index.Execute(&buf, IndexData{Site: rc.site, Links: rc.links, Posts: posts}); err != nil {
		return nil, &TemplateError{Template: assets.IndexTemplate, Err: err}
	}
	return buf.Bytes(), nil
}

func (rc *renderContext) renderFeed(posts []*Post, updated time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := rc.feed.Execute(&buf, FeedData{
		Site:    rc.site,
		Links:   rc.links,
		Posts:   posts,
		SiteURL: rc.absURL(""),
		Updated: updated,
	})
	if err != nil {
		return nil, &TemplateError{Template: assets.FeedTemplate, Err: err}
	}
	return buf.Bytes(), nil
}

// absURL joins a site-relative path to the site URL. Without a site URL
// the result is root-relative.
func (rc *renderContext) absURL(p string) string {
	if fileutil.IsURL(p) {
		return p
	}
	p = strings.TrimPrefix(p, "/")
	if rc.site.URL == "" {
		return "/" + p
	}
	return strings.TrimSuffix(rc.site.URL, "/") + "/" + p
}

// guid derives a stable feed entry id from the site URL and the post stem,
// so ids survive changes to a post's title or URL style.
func (rc *renderContext) guid(p *Post) string {
	name := strings.TrimSuffix(rc.site.URL, "/") + "#" + p.Stem()
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// feedContent returns the post content with links resolved against the
// post's absolute URL.
func (rc *renderContext) feedContent(p *Post) (string, error) {
	return pipeline.AbsoluteURLs(p.Content(), rc.absURL(p.URL()))
}

func formatDate(format string, t time.Time) (string, error) {
	return dateutil.Format(t, format)
}

func rfc822(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

func rootURL(p string) string {
	if fileutil.IsURL(p) {
		return p
	}
	return "/" + strings.TrimPrefix(p, "/")
}

func xmlEscape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}
