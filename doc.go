// Package blog builds a static blog from Markdown posts.
//
// # Quick Start
//
// Create a builder for a sources and an output directory, then build:
//
//	b, err := blog.NewBuilder("srcs", "docs",
//	    blog.WithSite(blog.SiteInfo{Title: "Thea's Blog", URL: "https://blog.thea.codes"}),
//	    blog.WithStaticDir("static"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := b.Build(ctx)
//
// # Sources
//
// A post is either a flat file, srcs/<stem>.md, or a bundle,
// srcs/<stem>/index.md. Every other file in a bundle directory is copied
// next to the generated page. Posts start with an optional YAML
// frontmatter block between two --- lines:
//
//	---
//	title: Hello
//	date: 2023-06-01
//	legacy_url: true
//	---
//
// date is required. legacy_url (or legacy_redirect) writes the post to
// <stem>/index.html instead of <stem>.html so old extensionless links keep
// working; bundles always use that layout. Other keys reach templates
// through Post.Params.
//
// # Build Pipeline
//
// Each post goes through these stages:
//
//  1. Frontmatter split and YAML decoding
//  2. Markdown to HTML via Goldmark (GFM, footnotes, fenced divs)
//  3. Syntax highlighting of language-tagged code blocks via chroma
//  4. Small structural fixups (table classes)
//  5. The post template, then the page is written
//
// Posts are rendered in parallel by a RendererPool. Once every post is
// written, posts are sorted by date, newest first, and the index and RSS
// feed are rendered from that order. The highlight theme stylesheet, the
// static directory, and CNAME or other fixed files are written alongside
// the posts.
//
// # Errors
//
// The first failure aborts the build. Errors name the offending source and
// stage: see PostError, SourceDiscoveryError, MissingRequiredFieldError,
// OutputPathCollisionError and TemplateError. Output is written in place,
// so a failed build can leave a partially updated output directory; rerun
// the build after fixing the error. Stale files from removed posts are never
// deleted.
//
// # Templates
//
// post.html, index.html and feed.xml are embedded. A templates directory
// (WithTemplatesDir) overrides them file by file, and may also provide
// site.css. Templates receive PageData, IndexData and FeedData.
package blog
