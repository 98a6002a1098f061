package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// urlAttrs lists the attributes resolved per element.
var urlAttrs = map[atom.Atom][]string{
	atom.A:      {"href"},
	atom.Img:    {"src"},
	atom.Source: {"src"},
	atom.Video:  {"src", "poster"},
	atom.Audio:  {"src"},
}

// AbsoluteURLs resolves relative links and media sources in an HTML fragment
// against base, the absolute URL of the page the fragment belongs to. Feed
// readers show content out of its page, so relative references would break.
// If base is empty or not absolute, returns the HTML unchanged.
//
// Rewrites:
//   - a[href]
//   - img, source, audio and video [src], video[poster]
//
// Left untouched:
//   - URLs that already carry a scheme (http, mailto, data, ...)
//   - protocol-relative URLs
//   - srcset attributes and script[src]
func AbsoluteURLs(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return htmlContent, nil
	}

	doc, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, baseURL)

	var buf strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// parseFragment parses content in a <body> context and hangs the nodes off
// a document node for uniform traversal.
func parseFragment(content string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// rewriteNode traverses the DOM and resolves relative references.
func rewriteNode(n *html.Node, base *url.URL) {
	if n.Type == html.ElementNode {
		for _, key := range urlAttrs[n.DataAtom] {
			rewriteAttr(n, key, base)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

// rewriteAttr resolves a single attribute if it holds a relative reference.
func rewriteAttr(n *html.Node, attrName string, base *url.URL) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativeRef(attr.Val) {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			continue // Leave unparsable values alone
		}
		n.Attr[i].Val = base.ResolveReference(ref).String()
	}
}

// isRelativeRef returns true if the reference should be resolved.
func isRelativeRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "//") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}
