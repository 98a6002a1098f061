// Package pipeline turns a post's Markdown body into HTML content.
//
// A body passes through three stages:
//   - Markdown to HTML via goldmark (GFM, footnotes, fenced divs), after
//     line endings are normalized
//   - syntax highlighting of fenced code blocks via chroma
//   - small structural fixups such as CSS classes on tables
//
// Highlighting runs on the rendered HTML rather than inside goldmark so the
// language alias table applies before any lexer lookup, and so the wrapper
// markup stays under this package's control.
//
// A Pipeline holds its own goldmark instance and output buffer. Create one
// per goroutine.
package pipeline
