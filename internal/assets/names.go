package assets

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Theme file names.
const (
	PostTemplate  = "post.html"
	IndexTemplate = "index.html"
	FeedTemplate  = "feed.xml"
	Stylesheet    = "site.css"
)

// checkName accepts bare, non-hidden file names only.
func checkName(name string) error {
	if name == "" ||
		strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") ||
		!filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}
