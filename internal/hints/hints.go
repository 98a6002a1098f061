// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/theacodes/blog.thea.codes/internal/fileutil"
)

// IsInContainer reports whether the process runs under Docker or Podman,
// which drop a marker file at a well-known path.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv") || fileutil.FileExists("/run/.containerenv")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site.yaml"

	// Find a user config path (contains blog/) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/blog/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForMalformedFrontmatter returns a hint describing the frontmatter layout.
func ForMalformedFrontmatter() string {
	return format("frontmatter is a YAML mapping between two lines containing only ---")
}

// ForMissingDate returns a hint for posts without a usable date.
func ForMissingDate(stem string) string {
	if stem == "" {
		return format("add date: YYYY-MM-DD to the post's frontmatter")
	}
	return format("add date: YYYY-MM-DD to the frontmatter of " + stem)
}

// ForOutputCollision returns a hint for two sources mapping to one output.
func ForOutputCollision() string {
	return format("rename one of the sources, or drop legacy_url from one of them")
}

// ForTemplate returns a hint for template load or render errors.
func ForTemplate(dir string) string {
	if dir == "" {
		return format("templates are named post.html, index.html and feed.xml")
	}
	return format("files in " + dir + " override the built-in post.html, index.html and feed.xml")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForSourcesDirectory returns a hint when no posts were found.
func ForSourcesDirectory(dir string) string {
	return format("posts are " + filepath.ToSlash(filepath.Join(dir, "*.md")) + " or " +
		filepath.ToSlash(filepath.Join(dir, "<name>", "index.md")) + "; use --sources to change")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForListen returns hints for preview server bind errors.
// Inside a container the loopback address is unreachable from the host.
func ForListen(addr string) string {
	if IsInContainer() && strings.HasPrefix(addr, "127.0.0.1") {
		return format("use --addr to pick another address", "use --addr 0.0.0.0:8000 inside a container")
	}
	return format("use --addr to pick another address")
}

// format renders hints as one indented "hint:" line, "; " separated.
// Empty parts are skipped.
func format(parts ...string) string {
	parts = slices.DeleteFunc(parts, func(p string) bool { return p == "" })
	if len(parts) == 0 {
		return ""
	}
	return "\n  hint: " + strings.Join(parts, "; ")
}
