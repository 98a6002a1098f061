package blog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/theacodes/blog.thea.codes/internal/fileutil"
)

// sourceExtensions are the Markdown file extensions recognised, in lookup
// order for bundle index files.
var sourceExtensions = []string{".md", ".markdown"}

// bundleIndex is the base name of a bundle's source file.
const bundleIndex = "index"

// source is a discovered post before it is read.
type source struct {
	path   string
	stem   string
	bundle string
}

// discoverSources lists the posts under dir in lexical order: flat
// <stem>.md files and <stem>/index.md bundles. Hidden entries are skipped.
// A missing dir is an empty site and returns (nil, false, nil).
func discoverSources(dir string) (srcs []source, exists bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &SourceDiscoveryError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		// Stat follows symlinks, so linked files and directories behave like real ones.
		info, err := os.Stat(full)
		if err != nil {
			if isSourceName(name) {
				return nil, true, &SourceDiscoveryError{Path: full, Err: err}
			}
			continue
		}

		if info.IsDir() {
			if index := bundleSource(full); index != "" {
				srcs = append(srcs, source{path: index, stem: name, bundle: full})
			}
			continue
		}

		if info.Mode().IsRegular() && isSourceName(name) {
			srcs = append(srcs, source{path: full, stem: stemOf(name)})
		}
	}
	return srcs, true, nil
}

// bundleSource returns the index file of a bundle directory, or "".
func bundleSource(dir string) string {
	for _, ext := range sourceExtensions {
		p := filepath.Join(dir, bundleIndex+ext)
		if fileutil.FileExists(p) {
			return p
		}
	}
	return ""
}

// isSourceName reports whether a file name has a Markdown extension.
func isSourceName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range sourceExtensions {
		if ext == e {
			return stemOf(name) != ""
		}
	}
	return false
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// bundleResources lists the files under a bundle directory, except the
// post source and hidden files, as slash-separated relative paths.
func bundleResources(src source) ([]resource, error) {
	var out []resource
	err := filepath.WalkDir(src.bundle, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == src.bundle {
			return nil
		}
		rel, err := filepath.Rel(src.bundle, p)
		if err != nil {
			return err
		}
		if fileutil.IsHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || p == src.path {
			return nil
		}
		out = append(out, resource{src: p, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, &SourceDiscoveryError{Path: src.bundle, Err: err}
	}
	return out, nil
}

// readPost reads and parses one source. Read failures are discovery errors;
// parse failures are wrapped in a PostError at the parse stage.
func readPost(src source) (*Post, error) {
	data, err := os.ReadFile(src.path) // #nosec G304 -- path comes from directory listing
	if err != nil {
		return nil, &SourceDiscoveryError{Path: src.path, Err: err}
	}

	p, err := ParsePost(src.stem, string(data))
	if err != nil {
		return nil, &PostError{Source: src.path, Stem: src.stem, Stage: StageParse, Err: err}
	}
	p.source = src.path
	p.bundle = src.bundle

	if p.bundle != "" {
		if p.resources, err = bundleResources(src); err != nil {
			return nil, err
		}
	}
	return p, nil
}
