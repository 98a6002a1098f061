package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Origin tells where a resolved theme file came from.
type Origin int

const (
	FromBuiltin Origin = iota
	FromOverride
)

func (o Origin) String() string {
	if o == FromOverride {
		return "override"
	}
	return "builtin"
}

// TemplateSet holds the raw template sources a build parses.
type TemplateSet struct {
	Post  string
	Index string
	Feed  string

	// Overridden lists the files taken from the templates directory.
	Overridden []string
}

// Theme resolves theme files. The zero Theme serves built-ins only.
type Theme struct {
	dir  string
	root *os.Root
}

// Open returns a Theme layering dir over the built-in files. An empty dir
// yields a built-in-only theme. The caller must Close the result.
func Open(dir string) (*Theme, error) {
	if dir == "" {
		return &Theme{}, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThemeDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrThemeDir, dir)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThemeDir, err)
	}
	return &Theme{dir: dir, root: root}, nil
}

// Dir returns the override directory, or "" when there is none.
func (t *Theme) Dir() string { return t.dir }

// Close releases the override directory handle.
func (t *Theme) Close() error {
	if t.root == nil {
		return nil
	}
	return t.root.Close()
}

// Read returns the named theme file, preferring the override directory.
// Only a missing override falls back to the built-in file.
func (t *Theme) Read(name string) (string, Origin, error) {
	if err := checkName(name); err != nil {
		return "", FromBuiltin, err
	}
	if t.root != nil {
		data, err := t.root.ReadFile(name)
		if err == nil {
			return string(data), FromOverride, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", FromOverride, fmt.Errorf("%w %s: %v", ErrRead, name, err)
		}
	}
	content, err := Builtin(name)
	return content, FromBuiltin, err
}

// Templates resolves the post, index and feed templates.
func (t *Theme) Templates() (*TemplateSet, error) {
	ts := &TemplateSet{}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{PostTemplate, &ts.Post},
		{IndexTemplate, &ts.Index},
		{FeedTemplate, &ts.Feed},
	} {
		content, origin, err := t.Read(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = content
		if origin == FromOverride {
			ts.Overridden = append(ts.Overridden, f.name)
		}
	}
	return ts, nil
}

// Stylesheet returns the site stylesheet.
func (t *Theme) Stylesheet() (string, error) {
	css, _, err := t.Read(Stylesheet)
	return css, err
}
