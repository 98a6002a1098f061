package assets

import (
	"embed"
	"fmt"
	"path"
)

//go:embed templates styles
var builtin embed.FS

// builtinPath maps a theme file name to its place in the embedded tree.
func builtinPath(name string) string {
	if path.Ext(name) == ".css" {
		return "styles/" + name
	}
	return "templates/" + name
}

// Builtin returns the compiled-in version of a theme file.
func Builtin(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := builtin.ReadFile(builtinPath(name))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return string(data), nil
}
