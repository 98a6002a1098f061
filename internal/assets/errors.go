package assets

import "errors"

var (
	// ErrNotFound means no theme file of that name exists, built-in or not.
	ErrNotFound = errors.New("theme file not found")

	// ErrBadName rejects names that are not a plain file name.
	ErrBadName = errors.New("invalid theme file name")

	// ErrThemeDir means the templates directory cannot be used.
	ErrThemeDir = errors.New("invalid templates directory")

	// ErrRead is an override that exists but could not be read. It is never
	// papered over with the built-in file.
	ErrRead = errors.New("reading theme file")
)
