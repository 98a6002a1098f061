// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Permissions for generated output.
const (
	FilePerm = 0o644
	DirPerm  = 0o755
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath  = errors.New("path cannot be empty")
	ErrNotRegular = errors.New("not a regular file")
)

// WriteFile writes data to path, creating parent directories as needed and
// replacing any existing file. The content goes to a temporary file in the
// same directory first and is renamed into place, so readers (the preview
// server) never observe a half-written page.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

// CopyFile copies the regular file src to dst with output permissions,
// creating parent directories. Returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	if src == "" || dst == "" {
		return 0, ErrEmptyPath
	}

	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s", ErrNotRegular, src)
	}

	in, err := os.Open(src) // #nosec G304 -- src comes from the site's own source tree
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), DirPerm); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm) // #nosec G304
	if err != nil {
		return 0, err
	}

	n, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return n, fmt.Errorf("copying %s: %w", src, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("closing %s: %w", dst, closeErr)
	}
	return n, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsHidden reports whether any element of the slash or OS separated
// relative path starts with a dot.
func IsHidden(rel string) bool {
	for _, part := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// IsURL returns true if the string looks like a URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
