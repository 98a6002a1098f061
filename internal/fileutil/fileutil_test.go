package fileutil_test

// Notes:
// - Permission assertions are skipped on Windows, where os.Chmod only
//   toggles the read-only bit.
// - WriteFile's Close and Chmod error branches are not tested because
//   triggering them is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/theacodes/blog.thea.codes/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFile - Output file creation
// ---------------------------------------------------------------------------

func TestWriteFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rel     string
		content string
	}{
		{
			name:    "flat file",
			rel:     "new-post.html",
			content: "<p>hi</p>",
		},
		{
			name:    "nested directories created",
			rel:     "old-post/index.html",
			content: "<p>legacy</p>",
		},
		{
			name:    "empty content",
			rel:     "CNAME",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.rel)
			if err := fileutil.WriteFile(path, []byte(tt.content)); err != nil {
				t.Fatalf("WriteFile() unexpected error: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read written file: %v", err)
			}
			if string(got) != tt.content {
				t.Errorf("content = %q, want %q", got, tt.content)
			}

			if runtime.GOOS != "windows" {
				info, _ := os.Stat(path)
				if perm := info.Mode().Perm(); perm != fileutil.FilePerm {
					t.Errorf("permissions = %o, want %o", perm, fileutil.FilePerm)
				}
			}
		})
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(strings.Repeat("old ", 100)), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fileutil.WriteFile(path, []byte("new")); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestWriteFile_NoTempLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := fileutil.WriteFile(filepath.Join(dir, "a.html"), []byte("a")); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.html" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory entries = %v, want [a.html]", names)
	}
}

func TestWriteFile_Errors(t *testing.T) {
	t.Parallel()

	if err := fileutil.WriteFile("", []byte("x")); !errors.Is(err, fileutil.ErrEmptyPath) {
		t.Errorf("WriteFile(\"\") error = %v, want ErrEmptyPath", err)
	}

	// A regular file where a parent directory is needed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := fileutil.WriteFile(filepath.Join(blocker, "index.html"), []byte("x")); err == nil {
		t.Error("WriteFile() under a file: expected error")
	}
}

// ---------------------------------------------------------------------------
// TestCopyFile - Resource copying
// ---------------------------------------------------------------------------

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	content := []byte("\x89PNG\r\n\x1a\nbinary")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	dst := filepath.Join(dir, "out", "gallery", "photo.png")
	n, err := fileutil.CopyFile(src, dst)
	if err != nil {
		t.Fatalf("CopyFile() unexpected error: %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("CopyFile() = %d bytes, want %d", n, len(content))
	}
	got, _ := os.ReadFile(dst)
	if string(got) != string(content) {
		t.Errorf("copied content = %q, want %q", got, content)
	}
}

func TestCopyFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr error
	}{
		{
			name:    "empty source",
			src:     "",
			dst:     filepath.Join(dir, "x"),
			wantErr: fileutil.ErrEmptyPath,
		},
		{
			name:    "directory source",
			src:     dir,
			dst:     filepath.Join(dir, "x"),
			wantErr: fileutil.ErrNotRegular,
		},
		{
			name:    "missing source",
			src:     filepath.Join(dir, "missing"),
			dst:     filepath.Join(dir, "x"),
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fileutil.CopyFile(tt.src, tt.dst)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CopyFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Path probing
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantFile bool
		wantDir  bool
	}{
		{"existing file", testFile, true, false},
		{"directory", testDir, false, true},
		{"nonexistent path", filepath.Join(tempDir, "nonexistent"), false, false},
		{"empty path", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantFile {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsHidden - Dotfile detection
// ---------------------------------------------------------------------------

func TestIsHidden(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"photo.png":         false,
		"img/photo.png":     false,
		".DS_Store":         true,
		"img/.keep":         true,
		".git/config":       true,
		"./photo.png":       false,
		"../gallery/a.png":  false,
		`windows\.hidden\x`: true,
		"a.b/c.d":           false,
		"":                  false,
	}
	for in, want := range tests {
		if got := fileutil.IsHidden(in); got != want {
			t.Errorf("IsHidden(%q) = %v, want %v", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"https://blog.thea.codes/", true},
		{"http://localhost:8000", true},
		{"/static/site.css", false},
		{"ftp://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsURL(tt.input); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
