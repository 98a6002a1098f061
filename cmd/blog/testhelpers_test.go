package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv returns an Environment with captured output, no .env file and
// the given process variables.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, stdout, stderr
}

// testSite lays out a site under a temp dir and returns the path of a
// config file pointing at it, plus the output directory.
func testSite(t *testing.T, posts map[string]string) (cfgPath, out string) {
	t.Helper()
	root := t.TempDir()
	srcs := filepath.Join(root, "srcs")
	out = filepath.Join(root, "docs")
	if err := os.MkdirAll(srcs, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	for name, content := range posts {
		if err := os.WriteFile(filepath.Join(srcs, name), []byte(content), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	cfg := strings.Join([]string{
		"site:",
		"  title: Test Blog",
		"  url: https://blog.example.com",
		"paths:",
		"  sources: " + srcs,
		"  output: " + out,
		"  static: " + filepath.Join(root, "static"),
		"  templates: " + filepath.Join(root, "templates"),
		"",
	}, "\n")
	cfgPath = filepath.Join(root, "site.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return cfgPath, out
}

const helloPost = "---\ntitle: Hello\ndate: 2021-01-01\n---\n\nHello, world.\n"
