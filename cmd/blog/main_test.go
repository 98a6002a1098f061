package main

// Notes:
// - runMain: we test exit codes and user-facing output end to end against a
//   real site in t.TempDir(). The serve loop itself is covered by the
//   devserver package; here only its listen failure path is exercised.
// - isCommand / wantsVerbose: argument classification.

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain_Build - build command
// ---------------------------------------------------------------------------

func TestRunMain_Build(t *testing.T) {
	t.Parallel()

	cfgPath, out := testSite(t, map[string]string{"hello.md": helloPost})
	env, stdout, stderr := testEnv(nil)

	code := runMain([]string{"blog", "-c", cfgPath}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "Built 1 post (") {
		t.Errorf("stdout = %q, want build summary", stdout.String())
	}
	for _, rel := range []string{"index.html", "hello.html", "feed.xml", "static/pygments.css"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s in output: %v", rel, err)
		}
	}
}

func TestRunMain_BuildCommandFlags(t *testing.T) {
	t.Parallel()

	cfgPath, out := testSite(t, map[string]string{"hello.md": helloPost})
	env, stdout, _ := testEnv(nil)

	code := runMain([]string{"blog", "build", "-c", cfgPath, "--no-feed", "-q"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", code, ExitSuccess)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet build wrote %q to stdout", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(out, "feed.xml")); !os.IsNotExist(err) {
		t.Errorf("feed.xml written with --no-feed (stat err %v)", err)
	}
}

func TestRunMain_BuildVerbose(t *testing.T) {
	t.Parallel()

	cfgPath, _ := testSite(t, map[string]string{"hello.md": helloPost})
	env, stdout, stderr := testEnv(nil)

	code := runMain([]string{"blog", "build", "-c", cfgPath, "-v"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "hello.md -> hello.html") {
		t.Errorf("verbose stdout = %q, want per-post line", stdout.String())
	}
	if !strings.Contains(stderr.String(), "level=DEBUG") {
		t.Errorf("verbose stderr has no debug logs: %q", stderr.String())
	}
}

func TestRunMain_EmptySiteWarns(t *testing.T) {
	t.Parallel()

	cfgPath, _ := testSite(t, nil)
	env, stdout, stderr := testEnv(nil)

	if code := runMain([]string{"blog", "-c", cfgPath}, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, want success for an empty site", code)
	}
	if !strings.Contains(stderr.String(), "warning: no posts found") {
		t.Errorf("stderr = %q, want empty-site warning", stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "Built 0 posts (") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ExitCodes - failure classification
// ---------------------------------------------------------------------------

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	sourcesIsFile := func(t *testing.T) string {
		cfgPath, _ := testSite(t, nil)
		srcs := filepath.Join(filepath.Dir(cfgPath), "srcs")
		if err := os.Remove(srcs); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(srcs, []byte("not a directory"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		return cfgPath
	}
	withPost := func(content string) func(t *testing.T) string {
		return func(t *testing.T) string {
			cfgPath, _ := testSite(t, map[string]string{"post.md": content})
			return cfgPath
		}
	}

	tests := []struct {
		name       string
		site       func(t *testing.T) string
		extra      []string
		wantCode   int
		wantStderr string
	}{
		{"missing date", withPost("---\ntitle: Undated\n---\n\nbody\n"), nil, ExitContent, "hint: add date: YYYY-MM-DD"},
		{"malformed frontmatter", withPost("---\ntitle: Open\n\nbody\n"), nil, ExitContent, "hint: frontmatter is a YAML mapping"},
		{"sources not a directory", sourcesIsFile, nil, ExitIO, "source discovery failed"},
		{"unknown flag", withPost(helloPost), []string{"--bogus"}, ExitUsage, "unknown flag"},
		{"bad style", withPost(helloPost), []string{"--style", "nope"}, ExitUsage, "unknown style"},
		{"bad workers", withPost(helloPost), []string{"-w", "1000"}, ExitUsage, "build.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv(nil)
			args := append([]string{"blog", "build", "-c", tt.site(t)}, tt.extra...)
			code := runMain(args, env)
			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", args, code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunMain_ConfigNotFound(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"blog", "-c", filepath.Join(t.TempDir(), "absent.yaml")}, env)
	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "hint: use --config") {
		t.Errorf("stderr = %q, want config hint", stderr.String())
	}
}

func TestRunMain_ServeListenFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer ln.Close()

	cfgPath, out := testSite(t, map[string]string{"hello.md": helloPost})
	env, _, stderr := testEnv(nil)

	code := runMain([]string{"blog", "serve", "-c", cfgPath, "--addr", ln.Addr().String(), "-q"}, env)
	if code != ExitIO {
		t.Errorf("runMain() = %d, want %d\nstderr: %s", code, ExitIO, stderr.String())
	}
	if !strings.Contains(stderr.String(), "hint: use --addr") {
		t.Errorf("stderr = %q, want listen hint", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(out, "hello.html")); err != nil {
		t.Errorf("initial build did not run: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Commands - version, help, completion, unknown
// ---------------------------------------------------------------------------

func TestRunMain_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"version"}, ExitSuccess, "blog dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Usage: blog [command]", ""},
		{"help build", []string{"help", "build"}, ExitSuccess, "Usage: blog build", ""},
		{"help serve", []string{"help", "serve"}, ExitSuccess, "--addr", ""},
		{"help completion", []string{"help", "completion"}, ExitSuccess, "Supported shells", ""},
		{"help unknown", []string{"help", "nope"}, ExitUsage, "", "Unknown command: nope"},
		{"build help flag", []string{"build", "--help"}, ExitSuccess, "", "Usage: blog build"},
		{"completion bash", []string{"completion", "bash"}, ExitSuccess, "complete -F _blog blog", ""},
		{"completion usage", []string{"completion"}, ExitSuccess, "Usage: blog completion", ""},
		{"completion unsupported", []string{"completion", "tcsh"}, ExitUsage, "", "unsupported shell"},
		{"unknown command", []string{"publish"}, ExitUsage, "", "Unknown command: publish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(append([]string{"blog"}, tt.args...), env)
			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Argument classification
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"build", "serve", "completion", "version", "help"} {
		if !isCommand(c) {
			t.Errorf("isCommand(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"", "Build", "-v", "srcs", "convert"} {
		if isCommand(c) {
			t.Errorf("isCommand(%q) = true, want false", c)
		}
	}
}

func TestWantsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"build"}, false},
		{[]string{"-v"}, true},
		{[]string{"serve", "--verbose"}, true},
		{[]string{"--", "-v"}, false},
		{[]string{"-q"}, false},
	}
	for _, tt := range tests {
		if got := wantsVerbose(tt.args); got != tt.want {
			t.Errorf("wantsVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
