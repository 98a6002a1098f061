package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/theacodes/blog.thea.codes/internal/config"
)

// ErrDotenv is returned when a present .env file cannot be read.
var ErrDotenv = errors.New("failed to read .env file")

const envPrefix = "BLOG_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without editing the YAML file.
type envConfig struct {
	ConfigPath string // BLOG_CONFIG: config file name or path
	Sources    string // BLOG_SOURCES: posts directory
	Output     string // BLOG_OUTPUT: site output directory
	Static     string // BLOG_STATIC: static assets directory
	Templates  string // BLOG_TEMPLATES: template override directory
	SiteURL    string // BLOG_SITE_URL: absolute site URL
	Style      string // BLOG_STYLE: highlight style name
	Workers    int    // BLOG_WORKERS: parallel workers
}

// knownEnvVars lists valid BLOG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"BLOG_CONFIG":    true,
	"BLOG_SOURCES":   true,
	"BLOG_OUTPUT":    true,
	"BLOG_STATIC":    true,
	"BLOG_TEMPLATES": true,
	"BLOG_SITE_URL":  true,
	"BLOG_STYLE":     true,
	"BLOG_WORKERS":   true,
}

// envSource reads variables from the process, falling back to the .env
// file. Process variables always win.
type envSource struct {
	getenv  func(string) string
	environ func() []string
	dotenv  map[string]string
}

// newEnvSource reads the .env file named by env.Dotenv. A missing file is
// not an error.
func newEnvSource(env *Environment) (*envSource, error) {
	src := &envSource{getenv: env.Getenv, environ: env.Environ}
	if env.Dotenv == "" {
		return src, nil
	}
	vals, err := godotenv.Read(env.Dotenv)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return src, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDotenv, env.Dotenv, err)
	}
	src.dotenv = vals
	return src, nil
}

func (s *envSource) get(name string) string {
	if s.getenv != nil {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return s.dotenv[name]
}

// names returns every BLOG_* variable name from both sources, sorted.
func (s *envSource) names() []string {
	seen := make(map[string]bool)
	if s.environ != nil {
		for _, kv := range s.environ() {
			name, _, _ := strings.Cut(kv, "=")
			if strings.HasPrefix(name, envPrefix) {
				seen[name] = true
			}
		}
	}
	for name := range s.dotenv {
		if strings.HasPrefix(name, envPrefix) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized BLOG_* values.
func loadEnvConfig(src *envSource) *envConfig {
	cfg := &envConfig{
		ConfigPath: src.get("BLOG_CONFIG"),
		Sources:    src.get("BLOG_SOURCES"),
		Output:     src.get("BLOG_OUTPUT"),
		Static:     src.get("BLOG_STATIC"),
		Templates:  src.get("BLOG_TEMPLATES"),
		SiteURL:    src.get("BLOG_SITE_URL"),
		Style:      src.get("BLOG_STYLE"),
	}

	// Parse int for workers
	if workers := src.get("BLOG_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized BLOG_* variables.
// Helps catch typos like BLOG_SOURCE instead of BLOG_SOURCES.
func warnUnknownEnvVars(w io.Writer, src *envSource) {
	for _, name := range src.names() {
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later
// via mergeFlags and win over both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Sources != "" {
		cfg.Paths.Sources = env.Sources
	}
	if env.Output != "" {
		cfg.Paths.Output = env.Output
	}
	if env.Static != "" {
		cfg.Paths.Static = env.Static
	}
	if env.Templates != "" {
		cfg.Paths.Templates = env.Templates
	}
	if env.SiteURL != "" {
		cfg.Site.URL = env.SiteURL
	}
	if env.Style != "" {
		cfg.Highlight.Style = env.Style
	}
	if env.Workers > 0 {
		cfg.Build.Workers = env.Workers
	}
}
