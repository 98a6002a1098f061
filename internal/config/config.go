package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/theacodes/blog.thea.codes/internal/pipeline"
	"github.com/theacodes/blog.thea.codes/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxNameLength        = 100
	MaxURLLength         = 2048
	MaxPathLength        = 1024
	MaxDomainLength      = 253 // RFC 1035
	MaxStyleLength       = 50
	MaxWorkers           = 64
)

// Defaults applied to empty fields.
const (
	DefaultSourcesDir   = "srcs"
	DefaultOutputDir    = "docs"
	DefaultStaticDir    = "static"
	DefaultTemplatesDir = "templates"
	DefaultStylesheet   = "static/pygments.css"
	DefaultFeedPath     = "feed.xml"
)

// DefaultName is the config name looked up when none is given.
const DefaultName = "site"

// Config holds all configuration for a site build.
type Config struct {
	Site      SiteConfig        `yaml:"site"`
	Paths     PathsConfig       `yaml:"paths"`
	Markdown  MarkdownConfig    `yaml:"markdown"`
	Highlight HighlightConfig   `yaml:"highlight"`
	Feed      FeedConfig        `yaml:"feed"`
	Build     BuildConfig       `yaml:"build"`
	CNAME     string            `yaml:"cname"` // Domain-claim file content, empty = none
	Files     map[string]string `yaml:"files"` // Extra fixed files: relative path -> content
}

// SiteConfig describes the site for templates and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"` // Absolute root URL, used by the feed
	Author      string `yaml:"author"`
}

// PathsConfig locates the build inputs and output.
type PathsConfig struct {
	Sources   string `yaml:"sources"`
	Output    string `yaml:"output"`
	Static    string `yaml:"static"`
	Templates string `yaml:"templates"`
}

// MarkdownConfig defines Markdown rendering options.
type MarkdownConfig struct {
	Unsafe bool `yaml:"unsafe"` // Pass raw HTML through
}

// HighlightConfig defines code highlighting options.
type HighlightConfig struct {
	Style      string            `yaml:"style"`      // chroma style name
	Stylesheet string            `yaml:"stylesheet"` // Output path of the theme CSS
	Aliases    map[string]string `yaml:"aliases"`    // Fence language -> lexer name
}

// FeedConfig defines RSS feed options.
type FeedConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil = enabled
	Path    string `yaml:"path"`
}

// BuildConfig defines build execution options.
type BuildConfig struct {
	Workers int `yaml:"workers"` // 0 = auto
}

// FeedEnabled reports whether the feed is generated.
func (f FeedConfig) FeedEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"site.title", c.Site.Title, MaxTitleLength},
		{"site.description", c.Site.Description, MaxDescriptionLength},
		{"site.url", c.Site.URL, MaxURLLength},
		{"site.author", c.Site.Author, MaxNameLength},
		{"paths.sources", c.Paths.Sources, MaxPathLength},
		{"paths.output", c.Paths.Output, MaxPathLength},
		{"paths.static", c.Paths.Static, MaxPathLength},
		{"paths.templates", c.Paths.Templates, MaxPathLength},
		{"highlight.style", c.Highlight.Style, MaxStyleLength},
		{"highlight.stylesheet", c.Highlight.Stylesheet, MaxPathLength},
		{"feed.path", c.Feed.Path, MaxPathLength},
		{"cname", c.CNAME, MaxDomainLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: site.url: must be an absolute http(s) URL, got %q", ErrInvalidValue, c.Site.URL)
		}
	}

	if c.Paths.Sources == "" || c.Paths.Output == "" {
		return fmt.Errorf("%w: paths.sources and paths.output are required", ErrInvalidValue)
	}
	if filepath.Clean(c.Paths.Sources) == filepath.Clean(c.Paths.Output) {
		return fmt.Errorf("%w: paths.output must differ from paths.sources (%q)", ErrInvalidValue, c.Paths.Output)
	}

	if c.Highlight.Style != "" {
		if _, ok := pipeline.LookupStyle(c.Highlight.Style); !ok {
			return fmt.Errorf("%w: highlight.style: unknown style %q", ErrInvalidValue, c.Highlight.Style)
		}
	}
	if err := validateOutputPath("highlight.stylesheet", c.Highlight.Stylesheet); err != nil {
		return err
	}
	if err := validateOutputPath("feed.path", c.Feed.Path); err != nil {
		return err
	}
	for name := range c.Files {
		if err := validateOutputPath(fmt.Sprintf("files[%q]", name), name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("%w: files: empty file name", ErrInvalidValue)
		}
	}

	if c.Build.Workers < 0 || c.Build.Workers > MaxWorkers {
		return fmt.Errorf("%w: build.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Build.Workers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateOutputPath rejects paths that are absolute or leave the output root.
// Empty values are accepted; defaults fill them in.
func validateOutputPath(fieldName, p string) error {
	if p == "" {
		return nil
	}
	if !IsOutputRelative(p) {
		return fmt.Errorf("%w: %s: must be a relative path inside the output directory, got %q", ErrInvalidValue, fieldName, p)
	}
	return nil
}

// IsOutputRelative reports whether p is a relative path that stays inside
// the directory it is joined to.
func IsOutputRelative(p string) bool {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.Paths.Sources == "" {
		c.Paths.Sources = DefaultSourcesDir
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutputDir
	}
	if c.Paths.Static == "" {
		c.Paths.Static = DefaultStaticDir
	}
	if c.Paths.Templates == "" {
		c.Paths.Templates = DefaultTemplatesDir
	}
	if c.Highlight.Style == "" {
		c.Highlight.Style = pipeline.DefaultStyle
	}
	if c.Highlight.Stylesheet == "" {
		c.Highlight.Stylesheet = DefaultStylesheet
	}
	if c.Feed.Path == "" {
		c.Feed.Path = DefaultFeedPath
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if strings.TrimSpace(string(data)) != "" {
		if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// SearchPaths lists the files tried, in order, when resolving a config name.
// Tries extensions .yaml then .yml, in the current directory and then in
// the user config directory under blog/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "blog", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
