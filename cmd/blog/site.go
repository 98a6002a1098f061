package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	blog "github.com/theacodes/blog.thea.codes"
	"github.com/theacodes/blog.thea.codes/internal/config"
	"github.com/theacodes/blog.thea.codes/internal/hints"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// hintedError appends an actionable hint to an error message.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }

func (e *hintedError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}

// explain attaches the hint matching a build or serve error.
func explain(err error, cfg *config.Config) error {
	var (
		missing *blog.MissingRequiredFieldError
		perr    *blog.PostError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &missing):
		return withHint(err, hints.ForMissingDate(missing.Stem))
	case errors.Is(err, blog.ErrMalformedFrontmatter):
		return withHint(err, hints.ForMalformedFrontmatter())
	case errors.Is(err, blog.ErrOutputPathCollision):
		return withHint(err, hints.ForOutputCollision())
	case errors.Is(err, blog.ErrTemplate):
		return withHint(err, hints.ForTemplate(cfg.Paths.Templates))
	case errors.Is(err, blog.ErrUnknownStyle):
		return withHint(err, hints.ForStyleNotFound(pipeline.StyleNames()))
	case errors.Is(err, blog.ErrSourceDiscovery):
		return withHint(err, hints.ForSourcesDirectory(cfg.Paths.Sources))
	case errors.As(err, &perr) && perr.Stage == blog.StageWrite, errors.Is(err, os.ErrPermission):
		return withHint(err, hints.ForOutputDirectory())
	}
	return err
}

// loadSiteConfig resolves the site configuration.
// Precedence: CLI flags > BLOG_* environment > .env file > config file > defaults.
func loadSiteConfig(f *buildFlags, env *Environment) (*config.Config, error) {
	src, err := newEnvSource(env)
	if err != nil {
		return nil, err
	}
	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr, src)
	}
	envCfg := loadEnvConfig(src)

	name := f.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, withHint(fmt.Errorf("loading config: %w", err), hints.ForConfigNotFound(searchedPaths(name)))
		}
	} else {
		// The default config is optional.
		cfg, err = config.LoadConfig(config.DefaultName)
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// searchedPaths lists the candidates tried for a config name. A path is
// tried as-is.
func searchedPaths(name string) []string {
	if strings.ContainsAny(name, `/\`) || filepath.Ext(name) != "" {
		return []string{name}
	}
	return config.SearchPaths(name)
}

// mergeFlags merges CLI flags into config. Only flags given on the command
// line override config values.
func mergeFlags(f *buildFlags, cfg *config.Config) {
	if f.set["sources"] {
		cfg.Paths.Sources = f.paths.sources
	}
	if f.set["output"] {
		cfg.Paths.Output = f.paths.output
	}
	if f.set["static"] {
		cfg.Paths.Static = f.paths.static
	}
	if f.set["templates"] {
		cfg.Paths.Templates = f.paths.templates
	}
	if f.set["style"] {
		cfg.Highlight.Style = f.site.style
	}
	if f.set["site-url"] {
		cfg.Site.URL = f.site.siteURL
	}
	if f.set["no-feed"] {
		enabled := !f.site.noFeed
		cfg.Feed.Enabled = &enabled
	}
	if f.set["unsafe-html"] {
		cfg.Markdown.Unsafe = f.site.unsafeHTML
	}
	if f.set["workers"] {
		cfg.Build.Workers = f.site.workers
	}
}

// newLogger returns a text logger on w. Verbose wins over quiet.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newSite loads the configuration and creates the builder for it.
func newSite(f *buildFlags, env *Environment) (*blog.Builder, *config.Config, *slog.Logger, error) {
	cfg, err := loadSiteConfig(f, env)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(env.Stderr, f.common)
	b, err := blog.NewFromConfig(cfg, blog.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, explain(err, cfg)
	}
	logger.Debug("site configured",
		logfields.Source(cfg.Paths.Sources),
		logfields.Path(cfg.Paths.Output),
		logfields.Style(cfg.Highlight.Style))
	return b, cfg, logger, nil
}
