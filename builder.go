package blog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theacodes/blog.thea.codes/internal/assets"
	"github.com/theacodes/blog.thea.codes/internal/config"
	"github.com/theacodes/blog.thea.codes/internal/fileutil"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
	"github.com/theacodes/blog.thea.codes/internal/pipeline"
)

// Output layout.
const (
	IndexPath          = "index.html"
	StaticOutputDir    = "static"
	SiteCSSPath        = StaticOutputDir + "/" + assets.Stylesheet
	CNAMEPath          = "CNAME"
	DefaultStylesheet  = config.DefaultStylesheet
	DefaultFeedPath    = config.DefaultFeedPath
	DefaultSourcesDir  = config.DefaultSourcesDir
	DefaultOutputDir   = config.DefaultOutputDir
	DefaultStaticDir   = config.DefaultStaticDir
	DefaultTemplateDir = config.DefaultTemplatesDir
)

// Builder turns a sources directory into a site. A Builder holds no state
// between builds; Build may be called repeatedly, but not concurrently on
// the same output directory.
type Builder struct {
	sourcesDir   string
	outputDir    string
	staticDir    string
	templatesDir string
	site         SiteInfo
	style        string
	stylesheet   string
	feedPath     string
	unsafe       bool
	aliases      map[string]string
	cname        string
	files        map[string]string
	workers      int
	logger       *slog.Logger
	now          func() time.Time
}

// Result summarises a successful build.
type Result struct {
	Posts            []*Post // newest first
	Files            int     // files written or copied
	Bytes            int64
	Duration         time.Duration
	UnknownLanguages []string
}

// NewBuilder creates a Builder reading posts from sourcesDir and writing the
// site to outputDir. Returns ErrInvalidOption or ErrUnknownStyle for a bad
// configuration.
func NewBuilder(sourcesDir, outputDir string, opts ...Option) (*Builder, error) {
	b := &Builder{
		sourcesDir: sourcesDir,
		outputDir:  outputDir,
		style:      pipeline.DefaultStyle,
		stylesheet: DefaultStylesheet,
		feedPath:   DefaultFeedPath,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	b.stylesheet = cleanRel(b.stylesheet)
	if b.feedPath != "" {
		b.feedPath = cleanRel(b.feedPath)
	}
	return b, nil
}

func (b *Builder) validate() error {
	if b.sourcesDir == "" || b.outputDir == "" {
		return fmt.Errorf("%w: sources and output directories are required", ErrInvalidOption)
	}
	if filepath.Clean(b.sourcesDir) == filepath.Clean(b.outputDir) {
		return fmt.Errorf("%w: output directory %q is the sources directory", ErrInvalidOption, b.outputDir)
	}
	if _, ok := pipeline.LookupStyle(b.style); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, b.style)
	}
	if !config.IsOutputRelative(b.stylesheet) {
		return fmt.Errorf("%w: stylesheet path %q must stay inside the output directory", ErrInvalidOption, b.stylesheet)
	}
	if b.feedPath != "" && !config.IsOutputRelative(b.feedPath) {
		return fmt.Errorf("%w: feed path %q must stay inside the output directory", ErrInvalidOption, b.feedPath)
	}
	for name := range b.files {
		if !config.IsOutputRelative(name) {
			return fmt.Errorf("%w: file %q must stay inside the output directory", ErrInvalidOption, name)
		}
	}
	if b.workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOption, b.workers)
	}
	return nil
}

// SourcesDir returns the directory posts are read from.
func (b *Builder) SourcesDir() string { return b.sourcesDir }

// OutputDir returns the directory the site is written to.
func (b *Builder) OutputDir() string { return b.outputDir }

// WatchDirs returns the input directories a rebuild depends on.
// Directories that are not configured are omitted.
func (b *Builder) WatchDirs() []string {
	var dirs []string
	for _, d := range []string{b.sourcesDir, b.staticDir, b.templatesDir} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Build runs a full build. Posts are read and rendered in parallel; the
// index and feed are rendered after every post is written. The first error
// cancels the build and is returned; files already written stay on disk.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := b.logger

	ts, siteCSS, err := b.loadAssets()
	if err != nil {
		return nil, err
	}
	rc, err := newRenderContext(ts, b.site, b.links())
	if err != nil {
		return nil, err
	}
	if b.feedPath != "" && b.site.URL == "" {
		log.Warn("site url not set, feed links are root-relative")
	}

	srcs, exists, err := discoverSources(b.sourcesDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Warn("sources directory not found, building an empty site", logfields.Path(b.sourcesDir))
	}

	workers := ResolvePoolSize(b.workers)
	log.Debug("discovered sources", logfields.Count(len(srcs)), logfields.Workers(workers))

	posts, err := readPosts(ctx, srcs, workers)
	if err != nil {
		return nil, err
	}

	static, err := b.staticFiles()
	if err != nil {
		return nil, err
	}
	pl, err := b.plan(posts, static, siteCSS)
	if err != nil {
		return nil, err
	}

	unknown := pipeline.NewUnknownLanguages(log)
	pool := NewRendererPool(workers, pipeline.Config{
		Unsafe:  b.unsafe,
		Aliases: b.aliases,
		Unknown: unknown,
	})
	w := &outputWriter{root: b.outputDir}

	// Site assets have no dependency on posts and are written alongside them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.writeAssets(gctx, w, pl)
	})
	for _, p := range posts {
		g.Go(func() error {
			return b.renderPost(gctx, pool, rc, w, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range posts {
		if !p.HasDate() {
			return nil, p.missingDate()
		}
	}
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(x, y *Post) int {
		return y.Date().Compare(x.Date())
	})

	index, err := rc.renderIndex(sorted)
	if err != nil {
		return nil, err
	}
	if err := w.write(IndexPath, index); err != nil {
		return nil, err
	}

	if rc.feed != nil {
		updated := b.now().UTC()
		if len(sorted) > 0 {
			updated = sorted[0].Date()
		}
		feed, err := rc.renderFeed(sorted, updated)
		if err != nil {
			return nil, err
		}
		if err := w.write(b.feedPath, feed); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Posts:            sorted,
		Files:            int(w.files.Load()),
		Bytes:            w.bytes.Load(),
		Duration:         time.Since(start),
		UnknownLanguages: unknown.Tags(),
	}
	log.Info("build complete",
		logfields.Count(len(sorted)),
		slog.Int("files", res.Files),
		logfields.Path(b.outputDir),
		logfields.Duration(res.Duration))
	return res, nil
}

// links returns the root-relative URLs of the site-wide outputs.
func (b *Builder) links() Links {
	l := Links{
		Home:       "/",
		SiteCSS:    "/" + SiteCSSPath,
		Stylesheet: "/" + cleanRel(b.stylesheet),
	}
	if b.feedPath != "" {
		l.Feed = "/" + b.feedPath
	}
	return l
}

// loadAssets reads the templates and the site stylesheet, preferring files
// in the templates directory. A missing templates directory means built-ins only.
func (b *Builder) loadAssets() (*assets.TemplateSet, string, error) {
	dir := b.templatesDir
	if dir != "" && !fileutil.DirExists(dir) {
		b.logger.Debug("templates directory not found, using built-in templates", logfields.Path(dir))
		dir = ""
	}

	theme, err := assets.Open(dir)
	if err != nil {
		return nil, "", &TemplateError{Template: dir, Err: err}
	}
	defer theme.Close()

	ts, err := theme.Templates()
	if err != nil {
		return nil, "", &TemplateError{Template: dir, Err: err}
	}
	for _, name := range ts.Overridden {
		b.logger.Debug("template override", logfields.Path(filepath.Join(dir, name)))
	}
	css, err := theme.Stylesheet()
	if err != nil {
		return nil, "", fmt.Errorf("loading site stylesheet: %w", err)
	}
	return ts, css, nil
}

// readPosts reads and parses sources in parallel, keeping discovery order.
func readPosts(ctx context.Context, srcs []source, workers int) ([]*Post, error) {
	posts := make([]*Post, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range srcs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := readPost(src)
			if err != nil {
				return err
			}
			posts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

// staticFiles lists the static directory's files as output-relative resources.
func (b *Builder) staticFiles() ([]resource, error) {
	if b.staticDir == "" {
		return nil, nil
	}
	if !fileutil.DirExists(b.staticDir) {
		b.logger.Debug("static directory not found, skipping copy", logfields.Path(b.staticDir))
		return nil, nil
	}

	var out []resource
	err := filepath.WalkDir(b.staticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.staticDir, p)
		if err != nil {
			return err
		}
		if rel != "." && fileutil.IsHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, resource{src: p, rel: StaticOutputDir + "/" + filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, &SourceDiscoveryError{Path: b.staticDir, Err: err}
	}
	return out, nil
}

// sitePlan is the checked set of outputs of one build.
type sitePlan struct {
	static  []resource
	siteCSS string // empty when the static directory provides site.css
}

// siteOutput is a generated file that is not a post.
type siteOutput struct {
	path  string
	owner string
}

// plan checks that no two producers share an output path and decides which
// static files are copied. Generated site files win over static files.
func (b *Builder) plan(posts []*Post, static []resource, siteCSS string) (*sitePlan, error) {
	claimed := map[string]string{}
	claim := func(p, owner string) error {
		if prev, ok := claimed[p]; ok {
			return &OutputPathCollisionError{Path: p, First: prev, Second: owner}
		}
		claimed[p] = owner
		return nil
	}

	site := []siteOutput{
		{IndexPath, "the index page"},
		{b.stylesheet, "the highlight stylesheet"},
	}
	if b.feedPath != "" {
		site = append(site, siteOutput{b.feedPath, "the feed"})
	}
	if b.cname != "" {
		site = append(site, siteOutput{CNAMEPath, "the cname setting"})
	}
	for _, name := range slices.Sorted(maps.Keys(b.files)) {
		site = append(site, siteOutput{cleanRel(name), "the files setting"})
	}

	staticHasSiteCSS := slices.ContainsFunc(static, func(r resource) bool { return r.rel == SiteCSSPath })
	if !staticHasSiteCSS {
		site = append(site, siteOutput{SiteCSSPath, "the site stylesheet"})
	} else {
		siteCSS = ""
	}

	for _, s := range site {
		if err := claim(s.path, s.owner); err != nil {
			return nil, err
		}
	}

	var kept []resource
	for _, r := range static {
		if owner, ok := claimed[r.rel]; ok {
			b.logger.Warn("static file replaced by generated output", logfields.Path(r.rel), slog.String("owner", owner))
			continue
		}
		claimed[r.rel] = r.src
		kept = append(kept, r)
	}

	// Directory-style posts may not take over a directory the site writes into.
	reservedDirs := map[string]string{StaticOutputDir: "the static directory"}
	for p, owner := range claimed {
		if dir, _, ok := strings.Cut(p, "/"); ok {
			if _, seen := reservedDirs[dir]; !seen {
				reservedDirs[dir] = owner
			}
		}
	}

	stems := map[string]string{}
	for _, p := range posts {
		id := p.source
		if id == "" {
			id = p.stem
		}
		if prev, ok := stems[p.stem]; ok {
			return nil, &OutputPathCollisionError{Path: p.OutputPath(), First: prev, Second: id}
		}
		stems[p.stem] = id

		if p.DirectoryStyle() {
			if owner, ok := reservedDirs[p.stem]; ok {
				return nil, &OutputPathCollisionError{Path: p.stem + "/", First: owner, Second: id}
			}
		}
		if err := claim(p.OutputPath(), id); err != nil {
			return nil, err
		}
		for _, r := range p.Resources() {
			if err := claim(r, id); err != nil {
				return nil, err
			}
		}
	}

	return &sitePlan{static: kept, siteCSS: siteCSS}, nil
}

// writeAssets copies static files and writes the generated site files.
func (b *Builder) writeAssets(ctx context.Context, w *outputWriter, pl *sitePlan) error {
	for _, r := range pl.static {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.copy(r.src, r.rel); err != nil {
			return err
		}
	}

	css, err := pipeline.StyleCSS(b.style)
	if err != nil {
		return err
	}
	if err := w.write(b.stylesheet, []byte(css)); err != nil {
		return err
	}
	b.logger.Debug("wrote highlight stylesheet", logfields.Style(b.style), logfields.Path(b.stylesheet))

	if pl.siteCSS != "" {
		if err := w.write(SiteCSSPath, []byte(pl.siteCSS)); err != nil {
			return err
		}
	}

	if b.cname != "" {
		if err := w.write(CNAMEPath, []byte(b.cname+"\n")); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(b.files)) {
		if err := w.write(cleanRel(name), []byte(b.files[name])); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// renderPost renders one post, writes its page and copies its resources.
func (b *Builder) renderPost(ctx context.Context, pool *RendererPool, rc *renderContext, w *outputWriter, p *Post) error {
	start := time.Now()
	fail := func(stage string, err error) error {
		return &PostError{Source: p.source, Stem: p.stem, Stage: stage, Err: err}
	}

	pl, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	content, err := pl.Render(ctx, p.body)
	pool.Release(pl)
	if err != nil {
		return fail(StageRender, err)
	}
	p.content = content

	page, err := rc.renderPage(p)
	if err != nil {
		return fail(StageRender, err)
	}
	if err := w.write(p.OutputPath(), page); err != nil {
		return fail(StageWrite, err)
	}
	for _, r := range p.resources {
		if err := w.copy(r.src, p.stem+"/"+r.rel); err != nil {
			return fail(StageWrite, err)
		}
	}

	b.logger.Debug("rendered post",
		logfields.Stem(p.stem),
		logfields.Path(p.OutputPath()),
		logfields.Duration(time.Since(start)))
	return nil
}

// outputWriter writes files under the output root and counts them.
// Safe for concurrent use.
type outputWriter struct {
	root  string
	files atomic.Int64
	bytes atomic.Int64
}

func (w *outputWriter) write(rel string, data []byte) error {
	if err := fileutil.WriteFile(w.path(rel), data); err != nil {
		return err
	}
	w.files.Add(1)
	w.bytes.Add(int64(len(data)))
	return nil
}

func (w *outputWriter) copy(src, rel string) error {
	n, err := fileutil.CopyFile(src, w.path(rel))
	if err != nil {
		return err
	}
	w.files.Add(1)
	w.bytes.Add(n)
	return nil
}

func (w *outputWriter) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// cleanRel normalises an output-relative path to slash form.
func cleanRel(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// IsContentError reports whether err is caused by site content rather than
// the environment: malformed frontmatter, a missing date, an output path
// collision or a template failure.
func IsContentError(err error) bool {
	return errors.Is(err, ErrMalformedFrontmatter) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrOutputPathCollision) ||
		errors.Is(err, ErrTemplate)
}
