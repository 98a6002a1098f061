package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/theacodes/blog.thea.codes/internal/devserver"
)

// ErrUsage marks bad command-line input.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared by every site command.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pathFlags override the build inputs and output.
type pathFlags struct {
	sources   string
	output    string
	static    string
	templates string
}

// siteFlags override site and rendering settings.
type siteFlags struct {
	style      string
	siteURL    string
	noFeed     bool
	unsafeHTML bool
	workers    int
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common commonFlags
	paths  pathFlags
	site   siteFlags

	// set records the flags given on the command line, so defaults never
	// override config or environment values.
	set map[string]bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	buildFlags
	addr string
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and every post")
}

func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVarP(&f.sources, "sources", "s", "", "posts directory")
	fs.StringVarP(&f.output, "output", "o", "", "site output directory")
	fs.StringVar(&f.static, "static", "", "static assets directory")
	fs.StringVar(&f.templates, "templates", "", "template override directory")
}

func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.style, "style", "", "syntax highlighting style")
	fs.StringVar(&f.siteURL, "site-url", "", "absolute site URL used by the feed")
	fs.BoolVar(&f.noFeed, "no-feed", false, "skip the RSS feed")
	fs.BoolVar(&f.unsafeHTML, "unsafe-html", false, "pass raw HTML in posts through")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

func buildFlagSet(f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)
	addSiteFlags(fs, &f.site)
	return fs
}

func serveFlagSet(f *serveFlags) *flag.FlagSet {
	fs := buildFlagSet(&f.buildFlags)
	fs.Init("serve", flag.ContinueOnError)
	fs.StringVar(&f.addr, "addr", devserver.DefaultAddr, "preview server listen address")
	return fs
}

// parseBuildFlags parses build command flags. Positional arguments are
// rejected.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	f := &buildFlags{}
	fs := buildFlagSet(f)
	fs.Usage = func() { printBuildUsage(stderr) }
	if err := parse(fs, args, stderr); err != nil {
		return nil, err
	}
	f.set = changed(fs)
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := serveFlagSet(f)
	fs.Usage = func() { printServeUsage(stderr) }
	if err := parse(fs, args, stderr); err != nil {
		return nil, err
	}
	f.set = changed(fs)
	return f, nil
}

func parse(fs *flag.FlagSet, args []string, stderr io.Writer) error {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func changed(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
