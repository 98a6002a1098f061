package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	blog "github.com/theacodes/blog.thea.codes"
	"github.com/theacodes/blog.thea.codes/internal/hints"
)

// runBuild renders the site once.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	b, cfg, _, err := newSite(f, env)
	if err != nil {
		return err
	}

	res, err := b.Build(ctx)
	if err != nil {
		// Output already written stays on disk; a failed build is not rolled back.
		return explain(err, cfg)
	}

	if len(res.Posts) == 0 && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: no posts found in %s%s\n", cfg.Paths.Sources, hints.ForSourcesDirectory(cfg.Paths.Sources))
	}
	if !f.common.quiet {
		printSummary(env.Stdout, res, f.common.verbose)
	}
	return nil
}

// printSummary prints the one-line build summary, preceded by every post
// when verbose.
func printSummary(w io.Writer, res *blog.Result, verbose bool) {
	if verbose {
		for _, p := range res.Posts {
			fmt.Fprintf(w, "%s -> %s\n", p.Source(), p.OutputPath())
		}
	}
	fmt.Fprintf(w, "Built %s (%s written) in %v\n",
		plural(len(res.Posts), "post"),
		humanize.Bytes(uint64(res.Bytes)), // #nosec G115 -- byte counts are never negative
		res.Duration.Round(time.Millisecond))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
