package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/theacodes/blog.thea.codes/internal/devserver"
	"github.com/theacodes/blog.thea.codes/internal/hints"
	"github.com/theacodes/blog.thea.codes/internal/logfields"
)

// runServe builds the site, then rebuilds on change and serves the output
// until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	b, cfg, logger, err := newSite(&f.buildFlags, env)
	if err != nil {
		return err
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s at http://%s/ (Ctrl-C to stop)\n", cfg.Paths.Output, f.addr)
	}
	logger.Debug("watching", logfields.Count(len(b.WatchDirs())), logfields.Addr(f.addr))

	err = devserver.Serve(ctx, b, devserver.Config{Addr: f.addr, Logger: logger})
	if errors.Is(err, devserver.ErrListen) {
		return withHint(err, hints.ForListen(f.addr))
	}
	return explain(err, cfg)
}
