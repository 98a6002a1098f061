package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if wantsVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// A leading flag or no arguments at all runs the build command.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := "build", args[1:]
	if len(rest) > 0 && isCommand(rest[0]) {
		cmd, rest = rest[0], rest[1:]
	} else if len(rest) > 0 && !isFlag(rest[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", rest[0])
		printUsage(env.Stderr)
		return ExitUsage
	}

	var err error
	switch cmd {
	case "build":
		err = runBuild(ctx, rest, env)
	case "serve":
		err = runServe(ctx, rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "blog %s\n", Version)
	case "help":
		if !runHelp(rest, env) {
			return ExitUsage
		}
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// commands lists the recognised command names.
var commands = []string{"build", "serve", "completion", "version", "help"}

func isCommand(s string) bool {
	for _, c := range commands {
		if s == c {
			return true
		}
	}
	return false
}

func isFlag(s string) bool {
	return len(s) > 1 && s[0] == '-'
}

// wantsVerbose scans raw arguments for the verbose flag before any flag
// set exists, so GOMAXPROCS logging can be decided first.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}
