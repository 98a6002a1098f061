package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blog [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Render the site once (default)")
	fmt.Fprintln(w, "  serve       Build, then rebuild on change and preview locally")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'blog help <command>' for details on a specific command.")
}

// printSiteFlags prints the flags shared by build and serve.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Paths:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: site)")
	fmt.Fprintln(w, "  -s, --sources <dir>       Posts directory (default: srcs)")
	fmt.Fprintln(w, "  -o, --output <dir>        Site output directory (default: docs)")
	fmt.Fprintln(w, "      --static <dir>        Static assets directory (default: static)")
	fmt.Fprintln(w, "      --templates <dir>     Template override directory (default: templates)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "      --site-url <url>      Absolute site URL used by the feed")
	fmt.Fprintln(w, "      --style <name>        Syntax highlighting style (default: witchhazel)")
	fmt.Fprintln(w, "      --no-feed             Skip the RSS feed")
	fmt.Fprintln(w, "      --unsafe-html         Pass raw HTML in posts through")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and every post")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  BLOG_CONFIG, BLOG_SOURCES, BLOG_OUTPUT, BLOG_STATIC, BLOG_TEMPLATES,")
	fmt.Fprintln(w, "  BLOG_SITE_URL, BLOG_STYLE, BLOG_WORKERS (also read from ./.env)")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blog build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every post, the index and the feed into the output directory.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  unexpected error")
	fmt.Fprintln(w, "  2  invalid flags or config")
	fmt.Fprintln(w, "  3  unreadable sources or unwritable output")
	fmt.Fprintln(w, "  4  broken post or template")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blog serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, then watch sources, templates and static files and")
	fmt.Fprintln(w, "rebuild on change while serving the output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default: 127.0.0.1:8000)")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// runHelp prints help for a specific command. Returns false for an
// unknown command.
func runHelp(args []string, env *Environment) bool {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return true
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: blog version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: blog help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return false
	}
	return true
}
