package main

import (
	"errors"
	"os"

	blog "github.com/theacodes/blog.thea.codes"
	"github.com/theacodes/blog.thea.codes/internal/config"
	"github.com/theacodes/blog.thea.codes/internal/devserver"
)

// Process exit codes. 1 and 2 follow the usual Unix meaning.
const (
	ExitSuccess = 0
	ExitGeneral = 1 // anything unclassified
	ExitUsage   = 2 // bad flags, config or options
	ExitIO      = 3 // unreadable sources, unwritable output, bind failure
	ExitContent = 4 // a broken post or template
)

// exitClasses is checked in order; the first class with a matching sentinel
// wins. Content errors are handled before the table.
var exitClasses = []struct {
	code int
	errs []error
}{
	{ExitUsage, []error{
		ErrUsage,
		ErrUnsupportedShell,
		config.ErrConfigNotFound,
		config.ErrEmptyConfigName,
		config.ErrConfigParse,
		config.ErrFieldTooLong,
		config.ErrInvalidValue,
		blog.ErrInvalidOption,
		blog.ErrUnknownStyle,
	}},
	{ExitIO, []error{
		os.ErrNotExist,
		os.ErrPermission,
		blog.ErrSourceDiscovery,
		devserver.ErrListen,
		ErrDotenv,
	}},
}

// exitCodeFor classifies err, following %w chains.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if blog.IsContentError(err) {
		return ExitContent
	}
	for _, class := range exitClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	return ExitGeneral
}
