package blog

import (
	"errors"
	"fmt"

	"github.com/theacodes/blog.thea.codes/internal/frontmatter"
)

// Sentinel errors for library operations.
var (
	// ErrMalformedFrontmatter is returned (wrapped in a PostError) when a
	// metadata block is unterminated or is not a YAML mapping.
	ErrMalformedFrontmatter = frontmatter.ErrMalformedFrontmatter

	ErrSourceDiscovery      = errors.New("source discovery failed")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrOutputPathCollision  = errors.New("output path collision")
	ErrTemplate             = errors.New("template failed")
	ErrInvalidOption        = errors.New("invalid builder option")
	ErrUnknownStyle         = errors.New("unknown highlight style")
)

// Build stages named in PostError.
const (
	StageParse  = "parse"
	StageRender = "render"
	StageWrite  = "write"
)

// SourceDiscoveryError reports a sources directory or a matched source
// file that could not be read.
type SourceDiscoveryError struct {
	Path string
	Err  error
}

func (e *SourceDiscoveryError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSourceDiscovery, e.Path, e.Err)
}

func (e *SourceDiscoveryError) Unwrap() error { return e.Err }

func (e *SourceDiscoveryError) Is(target error) bool { return target == ErrSourceDiscovery }

// PostError attaches the offending source and the build stage to an error
// raised while processing one post.
type PostError struct {
	Source string
	Stem   string
	Stage  string
	Err    error
}

func (e *PostError) Error() string {
	where := e.Source
	if where == "" {
		where = e.Stem
	}
	return fmt.Sprintf("%s: %s: %v", where, e.Stage, e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }

// MissingRequiredFieldError reports a post without a usable value for a
// field the build depends on (the date used for ordering).
type MissingRequiredFieldError struct {
	Stem   string
	Source string
	Field  string
	Reason string
}

func (e *MissingRequiredFieldError) Error() string {
	msg := fmt.Sprintf("post %q: %v %q", e.Stem, ErrMissingRequiredField, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MissingRequiredFieldError) Is(target error) bool { return target == ErrMissingRequiredField }

// OutputPathCollisionError reports two producers of the same output path.
// Second is empty when the path is reserved by the site itself.
type OutputPathCollisionError struct {
	Path   string
	First  string
	Second string
}

func (e *OutputPathCollisionError) Error() string {
	return fmt.Sprintf("%v: %s is produced by both %s and %s", ErrOutputPathCollision, e.Path, e.First, e.Second)
}

func (e *OutputPathCollisionError) Is(target error) bool { return target == ErrOutputPathCollision }

// TemplateError wraps a template parse or execution failure. Stem is empty
// for failures not tied to one post.
type TemplateError struct {
	Template string
	Stem     string
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Stem == "" {
		return fmt.Sprintf("template %s: %v", e.Template, e.Err)
	}
	return fmt.Sprintf("template %s (post %q): %v", e.Template, e.Stem, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }
