package condition

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Sentinel errors.
var (
	// ErrEmptyRule is returned by Parse for an empty or all-whitespace group.
	ErrEmptyRule = errors.New("condition: empty rule")

	// ErrRecursionLimit is returned when nested parentheses exceed maxDepth.
	ErrRecursionLimit = errors.New("condition: exceeded maximum recursion levels")
)

// ParseError attaches the offending pattern, byte offset and cause to a
// syntax failure. It is never panicked; Parse always returns it as a plain
// error value.
type ParseError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition: parse error at offset %d in %q: %s", e.Offset, e.Pattern, e.Msg)
}

func (e *ParseError) Position() lexer.Position {
	return lexer.Position{Offset: e.Offset}
}

func parseErrorf(pattern string, offset int, format string, args ...any) *ParseError {
	return &ParseError{Pattern: pattern, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// ResolveError records that atom interning failed for a leaf during
// postprocess. The leaf is invalidated (TargetID stays InvalidTargetID);
// the matcher treats it as never matching.
type ResolveError struct {
	AtomName string
	Cause    error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("condition: failed to resolve atom %q: %v", e.AtomName, e.Cause)
}

func (e *ResolveError) Unwrap() error { return e.Cause }

// FetchError records that an X11 GetProperty round-trip failed, or that a
// property kept growing past the retry in fetch's two-phase pipeline.
type FetchError struct {
	Property string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("condition: failed to fetch property %q: %v", e.Property, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// RegexCompileError records a PCRE compile failure for a leaf. The leaf is
// invalidated; Match == PCRE leaves with a nil Regex never match.
type RegexCompileError struct {
	Pattern string
	Cause   error
}

func (e *RegexCompileError) Error() string {
	return fmt.Sprintf("condition: failed to compile regex %q: %v", e.Pattern, e.Cause)
}

func (e *RegexCompileError) Unwrap() error { return e.Cause }
