// Package pattern compiles and evaluates the regular expressions used by rule
// and exclusion predicates.
//
// Patterns are compiled with ECMAScript semantics so that expressions written
// for a JavaScript host (lookaheads, backreferences, `\d` meaning ASCII
// digits) keep their meaning. Every match is bounded by a timeout, and a
// match that errors or times out is reported as a non-match.
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single match evaluation.
const DefaultTimeout = 250 * time.Millisecond

// ErrEmptyPattern is returned when compiling a blank pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// Pattern is a compiled regular expression.
type Pattern struct {
	re     *regexp2.Regexp
	source string
}

// Compile compiles src with [DefaultTimeout].
func Compile(src string) (*Pattern, error) {
	return CompileWithTimeout(src, DefaultTimeout)
}

// CompileWithTimeout compiles src, bounding each match by timeout.
func CompileWithTimeout(src string, timeout time.Duration) (*Pattern, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyPattern
	}

	re, err := regexp2.Compile(src, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}

	re.MatchTimeout = timeout

	return &Pattern{re: re, source: src}, nil
}

// MatchString reports whether s contains a match of the pattern.
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false
	}

	return ok
}

// MatchAny reports whether any of values contains a match.
func (p *Pattern) MatchAny(values []string) bool {
	for _, v := range values {
		if p.MatchString(v) {
			return true
		}
	}

	return false
}

func (p *Pattern) String() string {
	return p.source
}
