// Package exclusion decides whether a container is inside an excluded zone.
package exclusion

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/macropower/notemover/pkg/pattern"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// ErrIndexOutOfRange is returned by [List] edits addressing a missing entry.
var ErrIndexOutOfRange = errors.New("exclusion index out of range")

// Entry names an excluded container, either literally or as a regular
// expression source.
type Entry struct {
	// Container is a vault-relative container path or a regular expression.
	Container string `json:"container" jsonschema:"title=Container"`
}

// List is an ordered sequence of [Entry]s.
type List []Entry

// IsExcluded reports whether container matches any entry of l.
//
// Blank entries are ignored. Without useRegex an entry matches when its
// normalized path equals the normalized container. With useRegex the entry
// is compiled and tested against the container; entries that fail to compile
// are skipped.
func IsExcluded(container string, l List, useRegex bool) bool {
	container = paths.Normalize(container)

	for _, e := range l {
		src := strings.TrimSpace(e.Container)
		if src == "" {
			continue
		}

		if !useRegex {
			if paths.Normalize(src) == container {
				return true
			}

			continue
		}

		p, err := pattern.Compile(src)
		if err != nil {
			continue
		}

		if p.MatchString(container) {
			return true
		}
	}

	return false
}

// Append returns a new [List] with container added at the end.
func (l List) Append(container string) List {
	out := slices.Clone(l)
	return append(out, Entry{Container: container})
}

// Delete returns a new [List] without the entry at index i.
func (l List) Delete(i int) (List, error) {
	if i < 0 || i >= len(l) {
		return nil, fmt.Errorf("%w: %d (have %d entries)", ErrIndexOutOfRange, i, len(l))
	}

	out := slices.Clone(l)

	return slices.Delete(out, i, i+1), nil
}

// Clone returns a copy of l.
func (l List) Clone() List {
	return slices.Clone(l)
}

// Containers returns the raw container values of l.
func (l List) Containers() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Container
	}

	return out
}
