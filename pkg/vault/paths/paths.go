// Package paths normalizes vault-relative container and document paths.
package paths

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Root is the container path of the vault root.
const Root = "/"

// Normalize converts p into the canonical vault-relative form.
//
// Backslashes become forward slashes, repeated separators collapse, leading
// and trailing separators are trimmed, non-breaking spaces become spaces, and
// the result is NFC normalized. "." segments are dropped. An empty result is
// [Root].
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ReplaceAll(p, "\u00a0", " ")
	p = norm.NFC.String(p)

	segs := strings.Split(p, "/")
	out := segs[:0]
	for _, s := range segs {
		if s == "" || s == "." {
			continue
		}

		out = append(out, s)
	}

	if len(out) == 0 {
		return Root
	}

	return strings.Join(out, "/")
}

// Join joins a container and a name into a normalized document path.
func Join(container, name string) string {
	container = Normalize(container)
	if container == Root {
		return Normalize(name)
	}

	return Normalize(container + "/" + name)
}

// Container returns the normalized container of a document path.
func Container(p string) string {
	p = Normalize(p)
	if p == Root {
		return Root
	}

	dir := path.Dir(p)
	if dir == "." {
		return Root
	}

	return dir
}

// Within reports whether p equals container or lies beneath it.
func Within(p, container string) bool {
	p, container = Normalize(p), Normalize(container)
	if container == Root || p == container {
		return true
	}

	return strings.HasPrefix(p, container+"/")
}

// Base returns the last element of p.
func Base(p string) string {
	p = Normalize(p)
	if p == Root {
		return ""
	}

	return path.Base(p)
}

// BaseName returns the last element of p without its extension.
func BaseName(p string) string {
	b := Base(p)
	return strings.TrimSuffix(b, path.Ext(b))
}
