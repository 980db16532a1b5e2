package vault

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/macropower/notemover/pkg/yaml"
)

// DisableValue is the frontmatter value that opts a note out of moves.
const DisableValue = "disable"

// DisableKeys are the frontmatter keys checked for [DisableValue].
var DisableKeys = []string{"notemover", "AutoNoteMover"}

var fence = []byte("---")

// splitFrontmatter separates a leading YAML frontmatter block from the body.
// Content without a closed frontmatter block is returned as body.
func splitFrontmatter(content []byte) ([]byte, []byte) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	first, rest, ok := cutLine(content)
	if !ok || !bytes.Equal(bytes.TrimRight(first, " \t\r"), fence) {
		return nil, content
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])

		trimmed := bytes.TrimRight(line, " \t\r")
		if bytes.Equal(trimmed, fence) || bytes.Equal(trimmed, []byte("...")) {
			return rest[:offset], next
		}
		if !more {
			return nil, content
		}

		offset = len(rest) - len(next)
	}
}

func cutLine(b []byte) ([]byte, []byte, bool) {
	line, rest, ok := bytes.Cut(b, []byte("\n"))
	if !ok {
		return b, nil, false
	}

	return line, rest, true
}

// frontmatter holds the keys read from a note header.
type frontmatter map[string]any

func parseFrontmatter(data []byte) (frontmatter, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return frontmatter{}, nil
	}

	fm := frontmatter{}

	err := yaml.Unmarshal(data, &fm)
	if err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}

	return fm, nil
}

// disabled reports whether any of [DisableKeys] is set to [DisableValue].
func (fm frontmatter) disabled() bool {
	for _, k := range DisableKeys {
		v, ok := fm[k].(string)
		if ok && strings.EqualFold(strings.TrimSpace(v), DisableValue) {
			return true
		}
	}

	return false
}

// tags returns the "tags" and "tag" values. Values may be a list or a
// string separated by commas or whitespace.
func (fm frontmatter) tags() []string {
	var out []string

	for _, k := range []string{"tags", "tag"} {
		switch v := fm[k].(type) {
		case string:
			out = append(out, splitTagString(v)...)

		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					s = fmt.Sprint(item)
				}

				out = append(out, splitTagString(s)...)
			}
		}
	}

	return out
}

func splitTagString(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
