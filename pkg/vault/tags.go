package vault

import (
	"bytes"
	"slices"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// inlineTags returns the "#tags" written in the markdown body.
func inlineTags(body []byte) []string {
	doc := markdown.Parser().Parse(text.NewReader(body))

	var (
		buf      bytes.Buffer
		lastStop = -1
	)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.CodeSpan, *ast.RawHTML, *ast.AutoLink,
			*ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			lastStop = -1
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			// Adjacent segments belong to the same word; goldmark splits
			// text at delimiter characters such as "_".
			if n.Segment.Start != lastStop {
				buf.WriteByte(' ')
			}

			buf.Write(n.Segment.Value(body))

			lastStop = n.Segment.Stop
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte('\n')

				lastStop = -1
			}
		}

		return ast.WalkContinue, nil
	})

	return scanTags(buf.String())
}

// scanTags finds "#tag" tokens that start a word. Tags may contain letters,
// digits, "_", "-" and "/", and must not be purely numeric.
func scanTags(s string) []string {
	var out []string

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '#' || (i > 0 && !unicode.IsSpace(runes[i-1])) {
			continue
		}

		j := i + 1
		for j < len(runes) && isTagRune(runes[j]) {
			j++
		}

		name := strings.Trim(string(runes[i+1:j]), "/")
		if name != "" && !isNumeric(name) {
			out = append(out, "#"+name)
		}

		i = j - 1
	}

	return out
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r) ||
		r == '_' || r == '-' || r == '/'
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// normalizeTag returns tag with a single leading "#", or "" for a blank tag.
func normalizeTag(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	if tag == "" {
		return ""
	}

	return "#" + tag
}

// collectTags merges frontmatter and inline tags, dropping duplicates while
// keeping first-seen order. With nested set, "#a/b/c" also yields "#a" and
// "#a/b".
func collectTags(nested bool, groups ...[]string) []string {
	var out []string

	add := func(tag string) {
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}

	for _, g := range groups {
		for _, raw := range g {
			tag := normalizeTag(raw)
			if nested {
				parts := strings.Split(strings.TrimPrefix(tag, "#"), "/")
				for k := 1; k < len(parts); k++ {
					add("#" + strings.Join(parts[:k], "/"))
				}
			}

			add(tag)
		}
	}

	return out
}
