package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/macropower/notemover/pkg/pattern"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// ErrIndexOutOfRange is returned by [RuleSet] edits addressing a missing rule.
var ErrIndexOutOfRange = errors.New("rule index out of range")

// TagMatchMode controls how a rule's tags are combined.
type TagMatchMode string

const (
	// MatchAny requires at least one rule tag to match (default).
	MatchAny TagMatchMode = "any"
	// MatchAll requires every rule tag to match.
	MatchAll TagMatchMode = "all"
)

// AllTagMatchModes lists the valid [TagMatchMode] values.
var AllTagMatchModes = []string{string(MatchAny), string(MatchAll)}

// ParseTagMatchMode parses s case-insensitively. An empty string is [MatchAny].
func ParseTagMatchMode(s string) (TagMatchMode, error) {
	switch TagMatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchAny:
		return MatchAny, nil
	case MatchAll:
		return MatchAll, nil
	}

	return "", fmt.Errorf("unknown tag match mode %q, expected one of %v", s, AllTagMatchModes)
}

// Rule moves a document to Destination when its tags or base name match.
type Rule struct {
	// Destination is the vault-relative container documents are moved to.
	Destination string `json:"destination" jsonschema:"title=Destination"`
	// TitlePattern is a regular expression tested against the document base name.
	TitlePattern string `json:"titlePattern,omitempty" jsonschema:"title=Title Pattern"`
	// TagMatchMode is either "any" or "all".
	TagMatchMode TagMatchMode `json:"tagMatchMode,omitempty" jsonschema:"title=Tag Match Mode,enum=any,enum=all"`
	// Tags are matched against the document tags, literally or as regular expressions.
	Tags []string `json:"tags,omitempty" jsonschema:"title=Tags"`
}

// New creates a [Rule] for destination.
func New(destination string, tags []string, mode TagMatchMode, titlePattern string) Rule {
	r := Rule{
		Destination:  destination,
		Tags:         tags,
		TagMatchMode: mode,
		TitlePattern: titlePattern,
	}

	return r.Normalize()
}

// Normalize returns a copy of r with a normalized destination, trimmed
// non-empty tags, a trimmed title pattern, and a concrete match mode.
func (r Rule) Normalize() Rule {
	out := Rule{
		Destination:  strings.TrimSpace(r.Destination),
		TitlePattern: strings.TrimSpace(r.TitlePattern),
		TagMatchMode: r.TagMatchMode,
		Tags:         FilterTags(r.Tags),
	}
	if out.Destination != "" {
		out.Destination = paths.Normalize(out.Destination)
	}

	mode, err := ParseTagMatchMode(string(r.TagMatchMode))
	if err != nil {
		mode = MatchAny
	}

	out.TagMatchMode = mode

	return out
}

// Mode returns the effective [TagMatchMode]; anything but "all" is [MatchAny].
func (r Rule) Mode() TagMatchMode {
	if strings.EqualFold(string(r.TagMatchMode), string(MatchAll)) {
		return MatchAll
	}

	return MatchAny
}

// HasDestination reports whether the rule names a destination.
func (r Rule) HasDestination() bool {
	return strings.TrimSpace(r.Destination) != ""
}

// NormalizedDestination returns the destination as a container path.
func (r Rule) NormalizedDestination() string {
	return paths.Normalize(r.Destination)
}

// Clone returns a deep copy of r.
func (r Rule) Clone() Rule {
	r.Tags = slices.Clone(r.Tags)
	return r
}

func (r Rule) String() string {
	var preds []string
	if tags := FilterTags(r.Tags); len(tags) > 0 {
		preds = append(preds, fmt.Sprintf("tags %s[%s]", r.Mode(), strings.Join(tags, ", ")))
	}
	if strings.TrimSpace(r.TitlePattern) != "" {
		preds = append(preds, fmt.Sprintf("title /%s/", r.TitlePattern))
	}
	if len(preds) == 0 {
		preds = append(preds, "matches nothing")
	}

	return fmt.Sprintf("%s -> %s", strings.Join(preds, " or "), r.Destination)
}

// FilterTags trims tags and drops empty entries.
func FilterTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}

	return out
}

// MatchesTags evaluates the tag predicate of r against documentTags.
//
// Without useRegex each rule tag must be present in documentTags. With
// useRegex each rule tag is compiled and tested against every document tag;
// a tag that fails to compile falls back to the literal membership test.
// Rules without any non-empty tag never match.
func MatchesTags(r Rule, documentTags []string, useRegex bool) bool {
	ruleTags := FilterTags(r.Tags)
	if len(ruleTags) == 0 {
		return false
	}

	matchOne := func(tag string) bool {
		if !useRegex {
			return containsTag(documentTags, tag)
		}

		p, err := pattern.Compile(tag)
		if err != nil {
			return containsTag(documentTags, tag)
		}

		return p.MatchAny(documentTags)
	}

	if r.Mode() == MatchAll {
		for _, tag := range ruleTags {
			if !matchOne(tag) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(ruleTags, matchOne)
}

// MatchesTitle evaluates the title predicate of r against baseName, the
// document name without its extension. A blank or invalid pattern never
// matches.
func MatchesTitle(r Rule, baseName string) bool {
	if strings.TrimSpace(r.TitlePattern) == "" {
		return false
	}

	p, err := pattern.Compile(r.TitlePattern)
	if err != nil {
		return false
	}

	return p.MatchString(baseName)
}

// Matches reports whether either predicate of r holds.
func Matches(r Rule, documentTags []string, baseName string, useRegex bool) bool {
	return MatchesTags(r, documentTags, useRegex) || MatchesTitle(r, baseName)
}

// HashTags returns tags with a leading "#" added where it is missing, the
// form document tags are reported in. Blank entries are dropped. It is meant
// for literal tags entered by a user; regular expressions must not be passed.
func HashTags(tags []string) []string {
	out := FilterTags(tags)
	for i, t := range out {
		if !strings.HasPrefix(t, "#") {
			out[i] = "#" + t
		}
	}

	return out
}

// containsTag tests exact membership.
func containsTag(documentTags []string, tag string) bool {
	return slices.Contains(documentTags, tag)
}
