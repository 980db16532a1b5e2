package engine

import (
	"fmt"
	"strings"

	"github.com/macropower/notemover/pkg/exclusion"
	"github.com/macropower/notemover/pkg/rule"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// TriggerMode controls whether non-command events are handled.
type TriggerMode string

const (
	// Automatic handles every event reason.
	Automatic TriggerMode = "Automatic"
	// Manual handles only [ReasonCommand].
	Manual TriggerMode = "Manual"
)

// AllTriggerModes lists the valid [TriggerMode] values.
var AllTriggerModes = []string{string(Automatic), string(Manual)}

// ParseTriggerMode parses s case-insensitively. An empty string is [Automatic].
func ParseTriggerMode(s string) (TriggerMode, error) {
	switch {
	case strings.TrimSpace(s) == "", strings.EqualFold(s, string(Automatic)):
		return Automatic, nil
	case strings.EqualFold(s, string(Manual)):
		return Manual, nil
	}

	return "", fmt.Errorf("unknown trigger mode %q, expected one of %v", s, AllTriggerModes)
}

// Document is the read-only view of a note that classification needs.
type Document struct {
	// Path is the vault-relative document path.
	Path string
	// Name is the file name including extension.
	Name string
	// BaseName is the file name without extension.
	BaseName string
	// Extension is the file extension without the leading dot.
	Extension string
	// Container is the normalized container path; the vault root is "/".
	Container string
	// Tags are the document tags, each with a leading "#".
	Tags []string
	// Disabled is set when the document opts out through its frontmatter.
	Disabled bool
}

// SkipReason explains why an [Outcome] did not match.
type SkipReason string

const (
	// SkipNone is the zero value used for matched outcomes.
	SkipNone SkipReason = ""
	// SkipSuppressed means the trigger mode suppressed the event.
	SkipSuppressed SkipReason = "suppressed"
	// SkipUnchanged means a rename kept the file name.
	SkipUnchanged SkipReason = "unchanged"
	// SkipDisabled means the document disabled itself.
	SkipDisabled SkipReason = "disabled"
	// SkipExcluded means the document container is excluded.
	SkipExcluded SkipReason = "excluded"
	// SkipNoMatch means no rule matched.
	SkipNoMatch SkipReason = "no-match"
)

// Outcome is the result of classifying one document.
type Outcome struct {
	// Destination is the matched rule destination in normalized form (see
	// paths.Normalize), which can differ from the stored rule string. Set
	// only when Matched.
	Destination string
	// Skip explains a non-match.
	Skip SkipReason
	// Rule is the index of the matched rule, or -1.
	Rule int
	// Matched reports whether a rule matched.
	Matched bool
}

func noMatch(reason SkipReason) Outcome {
	return Outcome{Rule: -1, Skip: reason}
}

// Options holds the settings flags that affect classification.
type Options struct {
	TriggerMode           TriggerMode
	UseRegexForTags       bool
	UseRegexForExclusions bool
}

// Snapshot is an immutable view of the settings used for one classification
// or scan.
type Snapshot struct {
	Rules      rule.RuleSet
	Exclusions exclusion.List
	Options    Options
}

// NewSnapshot creates a [Snapshot] holding copies of rules and exclusions.
func NewSnapshot(rules rule.RuleSet, exclusions exclusion.List, opts Options) Snapshot {
	return Snapshot{
		Rules:      rules.Clone(),
		Exclusions: exclusions.Clone(),
		Options:    opts,
	}
}

// Classify evaluates doc against the snapshot. See [Classify].
func (s Snapshot) Classify(doc Document) Outcome {
	return Classify(doc, s.Rules, s.Exclusions, s.Options)
}

// Classify evaluates doc against rules.
//
// The disable flag and exclusions are checked first. Rules are then
// evaluated in order; rules without a destination and rules whose
// destination equals the document container are skipped. The first rule
// whose tag or title predicate holds determines the destination, reported
// normalized.
func Classify(doc Document, rules rule.RuleSet, exclusions exclusion.List, opts Options) Outcome {
	if doc.Disabled {
		return noMatch(SkipDisabled)
	}

	container := paths.Normalize(doc.Container)

	if exclusion.IsExcluded(container, exclusions, opts.UseRegexForExclusions) {
		return noMatch(SkipExcluded)
	}

	for i, r := range rules {
		if !r.HasDestination() {
			continue
		}
		if r.NormalizedDestination() == container {
			continue
		}

		if rule.Matches(r, doc.Tags, doc.BaseName, opts.UseRegexForTags) {
			return Outcome{
				Matched:     true,
				Destination: r.NormalizedDestination(),
				Rule:        i,
			}
		}
	}

	return noMatch(SkipNoMatch)
}
