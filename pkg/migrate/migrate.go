// Package migrate converts the legacy single-tag rule format into the current
// [rule.RuleSet] format.
package migrate

import (
	"github.com/macropower/notemover/pkg/rule"
)

// LegacyRule is the pre-migration rule format, holding one tag and one title
// pattern per destination.
type LegacyRule struct {
	// Destination is the target container.
	Destination string `json:"destination,omitempty" jsonschema:"title=Destination"`
	// Tag is a single tag, literal or regular expression.
	Tag string `json:"tag,omitempty" jsonschema:"title=Tag"`
	// Pattern is a title regular expression.
	Pattern string `json:"pattern,omitempty" jsonschema:"title=Pattern"`
}

// Rules returns the rule set that results from migrating legacy into current.
//
// When current already holds at least one rule, or there is nothing to
// migrate, current is returned unchanged. Otherwise every legacy entry
// becomes a normalized [rule.MatchAny] rule with its trimmed tag (if any),
// trimmed pattern (if any) and normalized destination. The returned bool reports whether a migration happened,
// in which case the caller discards the legacy entries.
func Rules(current rule.RuleSet, legacy []LegacyRule) (rule.RuleSet, bool) {
	if len(current) > 0 || len(legacy) == 0 {
		return current, false
	}

	out := make(rule.RuleSet, 0, len(legacy))
	for _, l := range legacy {
		out = append(out, rule.New(l.Destination, []string{l.Tag}, rule.MatchAny, l.Pattern))
	}

	return out, true
}
