// Package rule defines classification rules and the predicates that evaluate
// them against a document.
//
// A [Rule] pairs a destination container with two independent predicates: a
// tag predicate, combined with [MatchAny] or [MatchAll], and a title pattern
// tested against the document base name. The rule matches when either
// predicate holds.
//
// A [RuleSet] is ordered; the first matching rule wins. Edits to a [RuleSet]
// return a new value and never modify the receiver.
package rule
