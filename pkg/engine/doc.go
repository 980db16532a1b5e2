// Package engine classifies documents against an ordered [rule.RuleSet].
//
// Classification is a pure function of a [Document] and a [Snapshot]. The
// per-document disable flag and the exclusion filter are evaluated before any
// rule; rules are then evaluated in order and the first match wins. A rule
// whose destination is the document's current container is skipped, so
// repeated classification of a moved document reports no match.
//
// [Ingest] connects classification to a [Host] for event-driven triggers,
// deciding from the event [Reason] and the configured [TriggerMode] whether
// the event is handled at all.
package engine
