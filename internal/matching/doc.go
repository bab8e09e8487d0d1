// Package matching decides whether two titles or two creators describe the
// same real-world thing.
//
// Titles are compared in two tiers. The lenient tier (TitlesMatch, default
// threshold 85) serves duplicate searches and suggestions. The strict tier
// (TitlesMatchStrict, default 92) is reserved for the reconciler's bounded
// category scan, where a false positive merges two catalog entries with no
// further corroboration. Creators are compared permissively: a missing
// creator never blocks a match.
//
// Thresholds are 0-100 similarity scores. Policy bundles them so callers can
// tune matching from configuration without touching package state.
package matching
