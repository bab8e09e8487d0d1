// Package catalog defines the media catalog domain model shared by the store,
// the import reconciler, and the CLI.
//
// Categories and sources are closed enumerations; parse them with
// ParseCategory and ParseSource rather than converting raw strings. Loved
// signals are tri-state and represented as *bool: nil means unknown.
package catalog
