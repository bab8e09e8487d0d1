// Package report summarizes the catalog for people and for other tools.
//
// Status gathers per-category and per-source totals with a small sample of
// loved and wishlisted titles. The exporters render the whole library (or one
// category) as Markdown for reading, or as JSON/YAML for programmatic use.
package report
