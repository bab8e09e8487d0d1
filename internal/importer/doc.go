// Package importer reconciles parsed vendor exports against the catalog.
//
// A Parser turns one export file into Candidates. The Reconciler decides for
// each candidate whether it is an item the catalog already holds, using the
// source's own identifier first, then a title search scored by the matching
// package, then a bounded strict scan of the whole category. Per-candidate
// failures are collected as strings in Result.Errors and never abort a batch.
package importer
