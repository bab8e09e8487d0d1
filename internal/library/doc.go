// Package library implements the user-facing catalog operations: manual
// additions with duplicate suggestions, edits to items and ratings, and file
// imports wrapped with automatic backups and wishlist pruning.
//
// A Library owns no state of its own. It composes the store, the import
// reconciler, the wishlist pruner, and the backup manager so the CLI can run
// each operation with a single call.
package library
