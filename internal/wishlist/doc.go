// Package wishlist manages entries the user wants but does not own yet and
// removes them once a matching item reaches the catalog.
package wishlist
