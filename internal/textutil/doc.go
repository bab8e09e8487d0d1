// Package textutil provides the text primitives behind catalog matching.
//
// The primary use cases are:
//   - Normalizing display titles into a comparable form
//   - Stripping trailing sequel numbers ("Mass Effect 2" / "Mass Effect II")
//   - Scoring string similarity with edit-distance and token-set ratios (0-100)
//   - Ranking near matches with token fingerprints and cosine similarity
//   - Sanitizing free text into filesystem-safe tokens
//
// Everything here is pure and total: empty input yields an empty result or a
// zero score, never an error.
package textutil
