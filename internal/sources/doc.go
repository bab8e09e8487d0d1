// Package sources parses vendor library exports into import candidates.
//
// Each supported Source has a Spec in the registry: the category it mostly
// reports, a parser for its export files, and the manual steps a user follows
// to obtain an export. Parsers never touch the catalog; they only read the file
// and describe what it lists. Steam can also be fetched live through the Web
// API with SteamClient.
package sources
