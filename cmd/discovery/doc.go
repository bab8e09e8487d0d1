// Package main hosts the discovery CLI.
//
// Commands are thin: they resolve configuration, open the catalog store, and
// hand off to internal/library, internal/report, and internal/sources. Output
// goes to the command's stdout; logs go to stderr and the log file.
package main
