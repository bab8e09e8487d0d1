// Package backup snapshots the catalog database into timestamped files and
// restores them.
//
// Snapshots are named discovery_<YYYYmmdd_HHMMSS_ffffff>_<reason>.db and only
// the newest MaxBackups are kept. Restore always takes a pre_restore snapshot
// of the current database first, then replaces it with a verified copy.
package backup
