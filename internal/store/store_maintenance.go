package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"discovery/internal/catalog"
)

// CategoryStats returns totals per category, in catalog.Categories order,
// skipping empty categories.
func (s *Store) CategoryStats(ctx context.Context) ([]CategoryStats, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT i.category,
               COUNT(1),
               SUM(CASE WHEN `+lovedClause+` THEN 1 ELSE 0 END),
               SUM(CASE WHEN `+dislikedClause+` THEN 1 ELSE 0 END)
        FROM items i
        GROUP BY i.category`)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[catalog.Category]CategoryStats)
	for rows.Next() {
		var stat CategoryStats
		var category string
		if err := rows.Scan(&category, &stat.Total, &stat.Loved, &stat.Disliked); err != nil {
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		stat.Category = catalog.Category(category)
		byCategory[stat.Category] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]CategoryStats, 0, len(byCategory))
	for _, category := range catalog.Categories {
		if stat, ok := byCategory[category]; ok {
			stats = append(stats, stat)
		}
	}
	return stats, nil
}

// SourceStats returns the number of linked items per source.
func (s *Store) SourceStats(ctx context.Context) (map[catalog.Source]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(DISTINCT item_id) FROM item_sources GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("source stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[catalog.Source]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats[catalog.Source(source)] = count
	}
	return stats, rows.Err()
}

// RecordSync stores the time source was last imported.
func (s *Store) RecordSync(ctx context.Context, source catalog.Source, at time.Time) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO sync_state (source, last_sync) VALUES (?, ?)
         ON CONFLICT(source) DO UPDATE SET last_sync = excluded.last_sync`,
		string(source),
		formatTime(at),
	); err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return nil
}

// SyncStates returns every recorded sync ordered by source.
func (s *Store) SyncStates(ctx context.Context) ([]catalog.SyncState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, last_sync FROM sync_state ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("sync states: %w", err)
	}
	defer rows.Close()

	var states []catalog.SyncState
	for rows.Next() {
		var source, raw string
		if err := rows.Scan(&source, &raw); err != nil {
			return nil, err
		}
		state := catalog.SyncState{Source: catalog.Source(source)}
		if at, err := parseTimeString(raw); err == nil {
			state.LastSync = at
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// BackupTo writes a consistent snapshot of the database to dest.
func (s *Store) BackupTo(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %q already exists", dest)
	}
	if err := s.execWithoutResultRetry(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

// ReadOnlyQuery runs a single SELECT, WITH, or EXPLAIN statement on a
// connection with query_only enabled.
func (s *Store) ReadOnlyQuery(ctx context.Context, query string) (*QueryResult, error) {
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if !isReadOnlyStatement(query) {
		return nil, ErrReadOnlyQuery
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `PRAGMA query_only = ON`); err != nil {
		return nil, fmt.Errorf("enable query_only: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `PRAGMA query_only = OFF`)
	}()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	result := &QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

func isReadOnlyStatement(query string) bool {
	if query == "" || strings.Contains(query, ";") {
		return false
	}
	fields := strings.Fields(query)
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "EXPLAIN":
		return true
	default:
		return false
	}
}

// CheckHealth returns diagnostic information about the catalog database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("catalog database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat catalog database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("catalog database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("catalog database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping catalog database: %w", err)
	}
	health.DatabaseReadable = true

	for _, table := range expectedTables {
		var name string
		err := s.db.QueryRowContext(connCtx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			health.MissingTables = append(health.MissingTables, table)
			continue
		}
		if err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	}

	if err := s.db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil && !errors.Is(err, sql.ErrNoRows) {
		health.Error = err.Error()
		return health, fmt.Errorf("read schema version: %w", err)
	}

	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM items").Scan(&health.TotalItems); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count items: %w", err)
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
