package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"discovery/internal/config"
	"discovery/internal/fileutil"
	"discovery/internal/logging"
	"discovery/internal/store"
	"discovery/internal/textutil"
)

// ErrNotFound is returned when a backup cannot be located.
var ErrNotFound = errors.New("backup not found")

const (
	filePrefix      = "discovery_"
	fileSuffix      = ".db"
	timestampLayout = "20060102_150405"
)

// Backup describes one snapshot file.
type Backup struct {
	Path      string
	Name      string
	Reason    string
	Timestamp time.Time
	Size      int64
}

// Snapshotter writes a consistent copy of an open database.
type Snapshotter interface {
	BackupTo(ctx context.Context, dest string) error
}

// Manager creates, lists, and restores catalog snapshots.
type Manager struct {
	dir    string
	dbPath string
	keep   int
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a manager from the [paths] and [backups] config sections.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	keep := cfg.Backups.MaxBackups
	if keep <= 0 {
		keep = 10
	}
	return &Manager{
		dir:    cfg.Paths.BackupDir,
		dbPath: cfg.Paths.Database,
		keep:   keep,
		logger: logging.NewComponentLogger(logger, "backup"),
		now:    time.Now,
	}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string { return m.dir }

// Create snapshots the open database and prunes old snapshots.
func (m *Manager) Create(ctx context.Context, db Snapshotter, reason string) (Backup, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return Backup{}, fmt.Errorf("create backup dir: %w", err)
	}
	reason = textutil.SanitizeToken(reason)
	now := m.now()
	name := filePrefix + formatTimestamp(now) + "_" + reason + fileSuffix
	path := filepath.Join(m.dir, name)

	if err := db.BackupTo(ctx, path); err != nil {
		return Backup{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Backup{}, fmt.Errorf("stat backup: %w", err)
	}
	backup := Backup{Path: path, Name: name, Reason: reason, Timestamp: now, Size: info.Size()}
	m.logger.Info("backup created",
		logging.String("path", path),
		logging.String("reason", reason),
		logging.Int("size_bytes", int(info.Size())),
	)

	if err := m.prune(); err != nil {
		logging.WarnWithContext(m.logger, "backup prune failed; old snapshots remain", "backup_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on backup_dir"),
		)
	}
	return backup, nil
}

// List returns snapshots newest first.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		timestamp, reason, ok := parseName(name)
		if !ok {
			timestamp = info.ModTime()
		}
		backups = append(backups, Backup{
			Path:      filepath.Join(m.dir, name),
			Name:      name,
			Reason:    reason,
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}
	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// Resolve maps a file name, list index ("1" is newest), or path to a backup path.
func (m *Manager) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, nil
	}
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if index, err := strconv.Atoi(ref); err == nil {
		if index >= 1 && index <= len(backups) {
			return backups[index-1].Path, nil
		}
		return "", fmt.Errorf("%w: no backup #%d", ErrNotFound, index)
	}
	for _, b := range backups {
		if b.Name == ref || b.Name == ref+fileSuffix {
			return b.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Restore replaces the catalog database with the snapshot at path. The
// catalog must not be open in this process. When a current database exists a
// pre_restore snapshot of it is taken first and returned.
func (m *Manager) Restore(ctx context.Context, path string) (*Backup, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var safety *Backup
	if _, err := os.Stat(m.dbPath); err == nil {
		current, err := store.OpenPath(m.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open current database: %w", err)
		}
		backup, err := m.Create(ctx, current, "pre_restore")
		closeErr := current.Close()
		if err != nil {
			return nil, fmt.Errorf("pre-restore backup: %w", err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close current database: %w", closeErr)
		}
		safety = &backup
	}

	if err := os.MkdirAll(filepath.Dir(m.dbPath), 0o755); err != nil {
		return safety, fmt.Errorf("create database dir: %w", err)
	}
	if err := fileutil.CopyFileVerified(path, m.dbPath); err != nil {
		return safety, fmt.Errorf("restore copy: %w", err)
	}
	if err := fileutil.RemoveSidecars(m.dbPath, "-wal", "-shm"); err != nil {
		return safety, fmt.Errorf("remove stale journal: %w", err)
	}
	m.logger.Info("backup restored", logging.String("path", path), logging.String("database", m.dbPath))
	return safety, nil
}

func (m *Manager) prune() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) <= m.keep {
		return nil
	}
	var errs []error
	for _, old := range backups[m.keep:] {
		if err := os.Remove(old.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		m.logger.Debug("backup pruned", logging.String("path", old.Path))
	}
	return errors.Join(errs...)
}

func formatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s_%06d", t.Format(timestampLayout), t.Nanosecond()/int(time.Microsecond))
}

// parseName extracts the timestamp and reason from a snapshot file name. Names
// without the microsecond field are accepted too.
func parseName(name string) (time.Time, string, bool) {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return time.Time{}, "unknown", false
	}
	ts, err := time.ParseInLocation(timestampLayout, parts[0]+"_"+parts[1], time.Local)
	if err != nil {
		return time.Time{}, strings.Join(parts[2:], "_"), false
	}
	rest := parts[2:]
	if len(rest) >= 2 && len(rest[0]) == 6 && isDigits(rest[0]) {
		micros, _ := strconv.Atoi(rest[0])
		ts = ts.Add(time.Duration(micros) * time.Microsecond)
		rest = rest[1:]
	}
	return ts, strings.Join(rest, "_"), true
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
