// Package backup snapshots the SQLite store to a local directory. Snapshots
// are plain database files, taken after a WAL checkpoint so they are complete
// on their own; Export additionally encrypts a snapshot with a passphrase for
// off-device copies.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotPrefix = "cabas-"

// Snapshot describes one backup file on disk.
type Snapshot struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type Manager struct {
	db     *sql.DB
	dbPath string
	dir    string
	logger *slog.Logger
}

// NewManager returns a manager writing snapshots of the database at dbPath
// into dir. The directory is created on the first snapshot.
func NewManager(db *sql.DB, dbPath, dir string, logger *slog.Logger) *Manager {
	return &Manager{db: db, dbPath: dbPath, dir: dir, logger: logger}
}

// Snapshot writes a new timestamped snapshot and returns its description.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	// Fold the WAL into the main file so the copy is self-contained.
	if _, err := m.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return nil, fmt.Errorf("wal checkpoint: %w", err)
	}

	// Microsecond resolution keeps back-to-back snapshots from colliding.
	name := snapshotPrefix + time.Now().UTC().Format("20060102-150405.000000") + ".db"
	dst := filepath.Join(m.dir, name)
	if err := copyFile(m.dbPath, dst); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("copy database: %w", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	m.logger.Info("snapshot written", "name", name, "bytes", info.Size())
	return &Snapshot{Name: name, SizeBytes: info.Size(), CreatedAt: info.ModTime().UTC()}, nil
}

// List returns the snapshots on disk, newest first. A missing backup
// directory reads as an empty list.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var snapshots []Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), snapshotPrefix) || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:      e.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Prune removes snapshots beyond the keep newest ones and returns how many
// were deleted.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	snapshots, err := m.List()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, s := range snapshots[min(keep, len(snapshots)):] {
		if err := os.Remove(filepath.Join(m.dir, s.Name)); err != nil {
			m.logger.Warn("prune snapshot", "name", s.Name, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		m.logger.Info("snapshots pruned", "deleted", deleted, "kept", keep)
	}
	return deleted, nil
}

// Export takes a fresh snapshot, encrypts it with the passphrase, and writes
// the result to w. The snapshot file itself is not kept.
func (m *Manager) Export(ctx context.Context, w io.Writer, passphrase string) error {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(m.dir, snap.Name)
	defer os.Remove(path)

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	encrypted, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return err
	}
	if _, err := w.Write(encrypted); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
