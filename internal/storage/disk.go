package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/swapnilxi/grab-hack/internal/config"
)

// DiskUsageBytes sums the size of the given files and directory trees.
// Empty and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		n, err := treeSize(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// StoreDiskUsage returns the bytes the configured backend keeps on local disk:
// the SQLite database with its WAL sidecars, or the memory snapshot. Postgres
// data lives on the server and reports 0.
func StoreDiskUsage(cfg config.StoreConfig) (int64, error) {
	switch cfg.Backend {
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return 0, nil
		}
		return DiskUsageBytes(cfg.SQLitePath, cfg.SQLitePath+"-wal", cfg.SQLitePath+"-shm")
	case BackendMemory:
		return DiskUsageBytes(cfg.SnapshotPath)
	default:
		return 0, nil
	}
}

func treeSize(root string) (int64, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}
