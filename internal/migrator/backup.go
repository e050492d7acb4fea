package migrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileBackup copies the whole store file into a backup directory before
// destructive schema changes.
type FileBackup struct {
	dir string
}

// NewFileBackup points backups at dir, created on first use.
func NewFileBackup(dir string) *FileBackup {
	return &FileBackup{dir: dir}
}

// Create copies storePath into the backup directory under a timestamped
// name and returns the backup's path.
func (b *FileBackup) Create(storePath string) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	src, err := os.Open(storePath)
	if err != nil {
		return "", fmt.Errorf("open store file: %w", err)
	}
	defer src.Close()

	stamp := time.Now().Format("20060102-150405")
	base := filepath.Base(storePath)
	target := filepath.Join(b.dir, fmt.Sprintf("%s.%s.bak", base, stamp))

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("copy store file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("flush backup file: %w", err)
	}
	return target, nil
}

// Prune removes the oldest backups beyond keep. A keep of zero or less
// disables pruning.
func (b *FileBackup) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	entries, err := filepath.Glob(filepath.Join(b.dir, "*.bak"))
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(entries) <= keep {
		return nil
	}
	sort.Strings(entries)
	for _, path := range entries[:len(entries)-keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", path, err)
		}
	}
	return nil
}
