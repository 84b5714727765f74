package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SnapshotStore writes raw API responses into an append-only directory,
// one timestamped file per successful call. Files are write-once: the
// store never mutates or deletes them.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates the snapshot directory if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &SnapshotStore{dir: dir}, nil
}

// Write persists body as <name>_<YYYYMMDD_HHMMSS>.json and syncs it to
// disk before returning, so a replay from disk is always possible even if
// downstream processing fails afterwards.
func (s *SnapshotStore) Write(name string, capturedAt time.Time, body []byte) (string, error) {
	filename := fmt.Sprintf("%s_%s.json", name, capturedAt.UTC().Format("20060102_150405"))
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Same name within one second: disambiguate, never overwrite.
			filename = fmt.Sprintf("%s_%s_%d.json", name, capturedAt.UTC().Format("20060102_150405"), capturedAt.UnixNano()%1e6)
			path = filepath.Join(s.dir, filename)
			f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		}
		if err != nil {
			return "", fmt.Errorf("create snapshot %s: %w", path, err)
		}
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("sync snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot %s: %w", path, err)
	}
	return path, nil
}
