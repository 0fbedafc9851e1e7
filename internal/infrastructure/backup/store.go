// Package backup is the local fallback store for failed transactions. Each
// record is kept as one JSON file named after its id.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/spf13/afero"
)

const fileExt = ".json"

// Store implements repository.FailedTransactionBackup on an afero filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates the backup directory if needed.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// Write stores record and returns its key. Records without an id get one.
func (s *Store) Write(record *entity.FailedTransaction) (string, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	key := record.ID.String()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: encode %s: %w", key, err)
	}

	// Write then rename so a crash never leaves a half-written record.
	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return "", fmt.Errorf("backup: commit %s: %w", key, err)
	}
	return key, nil
}

// ReadAll returns every readable record keyed by file key. Unreadable files
// are reported in the error but do not hide the others.
func (s *Store) ReadAll() (map[string]*entity.FailedTransaction, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*entity.FailedTransaction{}, nil
		}
		return nil, fmt.Errorf("backup: list %s: %w", s.dir, err)
	}

	records := make(map[string]*entity.FailedTransaction, len(entries))
	var bad []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), fileExt)

		data, err := afero.ReadFile(s.fs, s.path(key))
		if err != nil {
			bad = append(bad, key)
			continue
		}
		var record entity.FailedTransaction
		if err := json.Unmarshal(data, &record); err != nil {
			bad = append(bad, key)
			continue
		}
		records[key] = &record
	}

	if len(bad) > 0 {
		return records, fmt.Errorf("backup: unreadable records: %s", strings.Join(bad, ", "))
	}
	return records, nil
}

// Remove deletes the record stored under key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("backup: remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}
