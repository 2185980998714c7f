// Package snapshot stores credentials and accounts as JSON snapshot files.
// Every write replaces the whole file through a temp file and rename, so a
// reader never sees a partially written snapshot.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iho/bankledger/internal/domain"
)

// Snapshot file names inside the data directory.
const (
	UsersFile    = "users.json"
	AccountsFile = "accounts.json"
)

// readJSON decodes path into v. A missing file is not an error and
// reports false.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, storageErr(fmt.Errorf("decode %s: %w", filepath.Base(path), err))
	}
	return true, nil
}

// writeJSONAtomic encodes v into a temp file next to path, syncs it and
// renames it over path.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr(err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return storageErr(err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return storageErr(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return storageErr(err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return storageErr(err)
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// checkDir verifies that the directory holding path exists.
func checkDir(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return storageErr(err)
	}
	if !info.IsDir() {
		return storageErr(fmt.Errorf("%s is not a directory", dir))
	}
	return nil
}
