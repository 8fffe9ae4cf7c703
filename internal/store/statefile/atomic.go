package statefile

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic creates dir if needed, writes into a temp file in the same
// directory via fill, and renames it over path. Rename within one directory
// is atomic on POSIX filesystems.
func writeAtomic(dir, path string, fill func(*os.File) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("statefile: create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("statefile: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("statefile: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("statefile: replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
