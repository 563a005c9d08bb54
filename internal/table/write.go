package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// defaultFileMode is used when the destination does not exist yet.
const defaultFileMode os.FileMode = 0o644

// Write serializes the header and then every row, in order, as CSV.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d to CSV: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// WriteFile writes t to path through a temp file in the same directory that
// is renamed over path, so a failed write leaves any existing file intact.
// An existing file's permissions are preserved.
func WriteFile(path string, t *Table) error {
	mode := defaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "stat output file", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create output file", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if writeErr := Write(tmp, t); writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write output file", Path: path, Err: writeErr}
	}
	if syncErr := tmp.Sync(); syncErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: "sync output file", Path: path, Err: syncErr}
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "close output file", Path: path, Err: closeErr}
	}
	if chmodErr := os.Chmod(tmpPath, mode); chmodErr != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "set permissions on output file", Path: path, Err: chmodErr}
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "replace output file", Path: path, Err: renameErr}
	}

	return nil
}
