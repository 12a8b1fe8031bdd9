// Package output persists a scraped catalog to disk.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/bookcatalog/models"
)

// Writer persists a whole catalog to path, replacing whatever was there.
type Writer interface {
	Write(records []models.Record, path string) error
}

// New returns the writer for format: json, csv, or dual.
func New(format string, atomic bool) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return &JSONWriter{Atomic: atomic}, nil
	case "csv":
		return &CSVWriter{Atomic: atomic}, nil
	case "dual":
		return &DualWriter{
			JSON: &JSONWriter{Atomic: atomic},
			CSV:  &CSVWriter{Atomic: atomic},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writeFile writes the output of fill to path. Without atomic, an existing
// file is removed first and the new one written in place. With atomic, the
// data goes to a temp file in the same directory that is then renamed over path.
func writeFile(path string, atomic bool, fill func(w io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if atomic {
		return writeAtomic(path, fill)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove existing %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	buffer := bufio.NewWriter(f)
	if err := fill(buffer); err != nil {
		f.Close()
		return err
	}
	if err := buffer.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return f.Close()
}

func writeAtomic(path string, fill func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	buffer := bufio.NewWriter(tmp)
	if err := fill(buffer); err != nil {
		tmp.Close()
		return err
	}
	if err := buffer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %q: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %q: %w", tmpName, err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
