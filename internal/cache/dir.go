package cache

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// Dir stores one file per day in a directory, named after the date with an
// extension derived from the content type.
type Dir struct {
	path string
}

// NewDir creates the directory if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Exists(ctx context.Context, key string) (bool, error) {
	_, err := d.find(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d *Dir) Read(ctx context.Context, key string) ([]byte, error) {
	path, err := d.find(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (d *Dir) Write(ctx context.Context, key string, value []byte, contentType string) error {
	if !validKey(key) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	if ok, err := d.Exists(ctx, key); err != nil || ok {
		return err
	}

	// Write to a temp file and link it into place so readers never see a
	// partial file and the first writer wins.
	tmp, err := os.CreateTemp(d.path, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}

	final := filepath.Join(d.path, key+extension(contentType))
	if err := os.Link(tmp.Name(), final); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("link %s: %w", key, err)
	}
	return nil
}

func (d *Dir) find(key string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	matches, err := filepath.Glob(filepath.Join(d.path, key+".*"))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", key, err)
	}
	for _, m := range matches {
		if filepath.Ext(m) != ".tmp" {
			return m, nil
		}
	}
	return "", ErrNotFound
}

func extension(contentType string) string {
	switch contentType {
	case "application/json":
		return ".json"
	case "text/csv", "text/csv; charset=utf-8":
		return ".csv"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
