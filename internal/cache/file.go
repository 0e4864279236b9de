package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File keeps one <id>.txt per article in a directory.
type File struct {
	dir string
}

// NewFile creates dir if needed and returns a cache rooted there.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file cache needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid article id %q", id)
	}
	return filepath.Join(f.dir, id+".txt"), nil
}

// Get reads the cached text of id.
func (f *File) Get(_ context.Context, id string) (string, error) {
	p, err := f.path(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("read cached text: %w", err)
	}
	return string(data), nil
}

// Put replaces the cached text of id.
func (f *File) Put(_ context.Context, id, text string) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write cached text: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
