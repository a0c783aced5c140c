package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// cacheDir holds one cache key file per output, mirroring the output tree.
const cacheDir = ".cache"

type FSStorage struct {
	Root string
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Root: root}
}

func (s *FSStorage) WriteHTML(ctx context.Context, destPath string, content []byte) error {
	return s.writeFile(destPath, content)
}

func (s *FSStorage) WriteSymlink(ctx context.Context, destPath string, target string) error {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(destPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing: %w", err)
	}
	if err := os.Symlink(target, fullPath); err != nil {
		return fmt.Errorf("symlink: %w", err)
	}
	return nil
}

// CheckCache reports whether the output at destPath was last written from
// input with the given cache key and still exists.
func (s *FSStorage) CheckCache(destPath string, key string) bool {
	if _, err := os.Lstat(filepath.Join(s.Root, filepath.FromSlash(destPath))); err != nil {
		return false
	}
	data, err := os.ReadFile(s.cachePath(destPath))
	return err == nil && string(data) == key
}

func (s *FSStorage) WriteCache(ctx context.Context, destPath string, key string) error {
	if destPath == "" {
		return fmt.Errorf("cache path required")
	}
	return s.writeFileAbsolute(s.cachePath(destPath), []byte(key))
}

func (s *FSStorage) cachePath(destPath string) string {
	return filepath.Join(s.Root, cacheDir, filepath.FromSlash(destPath))
}

func (s *FSStorage) writeFile(destPath string, content []byte) error {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(destPath))
	return s.writeFileAbsolute(fullPath, content)
}

func (s *FSStorage) writeFileAbsolute(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// Remove any existing file or symlink so os.WriteFile does not
	// follow a stale symlink from an earlier run.
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
