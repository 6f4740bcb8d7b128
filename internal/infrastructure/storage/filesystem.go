// Package storage holds rendered report documents on the local file
// system, one file per artifact, named by locator.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// FileSystemStore implements report.ArtifactStore using a flat directory
// under rootDir. Locators come from the catalog and embed a timestamp,
// so writes never collide in practice.
type FileSystemStore struct {
	rootDir string
}

// NewFileSystemStore creates the store and its root directory.
func NewFileSystemStore(rootDir string) (*FileSystemStore, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("storage: root directory is required")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create root directory: %w", err)
	}
	return &FileSystemStore{rootDir: rootDir}, nil
}

// Save writes the document. A temp-file rename keeps a concurrent reader
// from ever seeing a half-written artifact.
func (s *FileSystemStore) Save(_ context.Context, locator string, content []byte) error {
	path, err := s.resolve(locator)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.rootDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to place artifact: %w", err)
	}

	return nil
}

// Load returns the document bytes or shared.ErrArtifactNotFound.
func (s *FileSystemStore) Load(_ context.Context, locator string) ([]byte, error) {
	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, shared.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read artifact: %w", err)
	}

	return content, nil
}

// resolve maps a locator to a path strictly inside rootDir. Locators
// with separators or traversal segments are rejected, not normalized.
func (s *FileSystemStore) resolve(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("storage: locator is required")
	}
	if strings.ContainsAny(locator, "/\\") || locator == "." || locator == ".." || locator != filepath.Base(locator) {
		return "", fmt.Errorf("storage: invalid locator %q", locator)
	}
	return filepath.Join(s.rootDir, locator), nil
}
