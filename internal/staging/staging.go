// Package staging holds uploaded files between validation and import.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/billrate-system/backend/internal/models"
)

// Store defines the interface for the staging area.
//
// Files are keyed by their original name. Two concurrent uploads sharing a
// name overwrite one another; that race is accepted, not handled.
type Store interface {
	Save(name string, r io.Reader) (*models.StagedFile, error)
	Exists(name string) bool
	Open(name string) (io.ReadCloser, error)
	Delete(name string) error
	List(limit int) ([]*models.StagedFile, error)
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
}

// NewLocalStore creates a new LocalStore, creating the directory if absent.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &LocalStore{uploadDir: uploadDir}, nil
}

// path resolves the on-disk location of a staged file. The base name strips
// any client-supplied directory components.
func (s *LocalStore) path(name string) string {
	return filepath.Join(s.uploadDir, filepath.Base(name))
}

// Save writes a file to the staging area under its original name,
// overwriting any previous file with that name.
func (s *LocalStore) Save(name string, r io.Reader) (*models.StagedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = filepath.Base(name)
	if name == "" || name == "." || strings.HasPrefix(name, "..") {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}

	f, err := os.Create(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(s.path(name))
		return nil, fmt.Errorf("writing staged file: %w", err)
	}

	return &models.StagedFile{
		Name:       name,
		Size:       size,
		UploadedAt: time.Now(),
	}, nil
}

// Exists reports whether a staged file with the given name is present.
func (s *LocalStore) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.path(name))
	return err == nil && !info.IsDir()
}

// Open opens a staged file for reading.
func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return f, nil
}

// Delete removes a staged file.
func (s *LocalStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", name)
		}
		return fmt.Errorf("deleting staged file: %w", err)
	}
	return nil
}

// List returns the most recently staged files.
func (s *LocalStore) List(limit int) ([]*models.StagedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("reading staging directory: %w", err)
	}

	var list []*models.StagedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		list = append(list, &models.StagedFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
		})
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}
