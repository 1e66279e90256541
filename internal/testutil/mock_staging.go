// mock_staging.go - In-memory staging store for testing
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/billrate-system/backend/internal/models"
)

// MockStaging implements staging.Store in memory.
type MockStaging struct {
	mu    sync.RWMutex
	files map[string][]byte
	times map[string]time.Time

	// SaveErr, when set, is returned by every Save call.
	SaveErr error
}

// NewMockStaging creates an empty in-memory staging store.
func NewMockStaging() *MockStaging {
	return &MockStaging{
		files: make(map[string][]byte),
		times: make(map[string]time.Time),
	}
}

// AddFile seeds a staged file.
func (m *MockStaging) AddFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	m.times[name] = time.Now()
}

func (m *MockStaging) Save(name string, r io.Reader) (*models.StagedFile, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	m.times[name] = time.Now()

	return &models.StagedFile{Name: name, Size: int64(len(data)), UploadedAt: m.times[name]}, nil
}

func (m *MockStaging) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[name]
	return ok
}

func (m *MockStaging) Open(name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStaging) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("file not found: %s", name)
	}
	delete(m.files, name)
	delete(m.times, name)
	return nil
}

func (m *MockStaging) List(limit int) ([]*models.StagedFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.StagedFile
	for name, data := range m.files {
		list = append(list, &models.StagedFile{
			Name:       name,
			Size:       int64(len(data)),
			UploadedAt: m.times[name],
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

// FileCount returns how many files are staged.
func (m *MockStaging) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
