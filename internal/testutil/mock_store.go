// mock_store.go - In-memory billing store for testing
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billrate-system/backend/internal/models"
	"github.com/billrate-system/backend/internal/store"
)

// MockBillingStore implements store.BillingStore in memory.
type MockBillingStore struct {
	mu         sync.RWMutex
	projects   map[int64]*models.Project
	timesheets []*models.Timesheet
	users      map[int64]*models.User

	nextProjectID   int64
	nextTimesheetID int64
	nextUserID      int64

	// BulkInsertErr, when set, is returned by every BulkInsertTimesheets call.
	BulkInsertErr error
}

// NewMockBillingStore creates an empty in-memory billing store.
func NewMockBillingStore() *MockBillingStore {
	return &MockBillingStore{
		projects: make(map[int64]*models.Project),
		users:    make(map[int64]*models.User),
	}
}

// AddProject seeds a registered project and returns it.
func (m *MockBillingStore) AddProject(name string) *models.Project {
	p, _ := m.CreateProject(context.Background(), name)
	return p
}

func (m *MockBillingStore) CreateProject(_ context.Context, name string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.projects {
		if p.Name == name {
			return nil, fmt.Errorf("project %q: %w", name, store.ErrDuplicate)
		}
	}

	m.nextProjectID++
	p := &models.Project{ID: m.nextProjectID, Name: name}
	m.projects[p.ID] = p
	return p, nil
}

func (m *MockBillingStore) UpdateProject(_ context.Context, id int64, name string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, store.ErrNotFound)
	}
	for _, other := range m.projects {
		if other.ID != id && other.Name == name {
			return nil, fmt.Errorf("project %q: %w", name, store.ErrDuplicate)
		}
	}
	p.Name = name
	return p, nil
}

func (m *MockBillingStore) GetProjectByName(_ context.Context, name string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", name, store.ErrNotFound)
}

func (m *MockBillingStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*models.Project
	for _, p := range m.projects {
		list = append(list, p)
	}
	return list, nil
}

func (m *MockBillingStore) ProjectNames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for _, p := range m.projects {
		names = append(names, p.Name)
	}
	return names, nil
}

func (m *MockBillingStore) TimesheetKeys(_ context.Context) (map[models.NaturalKey]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make(map[models.NaturalKey]struct{}, len(m.timesheets))
	for _, ts := range m.timesheets {
		keys[ts.Key()] = struct{}{}
	}
	return keys, nil
}

func (m *MockBillingStore) BulkInsertTimesheets(_ context.Context, rows []*models.Timesheet) error {
	if m.BulkInsertErr != nil {
		return m.BulkInsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, ts := range rows {
		m.nextTimesheetID++
		ts.ID = m.nextTimesheetID
		ts.CreatedAt = now
		m.timesheets = append(m.timesheets, ts)
	}
	return nil
}

func (m *MockBillingStore) ListTimesheets(_ context.Context, limit int) ([]*models.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.Timesheet, 0, len(m.timesheets))
	for i := len(m.timesheets) - 1; i >= 0; i-- {
		list = append(list, m.timesheets[i])
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}

func (m *MockBillingStore) GetTimesheet(_ context.Context, id int64) (*models.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ts := range m.timesheets {
		if ts.ID == id {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("timesheet %d: %w", id, store.ErrNotFound)
}

func (m *MockBillingStore) RenameSheet(_ context.Context, oldName, newName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var updated int64
	for _, ts := range m.timesheets {
		if ts.SheetName == oldName {
			ts.SheetName = newName
			updated++
		}
	}
	return updated, nil
}

func (m *MockBillingStore) CountTimesheets(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timesheets), nil
}

func (m *MockBillingStore) CreateUser(_ context.Context, username, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return nil, fmt.Errorf("user %q: %w", username, store.ErrDuplicate)
		}
	}

	m.nextUserID++
	u := &models.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *MockBillingStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
}

func (m *MockBillingStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (m *MockBillingStore) Close() error { return nil }
