// Package session provides cookie-backed user sessions and the per-session
// invoice cache.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/billrate-system/backend/internal/models"
)

// DefaultMaxAge is how long an idle session survives before cleanup.
const DefaultMaxAge = 2 * time.Hour

// Entry is one live session. Invoice data is private to the session,
// overwritten (never merged) on each successful import, and replaced by an
// error marker when aggregation failed.
type Entry struct {
	Token        string
	UserID       int64
	Username     string
	CreatedAt    time.Time
	LastAccessed time.Time

	invoice    models.InvoiceData
	invoiceErr string
}

// Manager owns the session map and its TTL sweep.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Entry
	maxAge   time.Duration
}

// NewManager creates a session manager. A non-positive maxAge falls back to
// DefaultMaxAge.
func NewManager(maxAge time.Duration) *Manager {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Manager{
		sessions: make(map[string]*Entry),
		maxAge:   maxAge,
	}
}

// Create opens a session for a user and returns it with a fresh token.
func (m *Manager) Create(userID int64, username string) *Entry {
	now := time.Now()
	entry := &Entry{
		Token:        uuid.New().String(),
		UserID:       userID,
		Username:     username,
		CreatedAt:    now,
		LastAccessed: now,
	}

	m.mu.Lock()
	m.sessions[entry.Token] = entry
	m.mu.Unlock()

	return entry
}

// Get returns the session for a token and refreshes its last-access time.
func (m *Manager) Get(token string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Since(entry.LastAccessed) > m.maxAge {
		delete(m.sessions, token)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	return entry, true
}

// Delete ends a session.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Cleanup drops sessions idle for longer than the max age and returns how
// many were removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, entry := range m.sessions {
		if time.Since(entry.LastAccessed) > m.maxAge {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetInvoice overwrites the session's cached invoice data and clears any
// previous error marker.
func (m *Manager) SetInvoice(token string, data models.InvoiceData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.sessions[token]; ok {
		entry.invoice = data
		entry.invoiceErr = ""
	}
}

// SetInvoiceError stores an error marker in place of invoice data. Views
// must render this as "no data", never as line items.
func (m *Manager) SetInvoiceError(token string, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.sessions[token]; ok {
		entry.invoice = nil
		entry.invoiceErr = msg
	}
}

// Invoice returns the session's cached invoice data. The second return is
// false when the cache is empty or holds an error marker.
func (m *Manager) Invoice(token string) (models.InvoiceData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[token]
	if !ok || entry.invoiceErr != "" || len(entry.invoice) == 0 {
		return nil, false
	}
	return entry.invoice, true
}

// InvoiceError returns the error marker, if one is cached.
func (m *Manager) InvoiceError(token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[token]
	if !ok || entry.invoiceErr == "" {
		return "", false
	}
	return entry.invoiceErr, true
}
