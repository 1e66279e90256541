package session

import (
	"testing"
	"time"

	"github.com/billrate-system/backend/internal/models"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager(time.Hour)

	entry := m.Create(1, "alice")
	if entry.Token == "" {
		t.Fatal("expected a token")
	}
	if entry.Username != "alice" || entry.UserID != 1 {
		t.Errorf("unexpected entry: %+v", entry)
	}

	got, ok := m.Get(entry.Token)
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got.Token != entry.Token {
		t.Errorf("got token %q, want %q", got.Token, entry.Token)
	}
}

func TestGetUnknownToken(t *testing.T) {
	m := NewManager(time.Hour)
	if _, ok := m.Get("nope"); ok {
		t.Error("expected unknown token to miss")
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	m := NewManager(time.Minute)
	entry := m.Create(1, "alice")

	m.mu.Lock()
	m.sessions[entry.Token].LastAccessed = time.Now().Add(-2 * time.Minute)
	m.mu.Unlock()

	if _, ok := m.Get(entry.Token); ok {
		t.Error("expected expired session to miss")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired session removed, have %d", m.Len())
	}
}

func TestGetRefreshesLastAccess(t *testing.T) {
	m := NewManager(time.Hour)
	entry := m.Create(1, "alice")

	stale := time.Now().Add(-30 * time.Minute)
	m.mu.Lock()
	m.sessions[entry.Token].LastAccessed = stale
	m.mu.Unlock()

	got, ok := m.Get(entry.Token)
	if !ok {
		t.Fatal("expected session to be found")
	}
	if !got.LastAccessed.After(stale) {
		t.Error("expected Get to refresh last-access time")
	}
}

func TestDelete(t *testing.T) {
	m := NewManager(time.Hour)
	entry := m.Create(1, "alice")

	m.Delete(entry.Token)
	if _, ok := m.Get(entry.Token); ok {
		t.Error("expected deleted session to miss")
	}
}

func TestCleanup(t *testing.T) {
	m := NewManager(time.Minute)
	fresh := m.Create(1, "alice")
	stale := m.Create(2, "bob")

	m.mu.Lock()
	m.sessions[stale.Token].LastAccessed = time.Now().Add(-2 * time.Minute)
	m.mu.Unlock()

	if removed := m.Cleanup(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := m.Get(fresh.Token); !ok {
		t.Error("expected fresh session to survive cleanup")
	}
}

func TestInvoiceCache(t *testing.T) {
	m := NewManager(time.Hour)
	entry := m.Create(1, "alice")

	if _, ok := m.Invoice(entry.Token); ok {
		t.Fatal("expected no invoice before an import")
	}

	data := models.InvoiceData{
		"Test Project": {{Project: "Test Project", EmployeeID: 123, TotalHours: 8, UnitPrice: 50, TotalCost: 400}},
	}
	m.SetInvoice(entry.Token, data)

	got, ok := m.Invoice(entry.Token)
	if !ok {
		t.Fatal("expected cached invoice")
	}
	if len(got["Test Project"]) != 1 {
		t.Errorf("unexpected invoice data: %+v", got)
	}

	// A later import overwrites, never merges.
	m.SetInvoice(entry.Token, models.InvoiceData{
		"Other Project": {{Project: "Other Project", EmployeeID: 456, TotalHours: 4, UnitPrice: 75, TotalCost: 300}},
	})
	got, _ = m.Invoice(entry.Token)
	if _, stillThere := got["Test Project"]; stillThere {
		t.Error("expected previous invoice data to be replaced")
	}
}

func TestInvoiceErrorMarker(t *testing.T) {
	m := NewManager(time.Hour)
	entry := m.Create(1, "alice")

	m.SetInvoice(entry.Token, models.InvoiceData{
		"Test Project": {{Project: "Test Project", EmployeeID: 123}},
	})
	m.SetInvoiceError(entry.Token, "Invoice generation error: column missing")

	if _, ok := m.Invoice(entry.Token); ok {
		t.Error("expected error marker to hide invoice data")
	}
	msg, ok := m.InvoiceError(entry.Token)
	if !ok || msg == "" {
		t.Fatal("expected a cached error marker")
	}

	// A successful import clears the marker.
	m.SetInvoice(entry.Token, models.InvoiceData{
		"Test Project": {{Project: "Test Project", EmployeeID: 123}},
	})
	if _, ok := m.InvoiceError(entry.Token); ok {
		t.Error("expected error marker cleared by a successful import")
	}
}

func TestInvoiceCacheIsSessionScoped(t *testing.T) {
	m := NewManager(time.Hour)
	a := m.Create(1, "alice")
	b := m.Create(2, "bob")

	m.SetInvoice(a.Token, models.InvoiceData{
		"Test Project": {{Project: "Test Project", EmployeeID: 123}},
	})

	if _, ok := m.Invoice(b.Token); ok {
		t.Error("expected other session's cache to be empty")
	}
}

func TestEmptyInvoiceReadsAsMissing(t *testing.T) {
	m := NewManager(time.Hour)
	entry := m.Create(1, "alice")

	m.SetInvoice(entry.Token, models.InvoiceData{})
	if _, ok := m.Invoice(entry.Token); ok {
		t.Error("expected empty invoice data to read as missing")
	}
}

func TestNonPositiveMaxAgeFallsBack(t *testing.T) {
	m := NewManager(0)
	if m.maxAge != DefaultMaxAge {
		t.Errorf("maxAge = %v, want %v", m.maxAge, DefaultMaxAge)
	}
}
