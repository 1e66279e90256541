package staging

import (
	"io"
	"strings"
	"testing"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newStore(t)

	info, err := s.Save("week1.csv", strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "week1.csv" {
		t.Errorf("name = %q, want week1.csv", info.Name)
	}
	if info.Size != 8 {
		t.Errorf("size = %d, want 8", info.Size)
	}

	f, err := s.Open("week1.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newStore(t)

	if _, err := s.Save("week1.csv", strings.NewReader("old")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Save("week1.csv", strings.NewReader("new content")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := s.Open("week1.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()

	data, _ := io.ReadAll(f)
	if string(data) != "new content" {
		t.Errorf("expected second save to overwrite, got %q", data)
	}
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	s := newStore(t)

	info, err := s.Save("../../etc/week1.csv", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "week1.csv" {
		t.Errorf("name = %q, want week1.csv", info.Name)
	}
	if !s.Exists("week1.csv") {
		t.Error("expected file under its base name")
	}
}

func TestSaveRejectsBadNames(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"", ".", ".."} {
		if _, err := s.Save(name, strings.NewReader("x")); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestExists(t *testing.T) {
	s := newStore(t)

	if s.Exists("week1.csv") {
		t.Error("expected miss before save")
	}
	if _, err := s.Save("week1.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Exists("week1.csv") {
		t.Error("expected hit after save")
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)

	if _, err := s.Save("week1.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete("week1.csv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Exists("week1.csv") {
		t.Error("expected file gone after delete")
	}

	if err := s.Delete("week1.csv"); err == nil {
		t.Error("expected error deleting a missing file")
	}
}

func TestOpenMissing(t *testing.T) {
	s := newStore(t)
	if _, err := s.Open("nope.csv"); err == nil {
		t.Error("expected error opening a missing file")
	}
}

func TestList(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		if _, err := s.Save(name, strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, err := s.List(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 files, got %d", len(list))
	}

	list, err = s.List(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected limit of 2 files, got %d", len(list))
	}
}
