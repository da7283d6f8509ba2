package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			if err := s.Set("k", []byte("v1")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := s.Get("k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != "v1" {
				t.Errorf("Get = %q, want v1", got)
			}

			if err := s.Set("k", []byte("v2")); err != nil {
				t.Fatalf("Set overwrite failed: %v", err)
			}
			got, _ = s.Get("k")
			if string(got) != "v2" {
				t.Errorf("Get after overwrite = %q, want v2", got)
			}

			if err := s.Delete("k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := s.Get("k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}

			// Deleting a missing key is a no-op.
			if err := s.Delete("k"); err != nil {
				t.Errorf("Delete of missing key failed: %v", err)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s.Set("a", []byte("1"))
			s.Set("b", []byte("2"))

			if err := s.Clear(); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after clear, got %v", err)
			}
			if _, err := s.Get("b"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after clear, got %v", err)
			}
		})
	}
}

type profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestGetSetJSON(t *testing.T) {
	s := NewMemoryStore()

	want := profile{Name: "Sarah Johnson", Email: "sarah@example.com"}
	if err := SetJSON(s, KeyCachedUser, want); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	got, ok := GetJSON[profile](s, KeyCachedUser)
	if !ok {
		t.Fatal("expected stored profile")
	}
	if got != want {
		t.Errorf("GetJSON = %+v, want %+v", got, want)
	}
}

func TestGetJSON_MissingAndCorrupt(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := GetJSON[profile](s, "missing"); ok {
		t.Error("expected ok=false for missing key")
	}

	s.Set("corrupt", []byte("{not json"))
	got, ok := GetJSON[profile](s, "corrupt")
	if ok {
		t.Error("expected ok=false for corrupt value")
	}
	if got != (profile{}) {
		t.Errorf("expected zero value for corrupt entry, got %+v", got)
	}
}

func TestPushSearchHistory(t *testing.T) {
	s := NewMemoryStore()

	for _, q := range []string{"times square", "central park", "brooklyn bridge"} {
		if err := PushSearchHistory(s, q); err != nil {
			t.Fatalf("PushSearchHistory failed: %v", err)
		}
	}

	history := SearchHistory(s)
	want := []string{"brooklyn bridge", "central park", "times square"}
	if len(history) != len(want) {
		t.Fatalf("history length = %d, want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, history[i], want[i])
		}
	}
}

func TestPushSearchHistory_DedupeAndCap(t *testing.T) {
	s := NewMemoryStore()

	for _, q := range []string{"a", "b", "c", "d", "e", "f", "b"} {
		PushSearchHistory(s, q)
	}

	history := SearchHistory(s)
	if len(history) != MaxSearchHistory {
		t.Fatalf("history length = %d, want %d", len(history), MaxSearchHistory)
	}
	if history[0] != "b" {
		t.Errorf("repeated query should move to front, got %q", history[0])
	}
	for i, entry := range history {
		for j := i + 1; j < len(history); j++ {
			if entry == history[j] {
				t.Errorf("duplicate entry %q at positions %d and %d", entry, i, j)
			}
		}
	}
}
