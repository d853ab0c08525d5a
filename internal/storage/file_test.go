package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fastorder/storefront/internal/storage"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok := s.Get("token"); ok {
		t.Fatal("expected empty store")
	}

	if err := s.Set("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok := s.Get("token")
	if !ok || v != "abc" {
		t.Errorf("get: got %q, %v; want abc, true", v, ok)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("cart", `[{"food_id":1}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("user", `{"id":7}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, _ := reopened.Get("cart"); v != `[{"food_id":1}]` {
		t.Errorf("cart after reopen: got %q", v)
	}
	if v, _ := reopened.Get("user"); v != `{"id":7}` {
		t.Errorf("user after reopen: got %q", v)
	}
}

func TestFileStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete("token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get("token"); ok {
		t.Error("expected token removed")
	}

	// Deleting an absent key is a no-op.
	if err := s.Delete("token"); err != nil {
		t.Errorf("delete absent key: %v", err)
	}
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s, err := storage.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
