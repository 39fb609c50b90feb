package auth

import (
	"os"
	"path/filepath"
	"testing"

	"findash/internal/core"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, _ := store.Load(); ok {
		t.Fatal("empty store reported credentials")
	}
	if _, ok := store.Token(); ok {
		t.Fatal("empty store reported a token")
	}

	creds := Credentials{
		Token: "tok-1",
		User:  core.User{ID: 1, Name: "John Doe", Email: "john@example.com"},
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("credentials file mode = %v", info.Mode().Perm())
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.Token != "tok-1" || got.User.Email != "john@example.com" {
		t.Fatalf("loaded %+v", got)
	}
	if token, ok := store.Token(); !ok || token != "tok-1" {
		t.Fatalf("Token = %q ok=%v", token, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("credentials survived Clear")
	}
	// Clearing twice is fine
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestFileStoreRejectsEmptyToken(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save(Credentials{}); err == nil {
		t.Fatal("empty token accepted")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, _, err := store.Load(); err == nil {
		t.Fatal("corrupt file loaded without error")
	}
	if _, ok := store.Token(); ok {
		t.Fatal("corrupt file produced a token")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if _, ok, _ := store.Load(); ok {
		t.Fatal("fresh store reported credentials")
	}
	if err := store.Save(Credentials{Token: "t", User: core.User{ID: 2}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	creds, ok, _ := store.Load()
	if !ok || creds.User.ID != 2 {
		t.Fatalf("Load = %+v ok=%v", creds, ok)
	}
	store.Clear()
	if _, ok := store.Token(); ok {
		t.Fatal("token survived Clear")
	}
}
