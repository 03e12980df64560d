package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/dm-session/testutil"
)

func TestSessionStore_GetIndexPath(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewSessionStore(dir)

	expected := filepath.Join(dir, "sessions.yaml")
	if got := store.GetIndexPath(); got != expected {
		t.Errorf("GetIndexPath() = %q, want %q", got, expected)
	}
}

func TestSessionStore_SaveFind(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewSessionStore(filepath.Join(dir, "state"))

	found, err := store.Find("alice", "/db")
	if err != nil {
		t.Fatalf("Find() on empty store error = %v", err)
	}
	if found != nil {
		t.Errorf("Find() on empty store = %+v, want nil", found)
	}

	session := StoredSession{
		Username:  "alice",
		AccountID: "u-alice",
		Token:     "tok-1",
		DBPath:    "/db",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Save(session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(store.GetIndexPath())
	if err != nil {
		t.Fatalf("index file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("index file mode = %v, want 0600", info.Mode().Perm())
	}

	found, err = store.Find("alice", "/db")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found == nil || found.Token != "tok-1" {
		t.Fatalf("Find() = %+v, want token tok-1", found)
	}

	// Different database is a different login
	if other, _ := store.Find("alice", "/other.db"); other != nil {
		t.Errorf("Find() for other db = %+v, want nil", other)
	}

	session.Token = "tok-2"
	if err := store.Save(session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	index, err := store.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(index.Sessions) != 1 || index.Sessions[0].Token != "tok-2" {
		t.Errorf("Save() should replace existing entry, got %+v", index.Sessions)
	}
}

func TestSessionStore_Remove(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewSessionStore(dir)

	_ = store.Save(StoredSession{Username: "alice", DBPath: "/db", Token: "a"})
	_ = store.Save(StoredSession{Username: "bob", DBPath: "/db", Token: "b"})

	if err := store.Remove("alice", "/db"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if found, _ := store.Find("alice", "/db"); found != nil {
		t.Error("Find() after Remove() should return nil")
	}
	if found, _ := store.Find("bob", "/db"); found == nil {
		t.Error("Remove() should keep other entries")
	}
}

func TestSessionStore_CorruptIndex(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewSessionStore(dir)
	testutil.CreateFileFixture(t, store.GetIndexPath(), []byte("sessions: [unclosed"))

	if _, err := store.LoadIndex(); err == nil {
		t.Error("LoadIndex() on corrupt file should fail")
	}

	// Save recovers by starting a fresh index
	if err := store.Save(StoredSession{Username: "alice", DBPath: "/db"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if found, _ := store.Find("alice", "/db"); found == nil {
		t.Error("Find() after recovery should find the entry")
	}
}
