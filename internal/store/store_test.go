package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='blobs'").Scan(&name)
	if err != nil {
		t.Errorf("blobs table not found after idempotent opens: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestMigrateToV1_AddsRevision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE blobs (key TEXT PRIMARY KEY, payload TEXT NOT NULL, updated_at TEXT NOT NULL DEFAULT '')`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	_, err = db.Exec(`INSERT INTO blobs (key, payload) VALUES ('genesis_board', '[]')`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on legacy database failed: %v", err)
	}
	defer s.Close()

	rev, err := s.Revision(context.Background(), KeyBoard)
	if err != nil {
		t.Fatalf("Revision() failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}
}

func TestPutGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Get(ctx, KeyLibrary); err != nil || found {
		t.Fatalf("Get() on empty store = found %v, err %v", found, err)
	}

	if err := s.Put(ctx, KeyLibrary, []byte(`["a"]`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Put(ctx, KeyLibrary, []byte(`["b"]`)); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	data, found, err := s.Get(ctx, KeyLibrary)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if string(data) != `["b"]` {
		t.Errorf("payload = %s, want [\"b\"]", data)
	}

	rev, err := s.Revision(ctx, KeyLibrary)
	if err != nil {
		t.Fatalf("Revision() failed: %v", err)
	}
	if rev != 2 {
		t.Errorf("revision = %d, want 2", rev)
	}
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, key := range []string{KeyLibrary, KeyBoard, KeyLog} {
		if err := s.Put(ctx, key, []byte(`[]`)); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	for _, key := range []string{KeyLibrary, KeyBoard, KeyLog} {
		if _, found, _ := s.Get(ctx, key); found {
			t.Errorf("%s still present after Delete()", key)
		}
	}
}
