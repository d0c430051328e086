package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"gorm.io/gorm"
)

func openTestSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	kv, err := NewSQLiteKVFromDB(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"sqlite": openTestSQLite(t),
	}
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}

			if err := kv.Set(ctx, "k", "first value that is long"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set(ctx, "k", "short"); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			v, ok, err := kv.Get(ctx, "k")
			if err != nil || !ok || v != "short" {
				t.Fatalf("expected full replacement, got %q ok=%v err=%v", v, ok, err)
			}

			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("second Delete should be a no-op, got %v", err)
			}
			if _, ok, _ := kv.Get(ctx, "k"); ok {
				t.Fatalf("expected key to be gone")
			}

			if err := kv.Set(ctx, "", "x"); !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey for empty key, got %v", err)
			}
		})
	}
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	for _, key := range []string{"../escape", "a/b", ".hidden"} {
		if err := kv.Set(context.Background(), key, "x"); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestFileKVSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	if err := kv.Set(ctx, KeyLanguage, "te"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if v, ok, _ := reopened.Get(ctx, KeyLanguage); !ok || v != "te" {
		t.Fatalf("expected persisted value, got %q ok=%v", v, ok)
	}
}

func TestSessionsHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(NewMemoryKV())

	if got := s.ReadHistory(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}

	c := history.Collection{{ID: "a", Title: "t", LastActivity: time.Now().UTC()}}
	if err := s.WriteHistory(ctx, c); err != nil {
		t.Fatalf("WriteHistory failed: %v", err)
	}
	got := s.ReadHistory(ctx)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestSessionsCorruptHistoryReadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewSessions(kv)

	data, err := history.Encode(history.Collection{{ID: "a"}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	corrupt := string(data[:len(data)-3]) + "\x00"
	if err := kv.Set(ctx, KeyHistory, corrupt); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := s.ReadHistory(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty history from corrupt data, got %+v", got)
	}
}

func TestSessionsIdentity(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewSessions(kv)

	if _, ok := s.ReadIdentity(ctx); ok {
		t.Fatalf("expected no identity")
	}

	id := Identity{Phone: "9876543210", Name: "Ravi", LoginTime: time.Now().UTC()}
	if err := s.WriteIdentity(ctx, id); err != nil {
		t.Fatalf("WriteIdentity failed: %v", err)
	}
	got, ok := s.ReadIdentity(ctx)
	if !ok || got.Phone != id.Phone || got.Name != id.Name {
		t.Fatalf("unexpected identity: %+v ok=%v", got, ok)
	}

	if err := s.ClearIdentity(ctx); err != nil {
		t.Fatalf("ClearIdentity failed: %v", err)
	}
	if _, ok := s.ReadIdentity(ctx); ok {
		t.Fatalf("expected identity to be cleared")
	}
}

func TestSessionsCorruptIdentityIsRemoved(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewSessions(kv)

	if err := kv.Set(ctx, KeyIdentity, "{not json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := s.ReadIdentity(ctx); ok {
		t.Fatalf("corrupt identity must read as absent")
	}
	if _, ok, _ := kv.Get(ctx, KeyIdentity); ok {
		t.Fatalf("corrupt identity should have been deleted")
	}
}

func TestSessionsLanguage(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(NewMemoryKV())

	if _, ok := s.ReadLanguage(ctx); ok {
		t.Fatalf("expected no language")
	}
	if err := s.WriteLanguage(ctx, "hi"); err != nil {
		t.Fatalf("WriteLanguage failed: %v", err)
	}
	if lang, ok := s.ReadLanguage(ctx); !ok || lang != "hi" {
		t.Fatalf("expected hi, got %q", lang)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := Open(ctx, Options{Backend: BackendFile, Dir: dir})
	if err != nil {
		t.Fatalf("Open file failed: %v", err)
	}
	if _, ok := kv.(*FileKV); !ok {
		t.Fatalf("expected *FileKV, got %T", kv)
	}

	kv, err = Open(ctx, Options{Backend: BackendSQLite, Dir: dir})
	if err != nil {
		t.Fatalf("Open sqlite failed: %v", err)
	}
	if _, ok := kv.(*SQLiteKV); !ok {
		t.Fatalf("expected *SQLiteKV, got %T", kv)
	}
	kv.Close()

	if _, err := Open(ctx, Options{Backend: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
