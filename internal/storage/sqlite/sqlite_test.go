package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tatianab/orb-cult/internal/storage"
)

func openTempBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cult.db")
	b, err := Open(path)
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, path
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveLoadDelete(t *testing.T) {
	t.Parallel()

	b, _ := openTempBackend(t)
	ctx := context.Background()

	if _, err := b.Load(ctx, "cultists", "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load missing = %v, want ErrNotFound", err)
	}
	if err := b.Save(ctx, "cultists", "u1", []byte("favor: 1\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Save(ctx, "cultists", "u1", []byte("favor: 2\n")); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err := b.Load(ctx, "cultists", "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "favor: 2\n" {
		t.Fatalf("data = %q, want upserted value", got)
	}
	if n, err := b.Count(ctx, "cultists"); err != nil || n != 1 {
		t.Fatalf("count = %d, %v, want 1", n, err)
	}
	if err := b.Delete(ctx, "cultists", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Load(ctx, "cultists", "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load after delete = %v, want ErrNotFound", err)
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	t.Parallel()

	b, path := openTempBackend(t)
	if err := b.Save(context.Background(), "servers", "g1", []byte("total_mentions: 3\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = b.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var applied int
	if err := reopened.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied migrations = %d, want 1", applied)
	}
	if _, err := reopened.Load(context.Background(), "servers", "g1"); err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	got := upSection("-- +migrate Up\nCREATE TABLE x (a);\n-- +migrate Down\nDROP TABLE x;\n")
	if got != "\nCREATE TABLE x (a);\n" {
		t.Fatalf("upSection = %q", got)
	}
}
