package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tatianab/orb-cult/internal/storage"
)

func TestBackendRoundTrip(t *testing.T) {
	b := New()
	ctx := context.Background()

	if _, err := b.Load(ctx, "cultists", "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	data := []byte("favor: 3\n")
	if err := b.Save(ctx, "cultists", "u1", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	got, err := b.Load(ctx, "cultists", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "favor: 3\n" {
		t.Errorf("Expected stored copy unaffected by caller mutation, got %q", got)
	}

	if err := b.Delete(ctx, "cultists", "u1"); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Errorf("Expected empty backend, got %d records", b.Len())
	}
}

func TestClosedBackendFails(t *testing.T) {
	b := New()
	_ = b.Close()
	if err := b.Save(context.Background(), "cultists", "u1", nil); err == nil {
		t.Fatal("Expected error after close")
	}
}

func TestStoreOverMemory(t *testing.T) {
	s := storage.New(New(), nil)
	ctx := context.Background()
	favor := 7
	if _, err := s.MergeCultist(ctx, "u1", storage.CultistPatch{Favor: &favor}); err != nil {
		t.Fatal(err)
	}
	p, err := s.Cultist(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Favor != 7 {
		t.Errorf("Expected favor 7, got %d", p.Favor)
	}
}
