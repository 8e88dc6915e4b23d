package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); err != ErrMiss {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	if err := s.Set(ctx, "k", "v", 2*time.Minute); err != nil {
		t.Fatal(err)
	}

	current = current.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("entry expired too early: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after TTL, got %v", err)
	}
}

func TestMemoryStoreIncr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := s.Incr(ctx, "counter")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("got %d, want 1", n)
	}

	n, err = s.Incr(ctx, "counter")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestMemoryStoreDel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "a", "1", 0)
	s.Set(ctx, "b", "2", 0)

	if err := s.Del(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); err != ErrMiss {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}
