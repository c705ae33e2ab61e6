package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/inventory"
)

func TestMemory_PutGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatal("expected missing product to be absent")
	}

	p := inventory.Product{ID: "p1", Name: "Mouse", Quantity: 3, UpdatedAt: time.Now()}
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := s.Get(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("want product, got ok=%v err=%v", ok, err)
	}
	if got.Name != "Mouse" || got.Quantity != 3 {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestMemory_IgnoresStaleWrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()

	_ = s.Put(ctx, inventory.Product{ID: "p1", Quantity: 5, UpdatedAt: now})
	_ = s.Put(ctx, inventory.Product{ID: "p1", Quantity: 1, UpdatedAt: now.Add(-time.Second)})

	got, _, _ := s.Get(ctx, "p1")
	if got.Quantity != 5 {
		t.Fatalf("stale write replaced newer record: quantity=%d", got.Quantity)
	}
}

func TestMemory_AllOrderedByCreation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now()

	_ = s.Put(ctx, inventory.Product{ID: "c", CreatedAt: base.Add(2 * time.Second)})
	_ = s.Put(ctx, inventory.Product{ID: "a", CreatedAt: base})
	_ = s.Put(ctx, inventory.Product{ID: "b", CreatedAt: base.Add(time.Second)})

	list, err := s.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, p := range list {
		if p.ID != want[i] {
			t.Fatalf("position %d: want %q, got %q", i, want[i], p.ID)
		}
	}
}

func TestMemory_ConcurrentPuts(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		p := inventory.Product{ID: "p1", Quantity: i, UpdatedAt: base.Add(time.Duration(i) * time.Millisecond)}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, p)
		}()
	}
	wg.Wait()

	got, _, _ := s.Get(ctx, "p1")
	if got.Quantity != 100 {
		t.Fatalf("want latest quantity 100, got %d", got.Quantity)
	}
}
