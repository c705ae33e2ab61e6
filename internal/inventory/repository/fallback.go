package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inventory-service/internal/inventory"

	"github.com/prometheus/client_golang/prometheus"
)

// Store is the minimal contract of a product state backend.
type Store interface {
	Get(ctx context.Context, id string) (inventory.Product, bool, error)
	Put(ctx context.Context, p inventory.Product) error
}

type lister interface {
	All(ctx context.Context) ([]inventory.Product, error)
}

type healthChecker interface {
	Health() error
}

// Fallback writes to the primary store and, when that fails, to the secondary
// one. Records that only reached the secondary are remembered until Resync
// manages to push them to the primary.
type Fallback struct {
	primary   Store
	secondary Store
	logger    *slog.Logger
	fallbacks prometheus.Counter

	mu      sync.Mutex
	pending map[string]time.Time
}

func NewFallback(primary, secondary Store, logger *slog.Logger, fallbacks prometheus.Counter) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		fallbacks: fallbacks,
		pending:   make(map[string]time.Time),
	}
}

func (f *Fallback) Put(ctx context.Context, p inventory.Product) error {
	err := f.primary.Put(ctx, p)
	if err == nil {
		return nil
	}

	f.logger.Warn("state store unavailable, writing to in-memory fallback",
		"key", inventory.StateKey(p.ID),
		"error", err,
	)
	f.fallbacks.Inc()

	if err := f.secondary.Put(ctx, p); err != nil {
		return fmt.Errorf("fallback put: %w", err)
	}

	f.mu.Lock()
	if cur, ok := f.pending[p.ID]; !ok || !cur.After(p.UpdatedAt) {
		f.pending[p.ID] = p.UpdatedAt
	}
	f.mu.Unlock()
	return nil
}

// Get prefers a record still waiting for resync, then the primary store, and
// falls back to the secondary when the primary cannot be read.
func (f *Fallback) Get(ctx context.Context, id string) (inventory.Product, bool, error) {
	if f.isPending(id) {
		return f.secondary.Get(ctx, id)
	}

	p, ok, err := f.primary.Get(ctx, id)
	if err != nil {
		f.logger.Warn("state store read failed, using in-memory fallback", "key", inventory.StateKey(id), "error", err)
		return f.secondary.Get(ctx, id)
	}
	return p, ok, nil
}

// All lists the records of the primary store overlaid with any newer record
// held by the secondary. A primary that cannot be listed is skipped.
func (f *Fallback) All(ctx context.Context) ([]inventory.Product, error) {
	byID := make(map[string]inventory.Product)

	if l, ok := f.primary.(lister); ok {
		list, err := l.All(ctx)
		if err != nil {
			f.logger.Warn("state store list failed, using in-memory fallback", "error", err)
		}
		for _, p := range list {
			byID[p.ID] = p
		}
	}

	if l, ok := f.secondary.(lister); ok {
		list, err := l.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("fallback list: %w", err)
		}
		for _, p := range list {
			if cur, ok := byID[p.ID]; !ok || p.UpdatedAt.After(cur.UpdatedAt) {
				byID[p.ID] = p
			}
		}
	}

	list := make([]inventory.Product, 0, len(byID))
	for _, p := range byID {
		list = append(list, p)
	}
	sortByCreation(list)
	return list, nil
}

// Resync pushes pending records to the primary store. It stops at the first
// failure and reports how many records were synced.
func (f *Fallback) Resync(ctx context.Context) (int, error) {
	synced := 0
	for _, id := range f.pendingIDs() {
		p, ok, err := f.secondary.Get(ctx, id)
		if err != nil {
			return synced, fmt.Errorf("read fallback %q: %w", id, err)
		}
		if !ok {
			f.mu.Lock()
			delete(f.pending, id)
			f.mu.Unlock()
			continue
		}
		if err := f.primary.Put(ctx, p); err != nil {
			return synced, fmt.Errorf("resync %q: %w", id, err)
		}
		f.forget(id, p.UpdatedAt)
		synced++
	}
	return synced, nil
}

// Pending reports how many records are waiting for resync.
func (f *Fallback) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fallback) Health() error {
	if hc, ok := f.primary.(healthChecker); ok {
		return hc.Health()
	}
	return nil
}

func (f *Fallback) isPending(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[id]
	return ok
}

func (f *Fallback) pendingIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	return ids
}

// forget drops id unless a newer fallback write arrived after version was read.
func (f *Fallback) forget(id string, version time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.pending[id]; ok && !cur.After(version) {
		delete(f.pending, id)
	}
}
