package repository

import (
	"context"
	"sort"
	"sync"

	"inventory-service/internal/inventory"
)

// Memory keeps product records in process. It serves as the degraded store
// when the durable backend is unreachable, and as the only store when no
// database is configured.
type Memory struct {
	mu sync.RWMutex
	m  map[string]inventory.Product
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]inventory.Product)}
}

func (s *Memory) Get(_ context.Context, id string) (inventory.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[inventory.StateKey(id)]
	return p, ok, nil
}

// Put stores p unless a record with a later updated_at is already present.
func (s *Memory) Put(_ context.Context, p inventory.Product) error {
	key := inventory.StateKey(p.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[key]; ok && cur.UpdatedAt.After(p.UpdatedAt) {
		return nil
	}
	s.m[key] = p
	return nil
}

// All returns every record ordered by creation time.
func (s *Memory) All(_ context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	list := make([]inventory.Product, 0, len(s.m))
	for _, p := range s.m {
		list = append(list, p)
	}
	s.mu.RUnlock()

	sortByCreation(list)
	return list, nil
}

func (s *Memory) Health() error { return nil }

func sortByCreation(list []inventory.Product) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
