package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inventory-service/internal/inventory"

	"github.com/google/uuid"
)

const (
	defaultPageSize       = 10
	maxPageSize           = 100
	defaultAdapterTimeout = 2 * time.Second
)

type Repository interface {
	Get(ctx context.Context, id string) (inventory.Product, bool, error)
	Put(ctx context.Context, p inventory.Product) error
}

// Lister is implemented by repositories that can enumerate their records.
type Lister interface {
	All(ctx context.Context) ([]inventory.Product, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Config tunes the service. Zero values select the defaults.
type Config struct {
	LowStockThreshold int
	AdapterTimeout    time.Duration
}

// Service owns the product catalog. Reads are served from memory; every
// mutation is written through the repository and announced on the publisher,
// neither of which can fail the operation.
type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   *Metrics
	threshold int
	timeout   time.Duration
	now       func() time.Time

	catalog *catalog
	locks   *keyLocks
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, metrics *Metrics, cfg Config) *Service {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = inventory.DefaultLowStockLimit
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = defaultAdapterTimeout
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		threshold: cfg.LowStockThreshold,
		timeout:   cfg.AdapterTimeout,
		now:       time.Now,
		catalog:   newCatalog(),
		locks:     newKeyLocks(),
	}
}

func (s *Service) ListProducts(ctx context.Context, page, pageSize int) ([]inventory.Product, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total := s.catalog.page(page, pageSize)
	s.logger.DebugContext(ctx, "listed products", "total", total, "page", page, "page_size", pageSize)
	return items, total
}

// SearchProducts matches query case-insensitively against name and
// description. An empty query matches every product.
func (s *Service) SearchProducts(ctx context.Context, query string) []inventory.Product {
	needle := strings.ToLower(query)
	items := s.catalog.filter(func(p inventory.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	})
	s.logger.DebugContext(ctx, "searched products", "query", query, "results", len(items))
	return items
}

func (s *Service) GetProduct(ctx context.Context, id string) (inventory.Product, bool) {
	p, ok := s.catalog.get(id)
	if !ok {
		s.logger.DebugContext(ctx, "product not found", "product_id", id)
	}
	return p, ok
}

// LowStockProducts returns every product whose quantity is at or below threshold.
func (s *Service) LowStockProducts(ctx context.Context, threshold int) []inventory.Product {
	items := s.catalog.filter(func(p inventory.Product) bool {
		return p.Quantity <= threshold
	})
	s.logger.DebugContext(ctx, "listed low stock products", "threshold", threshold, "count", len(items))
	return items
}

func (s *Service) CreateProduct(ctx context.Context, in inventory.NewProduct) (inventory.Product, error) {
	if err := in.Validate(); err != nil {
		return inventory.Product{}, err
	}

	now := s.timestamp(time.Time{})
	product := inventory.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		SKU:         in.SKU,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// The product is visible from here on. A concurrent update of the new id may
	// publish product-updated before product-created goes out.
	if !s.catalog.insert(product) {
		return inventory.Product{}, fmt.Errorf("product id %q already taken", product.ID)
	}

	s.persist(ctx, product)
	s.publish(ctx, inventory.TopicProductCreated, product.ID, product)

	s.metrics.Created.Inc()
	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// UpdateProduct applies the set fields of upd. The boolean is false when no
// product has the given id.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, bool, error) {
	_, updated, ok, err := s.update(ctx, id, upd)
	return updated, ok, err
}

// UpdateInventory sets the quantity of a product. On top of the regular update
// event it raises an alert when the new level is low or out of stock, then
// announces the quantity change itself.
func (s *Service) UpdateInventory(ctx context.Context, id string, quantity int) (inventory.Product, bool, error) {
	if quantity < 0 {
		return inventory.Product{}, false, inventory.ErrInvalidQuantity
	}

	previous, updated, ok, err := s.update(ctx, id, inventory.ProductUpdate{Quantity: &quantity})
	if err != nil || !ok {
		return inventory.Product{}, ok, err
	}
	s.metrics.QuantityUpdates.Inc()

	s.checkStockLevel(ctx, updated)

	s.publish(ctx, inventory.TopicInventoryUpdated, id, inventory.InventoryUpdated{
		ProductID:   id,
		OldQuantity: previous.Quantity,
		NewQuantity: quantity,
		Product:     updated,
	})
	s.logger.InfoContext(ctx, "inventory updated",
		"product_id", id,
		"old_quantity", previous.Quantity,
		"new_quantity", quantity,
	)
	return updated, true, nil
}

// Restore loads every record the repository can list into the catalog,
// skipping ids already present. It returns the number of products loaded.
func (s *Service) Restore(ctx context.Context) (int, error) {
	l, ok := s.repo.(Lister)
	if !ok {
		return 0, nil
	}

	ctx, cancel := s.adapterContext(ctx)
	defer cancel()

	list, err := l.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored products: %w", err)
	}

	loaded := 0
	for _, p := range list {
		if s.catalog.insert(p) {
			loaded++
		}
	}
	s.logger.InfoContext(ctx, "catalog restored", "count", loaded)
	return loaded, nil
}

// Seed inserts products that are not in the catalog yet and persists them.
// No events are published for seeded products.
func (s *Service) Seed(ctx context.Context, products []inventory.Product) int {
	seeded := 0
	for _, p := range products {
		if !s.catalog.insert(p) {
			continue
		}
		s.persist(ctx, p)
		seeded++
	}
	s.logger.InfoContext(ctx, "sample product data initialized", "count", seeded)
	return seeded
}

func (s *Service) Len() int {
	return s.catalog.len()
}

// update performs the read-modify-write of one product under its key lock and
// returns the product as it was before and after the change. Persistence and
// the product-updated event happen after the lock is released.
func (s *Service) update(ctx context.Context, id string, upd inventory.ProductUpdate) (inventory.Product, inventory.Product, bool, error) {
	if err := upd.Validate(); err != nil {
		return inventory.Product{}, inventory.Product{}, false, err
	}

	unlock := s.locks.lock(id)
	previous, ok := s.catalog.get(id)
	if !ok {
		unlock()
		s.logger.InfoContext(ctx, "product not found for update", "product_id", id)
		return inventory.Product{}, inventory.Product{}, false, nil
	}
	updated := previous
	upd.Apply(&updated)
	updated.UpdatedAt = s.timestamp(previous.UpdatedAt)
	s.catalog.replace(updated)
	unlock()

	s.persist(ctx, updated)
	s.publish(ctx, inventory.TopicProductUpdated, id, updated)

	s.metrics.Updated.Inc()
	s.logger.InfoContext(ctx, "product updated", "product_id", id)
	return previous, updated, true, nil
}

func (s *Service) checkStockLevel(ctx context.Context, p inventory.Product) {
	level := inventory.Classify(p.Quantity, s.threshold)
	if !level.NeedsAlert() {
		return
	}

	s.publish(ctx, inventory.TopicInventoryAlert, p.ID, inventory.InventoryAlert{
		ProductID:       p.ID,
		ProductName:     p.Name,
		CurrentQuantity: p.Quantity,
		StockLevel:      level,
		Threshold:       s.threshold,
		Timestamp:       s.now().UTC(),
	})
	s.metrics.Alerts.WithLabelValues(string(level)).Inc()
	s.logger.InfoContext(ctx, "inventory alert raised",
		"product_id", p.ID,
		"stock_level", string(level),
		"quantity", p.Quantity,
	)
}

func (s *Service) persist(ctx context.Context, p inventory.Product) {
	ctx, cancel := s.adapterContext(ctx)
	defer cancel()

	if err := s.repo.Put(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "persist product failed",
			"product_id", p.ID,
			"error", err,
		)
	}
}

func (s *Service) publish(ctx context.Context, topic, key string, payload any) {
	ctx, cancel := s.adapterContext(ctx)
	defer cancel()

	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		s.metrics.PublishFailures.WithLabelValues(topic).Inc()
		s.logger.WarnContext(ctx, "publish event failed",
			"topic", topic,
			"product_id", key,
			"error", err,
		)
	}
}

// adapterContext bounds one adapter call. It is detached from the caller's
// cancellation so a dropped request does not abort a write half way.
func (s *Service) adapterContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

// timestamp returns the current UTC time at microsecond precision, moved past
// prev when the clock has not advanced beyond it.
func (s *Service) timestamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
