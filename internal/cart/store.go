// Package cart holds the per-session shopping cart. Every mutation is written
// through to durable storage before it becomes visible in memory.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	"github.com/google/uuid"
)

// Storage is the durable key-value store the cart commits to.
type Storage interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type snapshot struct {
	Items     []models.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type Store struct {
	mu        sync.Mutex
	key       string
	storage   Storage
	ttl       time.Duration
	items     []models.CartItem
	totals    models.CartTotals
	updatedAt time.Time
}

// New returns an empty store committing under key.
func New(key string, storage Storage, ttl time.Duration) *Store {
	return &Store{
		key:     key,
		storage: storage,
		ttl:     ttl,
		totals:  pricing.Calculate(nil),
	}
}

// Rehydrate loads the cart saved under key. A missing entry yields an empty
// cart; an undecodable one is discarded, logged to logger, and the cart starts
// empty. A nil logger means slog.Default().
func Rehydrate(ctx context.Context, logger *slog.Logger, storage Storage, key string, ttl time.Duration) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := New(key, storage, ttl)

	var snap snapshot

	found, err := storage.Get(ctx, key, &snap)
	if err != nil {
		if !errors.Is(err, cache.ErrCorruptEntry) {
			return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
		}

		logger.Warn("Discarding corrupt cart snapshot", slog.String("key", key), slog.String("error", err.Error()))

		if delErr := storage.Delete(ctx, key); delErr != nil {
			logger.Warn("Failed to delete corrupt cart snapshot", slog.String("key", key), slog.String("error", delErr.Error()))
		}

		return store, nil
	}

	if !found {
		return store, nil
	}

	items := make([]models.CartItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		if item.Quantity < 1 || item.ProductID == uuid.Nil {
			continue
		}
		items = append(items, item)
	}

	store.items = items
	store.totals = pricing.Calculate(items)
	store.updatedAt = snap.UpdatedAt

	return store, nil
}

func (s *Store) Key() string {
	return s.key
}

// Items returns a copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

func (s *Store) Totals() models.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totals
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items) == 0
}

// Cart returns a detached view of the cart for the given session.
func (s *Store) Cart(sessionID string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := slices.Clone(s.items)
	if items == nil {
		items = []models.CartItem{}
	}

	return &models.Cart{
		SessionID:  sessionID,
		Items:      items,
		CartTotals: s.totals,
		UpdatedAt:  s.updatedAt,
	}
}

// GetItem looks up a line. The boolean is false when the line is absent.
func (s *Store) GetItem(productID uuid.UUID, variant string) (models.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID, variant); i >= 0 {
		return s.items[i], true
	}

	return models.CartItem{}, false
}

// AddToCart merges into the (product, variant) line or appends a new one.
// The resulting quantity is silently capped at product.Stock.
func (s *Store) AddToCart(ctx context.Context, product *models.Product, quantity int, variant string) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Stock <= 0 {
		return nil
	}

	next := slices.Clone(s.items)

	if i := s.indexOf(product.ID, variant); i >= 0 {
		line := next[i]
		line.Stock = product.Stock
		line.Quantity = min(line.Quantity+quantity, product.Stock)
		next[i] = line
	} else {
		next = append(next, newItem(product, min(quantity, product.Stock), variant))
	}

	return s.commit(ctx, next)
}

// RemoveFromCart deletes the line; absent lines are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, productID uuid.UUID, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, productID, variant)
}

// UpdateQuantity sets the quantity directly; quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.remove(ctx, productID, variant)
	}

	i := s.indexOf(productID, variant)
	if i < 0 {
		return nil
	}

	next := slices.Clone(s.items)
	next[i].Quantity = min(quantity, next[i].Stock)

	if next[i].Quantity == s.items[i].Quantity {
		return nil
	}

	return s.commit(ctx, next)
}

func (s *Store) IncrementQuantity(ctx context.Context, productID uuid.UUID, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID, variant)
	if i < 0 || s.items[i].Quantity >= s.items[i].Stock {
		return nil
	}

	next := slices.Clone(s.items)
	next[i].Quantity++

	return s.commit(ctx, next)
}

func (s *Store) DecrementQuantity(ctx context.Context, productID uuid.UUID, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID, variant)
	if i < 0 || s.items[i].Quantity <= 1 {
		return nil
	}

	next := slices.Clone(s.items)
	next[i].Quantity--

	return s.commit(ctx, next)
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []models.CartItem{})
}

func (s *Store) remove(ctx context.Context, productID uuid.UUID, variant string) error {
	i := s.indexOf(productID, variant)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.items), i, i+1)

	return s.commit(ctx, next)
}

// commit persists next and swaps it in only once the write succeeded.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []models.CartItem) error {
	now := time.Now().UTC()

	if err := s.storage.Set(ctx, s.key, snapshot{Items: next, UpdatedAt: now}, s.ttl); err != nil {
		return fmt.Errorf("failed to persist cart %s: %w", s.key, err)
	}

	s.items = next
	s.totals = pricing.Calculate(next)
	s.updatedAt = now

	return nil
}

func (s *Store) indexOf(productID uuid.UUID, variant string) int {
	return slices.IndexFunc(s.items, func(item models.CartItem) bool {
		return item.Matches(productID, variant)
	})
}

func newItem(product *models.Product, quantity int, variant string) models.CartItem {
	return models.CartItem{
		ProductID:       product.ID,
		Name:            product.DisplayName(),
		Slug:            product.Slug,
		Image:           product.PrimaryImage(),
		Images:          slices.Clone(product.Images),
		UnitPrice:       product.Price,
		OriginalPrice:   product.OriginalPrice,
		Discount:        product.Discount,
		AdvancePayment:  product.AdvancePayment,
		Stock:           product.Stock,
		Quantity:        quantity,
		SelectedVariant: variant,
	}
}
