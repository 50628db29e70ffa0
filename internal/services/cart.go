package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/cart"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	GetItem(ctx context.Context, sessionID string, productID uuid.UUID, variant string) (*models.CartItem, error)
	AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error)
	IncrementItem(ctx context.Context, sessionID string, req *models.ItemRefRequest) (*models.Cart, error)
	DecrementItem(ctx context.Context, sessionID string, req *models.ItemRefRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, variant string) (*models.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*models.Cart, error)
	Store(ctx context.Context, sessionID string) (*cart.Store, error)
}

type cartService struct {
	products ProductService
	storage  cart.Storage
	ttl      time.Duration
}

func NewCartService(products ProductService, storage cart.Storage, ttl time.Duration) CartService {
	return &cartService{products: products, storage: storage, ttl: ttl}
}

// Store rehydrates the session's cart from durable storage.
func (s *cartService) Store(ctx context.Context, sessionID string) (*cart.Store, error) {
	store, err := cart.Rehydrate(ctx, middleware.LoggerFromContext(ctx), s.storage, cache.Key(cache.CartKeyPrefix, sessionID), s.ttl)
	if err != nil {
		return nil, appErrors.StorageError("Cart storage is unavailable").WithError(err)
	}

	return store, nil
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return store.Cart(sessionID), nil
}

func (s *cartService) GetItem(ctx context.Context, sessionID string, productID uuid.UUID, variant string) (*models.CartItem, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, ok := store.GetItem(productID, variant)
	if !ok {
		return nil, appErrors.NotFoundError("Item not in cart")
	}

	return &item, nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, req *models.AddItemRequest) (*models.Cart, error) {
	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := checkVariant(product, req.Variant); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, "add", func(store *cart.Store) error {
		return store.AddToCart(ctx, product, req.Quantity, req.Variant)
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, "update", func(store *cart.Store) error {
		return store.UpdateQuantity(ctx, req.ProductID, req.Quantity, req.Variant)
	})
}

func (s *cartService) IncrementItem(ctx context.Context, sessionID string, req *models.ItemRefRequest) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, "increment", func(store *cart.Store) error {
		return store.IncrementQuantity(ctx, req.ProductID, req.Variant)
	})
}

func (s *cartService) DecrementItem(ctx context.Context, sessionID string, req *models.ItemRefRequest) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, "decrement", func(store *cart.Store) error {
		return store.DecrementQuantity(ctx, req.ProductID, req.Variant)
	})
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, variant string) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, "remove", func(store *cart.Store) error {
		return store.RemoveFromCart(ctx, productID, variant)
	})
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.mutate(ctx, sessionID, "clear", func(store *cart.Store) error {
		return store.ClearCart(ctx)
	})
}

func (s *cartService) mutate(ctx context.Context, sessionID, op string, apply func(*cart.Store) error) (*models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx)

	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := apply(store); err != nil {
		logger.Error("Failed to commit cart mutation", slog.String("op", op), slog.String("error", err.Error()))
		return nil, appErrors.StorageError("Failed to save cart").WithError(err)
	}

	metrics.CartMutations.WithLabelValues(op).Inc()

	return store.Cart(sessionID), nil
}

// checkVariant accepts an empty variant only for products without variants.
func checkVariant(product *models.Product, variant string) error {
	variants := product.Variants()

	switch {
	case len(variants) == 0 && variant == "":
		return nil
	case len(variants) == 0:
		return appErrors.ValidationError("Product has no variants").WithDetail(fmt.Sprintf("variant %q is not offered", variant))
	case variant == "":
		return appErrors.ValidationError("A variant must be selected").WithDetail("one of: " + strings.Join(variants, ", "))
	case !slices.Contains(variants, variant):
		return appErrors.ValidationError("Unknown variant").WithDetail("one of: " + strings.Join(variants, ", "))
	}

	return nil
}
