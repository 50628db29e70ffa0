package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ProductService interface {
	GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
}

type productService struct {
	repo     repository.ProductRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewProductService(repo repository.ProductRepository, cache cache.Cache, cacheTTL time.Duration) ProductService {
	return &productService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// GetProduct resolves a UUID by id and anything else by slug.
func (s *productService) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.GetProductByID(ctx, id)
	}

	return s.cached(ctx, idOrSlug, func() (*models.Product, error) {
		return s.repo.GetProductBySlug(ctx, idOrSlug)
	})
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.cached(ctx, id.String(), func() (*models.Product, error) {
		return s.repo.GetProductByID(ctx, id)
	})
}

// cached reads through the product cache. Cache failures only cost a database hit.
func (s *productService) cached(ctx context.Context, lookup string, load func() (*models.Product, error)) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.ProductKeyPrefix, lookup)

	var product models.Product

	found, err := s.cache.Get(ctx, key, &product)
	if err != nil {
		logger.Warn("Product cache read failed", slog.String("key", key), slog.String("error", err.Error()))

		if errors.Is(err, cache.ErrCorruptEntry) {
			_ = s.cache.Delete(ctx, key)
		}
	}

	if found {
		logger.Debug("Product cache hit", slog.String("key", key))
		return &product, nil
	}

	loaded, err := load()
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, loaded, s.cacheTTL); err != nil {
		logger.Warn("Product cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return loaded, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = DefaultPageSize
	}

	return page, min(size, MaxPageSize)
}
