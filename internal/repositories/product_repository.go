package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
}

type productRepository struct {
	DB      *sql.DB
	timeout time.Duration
}

func NewProductRepo(db *sql.DB, timeout time.Duration) ProductRepository {
	return &productRepository{DB: db, timeout: timeout}
}

const productColumns = `p.id, p.category_id, p.slug, p.name, p.short_name, p.description,
	p.price, p.original_price, p.discount, p.advance_payment, p.stock,
	p.specifications, p.images, p.is_featured, p.is_popular, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	var specs, images []byte

	err := row.Scan(&product.ID, &product.CategoryID, &product.Slug, &product.Name, &product.ShortName, &product.Description,
		&product.Price, &product.OriginalPrice, &product.Discount, &product.AdvancePayment, &product.Stock,
		&specs, &images, &product.IsFeatured, &product.IsPopular, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &product.Specifications); err != nil {
			return nil, fmt.Errorf("failed to unmarshal specifications of product %s: %w", product.ID, err)
		}
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images of product %s: %w", product.ID, err)
		}
	}

	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		return nil, fmt.Errorf("querying product by slug: %w", err)
	}

	return product, nil
}

func productFilterClause(filter models.ProductFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", len(args)))
	}

	if filter.Popular != nil {
		args = append(args, *filter.Popular)
		conditions = append(conditions, fmt.Sprintf("p.is_popular = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	from := ` FROM products p LEFT JOIN categories c ON p.category_id = c.id`
	where, args := productFilterClause(filter)

	var total int

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*)`+from+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)

	query := `SELECT ` + productColumns + from + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}

	return products, total, nil
}
