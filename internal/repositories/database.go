package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"
)

// DefaultQueryTimeout applies when database.QUERY_TIMEOUT is unset.
const DefaultQueryTimeout = 5 * time.Second

// withQueryTimeout bounds one repository call. A shorter caller deadline,
// such as the checkout submit timeout, still wins.
func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

type Repository struct {
	DB *sql.DB
}

// New opens a traced connection pool and builds the repositories on top of it.
func New(cfg *config.Config) (*Repository, ProductRepository, OrderRepository, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{DB: db}, NewProductRepo(db, cfg.Database.QueryTimeout), NewOrderRepository(db, cfg.Database.QueryTimeout), nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}
