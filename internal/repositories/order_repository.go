package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrderID = errors.New("order id already exists")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, order *models.Order) error
}

type orderRepository struct {
	DB      *sql.DB
	timeout time.Duration
}

// NewOrderRepository bounds every call by timeout; zero means DefaultQueryTimeout.
func NewOrderRepository(db *sql.DB, timeout time.Duration) OrderRepository {
	return &orderRepository{DB: db, timeout: timeout}
}

// CreateOrder writes the order and all of its lines in one transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (err error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO orders (id, order_id, name, mobile, address, city, is_inside_dhaka, payment_type, transaction_id,
			subtotal, delivery_charge, total_amount, pay_now_amount, pay_to_rider_amount, status, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.ID, order.OrderID, order.Name, order.Mobile, order.Address, order.City,
		order.IsInsideDhaka, order.PaymentType, order.TransactionID, order.Subtotal, order.DeliveryCharge, order.TotalAmount,
		order.PayNowAmount, order.PayToRiderAmount, order.Status, order.SessionID).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderID, order.OrderID)
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, line_no, product_id, name, unit_price, quantity, images, selected_variant, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	for i, item := range order.Items {
		images, marshalErr := json.Marshal(item.Images)
		if marshalErr != nil {
			err = fmt.Errorf("failed to marshal images: %w", marshalErr)
			return err
		}

		_, err = tx.ExecContext(dbCtx, itemQuery, item.ID, order.ID, i, item.ProductID, item.Name, item.UnitPrice,
			item.Quantity, images, item.SelectedVariant)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

const orderColumns = `id, order_id, name, mobile, address, city, is_inside_dhaka, payment_type, transaction_id,
	subtotal, delivery_charge, total_amount, pay_now_amount, pay_to_rider_amount, status, session_id, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	err := row.Scan(&order.ID, &order.OrderID, &order.Name, &order.Mobile, &order.Address, &order.City,
		&order.IsInsideDhaka, &order.PaymentType, &order.TransactionID, &order.Subtotal, &order.DeliveryCharge,
		&order.TotalAmount, &order.PayNowAmount, &order.PayToRiderAmount, &order.Status, &order.SessionID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	items, err := r.itemsFor(dbCtx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}

	order.Items = items[order.ID]

	return order, nil
}

// ListOrders returns a page of orders, newest first, with their lines.
func (r *orderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	where := ""
	args := []any{}

	if filter.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	ids := []uuid.UUID{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, total, nil
	}

	items, err := r.itemsFor(dbCtx, ids)
	if err != nil {
		return nil, 0, err
	}

	for _, order := range orders {
		order.Items = items[order.ID]
	}

	return orders, total, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = id.String()
	}

	query := `
		SELECT id, order_id, product_id, name, unit_price, quantity, images, selected_variant
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.OrderItem, len(orderIDs))

	for rows.Next() {
		var (
			item    models.OrderItem
			orderID uuid.UUID
			images  []byte
		)

		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &images, &item.SelectedVariant); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		if len(images) > 0 {
			if err := json.Unmarshal(images, &item.Images); err != nil {
				return nil, fmt.Errorf("failed to unmarshal order item images: %w", err)
			}
		}

		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus writes order.Status; only status and updated_at ever change after insert.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := withQueryTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE order_id = $2
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, order.Status, order.OrderID).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}

		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
