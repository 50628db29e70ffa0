package repository_test

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderColumns = []string{
		"id", "order_id", "name", "mobile", "address", "city", "is_inside_dhaka", "payment_type", "transaction_id",
		"subtotal", "delivery_charge", "total_amount", "pay_now_amount", "pay_to_rider_amount", "status", "session_id", "created_at", "updated_at",
	}
	orderItemColumns = []string{"id", "order_id", "product_id", "name", "unit_price", "quantity", "images", "selected_variant"}
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	repo := repository.NewOrderRepository(db, time.Second)
	require.NotNil(t, repo, "NewOrderRepository should return a non-nil repository")

	return repo, mock
}

func newTestOrder() *models.Order {
	return &models.Order{
		ID:               uuid.New(),
		OrderID:          "345678",
		Name:             "Rahim Uddin",
		Mobile:           "01712345678",
		Address:          "House 12, Road 5, Dhanmondi",
		City:             "Dhaka",
		IsInsideDhaka:    true,
		PaymentType:      models.PaymentTypePartial,
		TransactionID:    "TXN123",
		Subtotal:         decimal.NewFromInt(1000),
		DeliveryCharge:   decimal.NewFromInt(60),
		TotalAmount:      decimal.NewFromInt(1060),
		PayNowAmount:     decimal.NewFromInt(100),
		PayToRiderAmount: decimal.NewFromInt(960),
		Status:           models.OrderStatusPending,
		SessionID:        "7f0c2c1e-3b1a-4c55-9d0e-2a6a3c5e9b10",
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Earbuds", UnitPrice: decimal.NewFromInt(400), Quantity: 2, Images: []string{"/img/e.jpg"}, SelectedVariant: "Black"},
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Cable", UnitPrice: decimal.NewFromInt(200), Quantity: 1, Images: []string{"/img/c.jpg"}},
		},
	}
}

func expectOrderInsert(mock sqlmock.Sqlmock, order *models.Order) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(order.ID, order.OrderID, order.Name, order.Mobile, order.Address, order.City, order.IsInsideDhaka,
			order.PaymentType, order.TransactionID, order.Subtotal, order.DeliveryCharge, order.TotalAmount,
			order.PayNowAmount, order.PayToRiderAmount, order.Status, order.SessionID)
}

func expectItemInsert(t *testing.T, mock sqlmock.Sqlmock, order *models.Order, i int) *sqlmock.ExpectedExec {
	t.Helper()

	item := order.Items[i]
	images, err := json.Marshal(item.Images)
	require.NoError(t, err)

	return mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(item.ID, order.ID, i, item.ProductID, item.Name, item.UnitPrice, item.Quantity, images, item.SelectedVariant)
}

func TestCreateOrder(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success - Order And Items Committed", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()

		mock.ExpectBegin()
		expectOrderInsert(mock, order).WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		expectItemInsert(t, mock, order, 0).WillReturnResult(sqlmock.NewResult(1, 1))
		expectItemInsert(t, mock, order, 1).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, order.CreatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Duplicate Order ID", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()

		mock.ExpectBegin()
		expectOrderInsert(mock, order).WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_id_key"})
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.ErrorIs(t, err, repository.ErrDuplicateOrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Item Insert Rolls Back", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()
		dbErr := errors.New("DB error on item insert")

		mock.ExpectBegin()
		expectOrderInsert(mock, order).WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		expectItemInsert(t, mock, order, 0).WillReturnResult(sqlmock.NewResult(1, 1))
		expectItemInsert(t, mock, order, 1).WillReturnError(dbErr)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to insert an order item")
		assert.NotErrorIs(t, err, repository.ErrDuplicateOrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Begin Error", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		dbErr := errors.New("pool exhausted")

		mock.ExpectBegin().WillReturnError(dbErr)

		err := repo.CreateOrder(ctx, newTestOrder())

		require.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Commit Error", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()
		order.Items = order.Items[:1]
		dbErr := errors.New("commit failed")

		mock.ExpectBegin()
		expectOrderInsert(mock, order).WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		expectItemInsert(t, mock, order, 0).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(dbErr)

		err := repo.CreateOrder(ctx, order)

		require.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to commit order")
	})
}

func orderRow(rows *sqlmock.Rows, order *models.Order, now time.Time) *sqlmock.Rows {
	return rows.AddRow(order.ID.String(), order.OrderID, order.Name, order.Mobile, order.Address, order.City, order.IsInsideDhaka,
		string(order.PaymentType), order.TransactionID, order.Subtotal.String(), order.DeliveryCharge.String(), order.TotalAmount.String(),
		order.PayNowAmount.String(), order.PayToRiderAmount.String(), string(order.Status), order.SessionID, now, now)
}

func TestGetOrderByOrderID(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success - With Items", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE order_id = $1`)).
			WithArgs(order.OrderID).
			WillReturnRows(orderRow(sqlmock.NewRows(orderColumns), order, now))

		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
			WithArgs(pq.Array([]string{order.ID.String()})).
			WillReturnRows(sqlmock.NewRows(orderItemColumns).
				AddRow(order.Items[0].ID.String(), order.ID.String(), order.Items[0].ProductID.String(), "Earbuds", "400", 2, []byte(`["/img/e.jpg"]`), "Black").
				AddRow(order.Items[1].ID.String(), order.ID.String(), order.Items[1].ProductID.String(), "Cable", "200", 1, []byte(`["/img/c.jpg"]`), ""))

		// Act
		got, err := repo.GetOrderByOrderID(ctx, order.OrderID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, models.PaymentTypePartial, got.PaymentType)
		assert.Equal(t, order.SessionID, got.SessionID)
		assert.True(t, order.PayToRiderAmount.Equal(got.PayToRiderAmount))
		require.Len(t, got.Items, 2)
		assert.Equal(t, "Black", got.Items[0].SelectedVariant)
		assert.Equal(t, []string{"/img/c.jpg"}, got.Items[1].Images)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE order_id = $1`)).
			WithArgs("000000").
			WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err := repo.GetOrderByOrderID(ctx, "000000")

		require.ErrorIs(t, err, repository.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Query Timeout", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		repo := repository.NewOrderRepository(db, 10*time.Millisecond)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE order_id = $1`)).
			WithArgs("345678").
			WillDelayFor(time.Second).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err = repo.GetOrderByOrderID(ctx, "345678")

		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to get the order")
		assert.NotErrorIs(t, err, repository.ErrOrderNotFound)
	})

	t.Run("Failure - Items Query Error", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := newTestOrder()
		dbErr := errors.New("items unavailable")

		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE order_id = $1`)).
			WithArgs(order.OrderID).
			WillReturnRows(orderRow(sqlmock.NewRows(orderColumns), order, now))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).WillReturnError(dbErr)

		_, err := repo.GetOrderByOrderID(ctx, order.OrderID)

		require.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListOrders(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	t.Run("Success - Status Filter", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		first, second := newTestOrder(), newTestOrder()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders WHERE status = $1`)).
			WithArgs(models.OrderStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		rows := sqlmock.NewRows(orderColumns)
		orderRow(rows, first, now)
		orderRow(rows, second, now)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
			WithArgs(models.OrderStatusPending, 10, 10).
			WillReturnRows(rows)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
			WithArgs(pq.Array([]string{first.ID.String(), second.ID.String()})).
			WillReturnRows(sqlmock.NewRows(orderItemColumns).
				AddRow(uuid.NewString(), second.ID.String(), uuid.NewString(), "Cable", "200", 1, []byte(`[]`), ""))

		// Act
		orders, total, err := repo.ListOrders(ctx, models.OrderFilter{Status: models.OrderStatusPending, Page: 2, PageSize: 10})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, orders, 2)
		assert.Empty(t, orders[0].Items)
		assert.Len(t, orders[1].Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Empty Page Skips Items Query", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $1 OFFSET $2`)).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(orderColumns))

		orders, total, err := repo.ListOrders(ctx, models.OrderFilter{Page: 1, PageSize: 10})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := t.Context()
	expectedSQL := regexp.QuoteMeta(`UPDATE orders SET status = $1, updated_at = NOW()`)

	t.Run("Success", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)
		order := &models.Order{OrderID: "345678", Status: models.OrderStatusShipped}
		now := time.Now()

		mock.ExpectQuery(expectedSQL).
			WithArgs(models.OrderStatusShipped, "345678").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		err := repo.UpdateOrderStatus(ctx, order)

		require.NoError(t, err)
		assert.WithinDuration(t, now, order.UpdatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		repo, mock := setupOrderRepoTest(t)

		mock.ExpectQuery(expectedSQL).
			WithArgs(models.OrderStatusShipped, "missing").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := repo.UpdateOrderStatus(ctx, &models.Order{OrderID: "missing", Status: models.OrderStatusShipped})

		require.ErrorIs(t, err, repository.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
