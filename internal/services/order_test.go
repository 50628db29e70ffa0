package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	servicemocks "github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Name:             "Rahim Uddin",
		Mobile:           "01712345678",
		Address:          "House 12, Road 5, Dhanmondi",
		City:             "dhaka",
		PaymentType:      models.PaymentTypePartial,
		TransactionID:    "TXN8842",
		DeliveryCharge:   decimal.NewFromInt(60),
		PayNowAmount:     decimal.NewFromInt(100),
		PayToRiderAmount: decimal.NewFromInt(860),
		Items: []models.CartItem{{
			ProductID:       uuid.New(),
			Name:            "USB Fan",
			Image:           "https://cdn.example.com/fan.jpg",
			UnitPrice:       decimal.NewFromInt(450),
			Quantity:        2,
			SelectedVariant: "Blue",
		}},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Snapshot, totals and mobile order id", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		req := newOrderRequest()

		mockRepo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.OrderID == "345678" && len(o.Items) == 1
		})).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "345678", order.OrderID)
		assert.True(t, order.IsInsideDhaka)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, "900", order.Subtotal.String())
		assert.Equal(t, "960", order.TotalAmount.String())
		assert.Equal(t, []string{"https://cdn.example.com/fan.jpg"}, order.Items[0].Images)
		assert.Equal(t, "Blue", order.Items[0].SelectedVariant)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Order items do not follow later cart changes", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		req := newOrderRequest()

		mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, req)
		require.NoError(t, err)

		req.Items[0].Name = "Renamed"
		req.Items[0].UnitPrice = decimal.NewFromInt(1)
		req.Items[0].Quantity = 9

		// Assert
		assert.Equal(t, "USB Fan", order.Items[0].Name)
		assert.Equal(t, "450", order.Items[0].UnitPrice.String())
		assert.Equal(t, 2, order.Items[0].Quantity)
	})

	t.Run("Success - All line images are captured", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		req := newOrderRequest()
		req.Items[0].Images = []string{"a.jpg", "b.jpg", "c.jpg"}

		mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, req)
		require.NoError(t, err)

		req.Items[0].Images[0] = "changed.jpg"

		// Assert
		assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, order.Items[0].Images)
	})

	t.Run("Success - Line without image list falls back to primary image", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		req := newOrderRequest()
		req.Items[0].Image = ""

		mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.NotNil(t, order.Items[0].Images)
		assert.Empty(t, order.Items[0].Images)
	})

	t.Run("Success - Random order id", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDRandom)

		mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, newOrderRequest())

		// Assert
		require.NoError(t, err)
		assert.Len(t, order.OrderID, 8)
		assert.Equal(t, strings.ToUpper(order.OrderID), order.OrderID)
	})

	t.Run("Success - Admin is notified", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		mockNotifier := new(servicemocks.OrderNotifier)
		orderService := service.NewOrderService(mockRepo, mockNotifier, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		notified := make(chan string, 1)

		mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		mockNotifier.On("NotifyNewOrder", mock.Anything, mock.AnythingOfType("*models.Order")).
			Run(func(args mock.Arguments) { notified <- args.Get(1).(*models.Order).OrderID }).
			Return(errors.New("sendgrid down")).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, newOrderRequest())

		// Assert
		require.NoError(t, err)

		select {
		case id := <-notified:
			assert.Equal(t, order.OrderID, id)
		case <-time.After(2 * time.Second):
			t.Fatal("notifier was not called")
		}
	})

	t.Run("Failure - Payment split does not add up", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
		req := newOrderRequest()
		req.PayToRiderAmount = decimal.NewFromInt(10)

		// Act
		order, err := orderService.CreateOrder(ctx, req)

		// Assert
		assert.Nil(t, order)
		requireAppError(t, err, appErrors.ErrCodeValidation)
		mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Invalid payloads", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.CreateOrderRequest)
		}{
			{"no items", func(r *models.CreateOrderRequest) { r.Items = nil }},
			{"zero quantity", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
			{"negative delivery", func(r *models.CreateOrderRequest) { r.DeliveryCharge = decimal.NewFromInt(-1) }},
			{"unknown payment type", func(r *models.CreateOrderRequest) { r.PaymentType = "later" }},
			{"missing transaction", func(r *models.CreateOrderRequest) { r.TransactionID = "" }},
			{"short mobile", func(r *models.CreateOrderRequest) { r.Mobile = "12345" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				mockRepo := new(mocks.OrderRepository)
				orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)
				req := newOrderRequest()
				tt.mutate(req)

				// Act
				order, err := orderService.CreateOrder(ctx, req)

				// Assert
				assert.Nil(t, order)
				requireAppError(t, err, appErrors.ErrCodeValidation)
				mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Failure - Repository errors", func(t *testing.T) {
		tests := []struct {
			name    string
			repoErr error
			code    string
		}{
			{"duplicate order id", fmt.Errorf("%w: 345678", repository.ErrDuplicateOrderID), appErrors.ErrCodeDuplicateEntry},
			{"deadline", context.DeadlineExceeded, appErrors.ErrCodeTimeout},
			{"database", errors.New("disk full"), appErrors.ErrCodeDatabaseError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				mockRepo := new(mocks.OrderRepository)
				orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), service.OrderIDFromMobile)

				mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(tt.repoErr).Once()

				// Act
				order, err := orderService.CreateOrder(ctx, newOrderRequest())

				// Assert
				assert.Nil(t, order)
				requireAppError(t, err, tt.code)
				mockRepo.AssertExpectations(t)
			})
		}
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Get Order", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")
		expected := &models.Order{OrderID: "345678"}

		mockRepo.On("GetOrderByOrderID", mock.Anything, "345678").Return(expected, nil).Once()

		// Act
		order, err := orderService.GetOrder(ctx, "345678")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, order)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

		mockRepo.On("GetOrderByOrderID", mock.Anything, "000000").Return(nil, repository.ErrOrderNotFound).Once()

		// Act
		order, err := orderService.GetOrder(ctx, "000000")

		// Assert
		assert.Nil(t, order)
		requireAppError(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestGetSessionOrder(t *testing.T) {
	ctx := context.Background()
	owner := "7f0c2c1e-3b1a-4c55-9d0e-2a6a3c5e9b10"

	tests := []struct {
		name      string
		sessionID string
		stored    string
		wantErr   bool
	}{
		{name: "Success - Owning session", sessionID: owner, stored: owner},
		{name: "Failure - Other session", sessionID: "b3d1f6c4-0a8e-4e3f-8c2d-5f7a9b1c2d3e", stored: owner, wantErr: true},
		{name: "Failure - Order without session", sessionID: owner, stored: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := new(mocks.OrderRepository)
			orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

			mockRepo.On("GetOrderByOrderID", mock.Anything, "345678").Return(&models.Order{OrderID: "345678", SessionID: tc.stored}, nil).Once()

			// Act
			order, err := orderService.GetSessionOrder(ctx, tc.sessionID, "345678")

			// Assert
			if tc.wantErr {
				assert.Nil(t, order)
				requireAppError(t, err, appErrors.ErrCodeNotFound)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "345678", order.OrderID)
		})
	}
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Defaults applied", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")
		filter := models.OrderFilter{Status: models.OrderStatusPending, Page: 1, PageSize: service.DefaultPageSize}

		mockRepo.On("ListOrders", mock.Anything, filter).Return([]*models.Order{{OrderID: "345678"}}, 1, nil).Once()

		// Act
		orders, total, err := orderService.ListOrders(ctx, models.OrderFilter{Status: models.OrderStatusPending})

		// Assert
		require.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, 1, total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

		mockRepo.On("ListOrders", mock.Anything, mock.AnythingOfType("models.OrderFilter")).Return(nil, 0, errors.New("boom")).Once()

		// Act
		_, _, err := orderService.ListOrders(ctx, models.OrderFilter{})

		// Assert
		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Status Updated", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

		mockRepo.On("GetOrderByOrderID", mock.Anything, "345678").Return(&models.Order{OrderID: "345678", Status: models.OrderStatusPending}, nil).Once()
		mockRepo.On("UpdateOrderStatus", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
			return o.Status == models.OrderStatusShipped
		})).Return(nil).Once()

		// Act
		order, err := orderService.UpdateOrderStatus(ctx, "345678", &models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Invalid status", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

		// Act
		order, err := orderService.UpdateOrderStatus(ctx, "345678", &models.UpdateOrderStatusRequest{Status: "lost"})

		// Assert
		assert.Nil(t, order)
		requireAppError(t, err, appErrors.ErrCodeValidation)
		mockRepo.AssertNotCalled(t, "GetOrderByOrderID", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Update fails", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OrderRepository)
		orderService := service.NewOrderService(mockRepo, nil, validator.New(), pricing.DefaultDeliveryRule(), "")

		mockRepo.On("GetOrderByOrderID", mock.Anything, "345678").Return(&models.Order{OrderID: "345678"}, nil).Once()
		mockRepo.On("UpdateOrderStatus", mock.Anything, mock.AnythingOfType("*models.Order")).Return(errors.New("boom")).Once()

		// Act
		_, err := orderService.UpdateOrderStatus(ctx, "345678", &models.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled})

		// Assert
		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}
