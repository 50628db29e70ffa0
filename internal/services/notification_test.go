package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	sendgridmocks "github.com/aaravmahajanofficial/storefront/pkg/sendgrid/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newNotifiedOrder() *models.Order {
	return &models.Order{
		OrderID:          "345678",
		Name:             "<b>Rahim</b>",
		Mobile:           "01712345678",
		Address:          "House 12",
		City:             "Dhaka",
		PaymentType:      models.PaymentTypePartial,
		TransactionID:    "TXN8842",
		Items:            []models.OrderItem{{Name: "USB Fan", UnitPrice: decimal.NewFromInt(450), Quantity: 2, SelectedVariant: "Blue"}},
		Subtotal:         decimal.NewFromInt(900),
		DeliveryCharge:   decimal.NewFromInt(60),
		TotalAmount:      decimal.NewFromInt(960),
		PayNowAmount:     decimal.NewFromInt(100),
		PayToRiderAmount: decimal.NewFromInt(860),
	}
}

func TestNotifyNewOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Admin email sent", func(t *testing.T) {
		// Arrange
		mockEmail := new(sendgridmocks.EmailService)
		notifier := service.NewNotificationService(mockEmail, "admin@example.com")

		mockEmail.On("Send", mock.Anything, mock.MatchedBy(func(e *sendgrid.Email) bool {
			return e.To == "admin@example.com" &&
				e.Subject == "New order 345678 (partial payment)" &&
				strings.Contains(e.Content, "USB Fan x2 @ 450 [Blue]") &&
				!strings.Contains(e.HTMLContent, "<b>Rahim</b>")
		})).Return(nil).Once()

		// Act
		err := notifier.NotifyNewOrder(ctx, newNotifiedOrder())

		// Assert
		assert.NoError(t, err)
		mockEmail.AssertExpectations(t)
	})

	t.Run("Success - Disabled without admin address", func(t *testing.T) {
		// Arrange
		mockEmail := new(sendgridmocks.EmailService)
		notifier := service.NewNotificationService(mockEmail, "")

		// Act
		err := notifier.NotifyNewOrder(ctx, newNotifiedOrder())

		// Assert
		assert.NoError(t, err)
		mockEmail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Failure - SendGrid Error", func(t *testing.T) {
		// Arrange
		mockEmail := new(sendgridmocks.EmailService)
		notifier := service.NewNotificationService(mockEmail, "admin@example.com")

		mockEmail.On("Send", mock.Anything, mock.AnythingOfType("*sendgrid.Email")).Return(errors.New("status code: 401")).Once()

		// Act
		err := notifier.NotifyNewOrder(ctx, newNotifiedOrder())

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "345678")
		mockEmail.AssertExpectations(t)
	})
}
