package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCheckoutTest() (*mocks.CheckoutService, *handlers.CheckoutHandler, string) {
	mockCheckoutService := new(mocks.CheckoutService)
	return mockCheckoutService, handlers.NewCheckoutHandler(mockCheckoutService, validator.New()), uuid.NewString()
}

func TestPlaceOrderHandler(t *testing.T) {
	form := models.CheckoutForm{
		Name:          "Rahim Uddin",
		Mobile:        "01712345678",
		Address:       "House 12, Road 5",
		City:          "Dhaka",
		PaymentType:   models.PaymentTypeFull,
		TransactionID: "TXN8842",
	}
	body, _ := json.Marshal(form)

	t.Run("Success - Created with Location", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()
		result := &models.PlaceOrderResponse{
			OrderID:         "345678",
			ConfirmationURL: "/api/v1/orders/345678",
			Order:           &models.Order{OrderID: "345678"},
		}

		mockService.On("PlaceOrder", mock.Anything, sessionID, &form).Return(result, nil).Once()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.PlaceOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "/api/v1/orders/345678", rr.Header().Get("Location"))

		var got models.PlaceOrderResponse
		decodeEnvelope(t, rr, &got)
		assert.Equal(t, "345678", got.OrderID)
		mockService.AssertExpectations(t)
	})

	t.Run("Failure - Validation error from service", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()

		mockService.On("PlaceOrder", mock.Anything, sessionID, mock.AnythingOfType("*models.CheckoutForm")).
			Return(nil, appErrors.ValidationError("Invalid checkout form").WithDetail("Name failed on required")).Once()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(`{"name":""}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.PlaceOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		env := decodeEnvelope(t, rr, nil)
		assert.Equal(t, appErrors.ErrCodeValidation, env.Error.Code)
		assert.Equal(t, []string{"Name failed on required"}, env.Error.Details)
	})

	t.Run("Failure - Rate limited", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()

		mockService.On("PlaceOrder", mock.Anything, sessionID, mock.AnythingOfType("*models.CheckoutForm")).
			Return(nil, appErrors.TooManyRequestsError("Too many checkout attempts")).Once()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.PlaceOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})

	t.Run("Failure - Empty body", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.PlaceOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQuoteHandler(t *testing.T) {
	t.Run("Success - Quote", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()
		quoteReq := &models.QuoteRequest{City: "Sylhet", PaymentType: models.PaymentTypePartial}
		body, _ := json.Marshal(quoteReq)

		mockService.On("Quote", mock.Anything, sessionID, quoteReq).Return(&models.CheckoutQuote{
			City:           "Sylhet",
			DeliveryCharge: decimal.NewFromInt(120),
			TotalAmount:    decimal.NewFromInt(570),
		}, nil).Once()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout/quote", bytes.NewReader(body), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Quote().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.CheckoutQuote
		decodeEnvelope(t, rr, &got)
		assert.Equal(t, "120", got.DeliveryCharge.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Failure - Unknown payment type", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()

		req := testutils.CreateSessionRequest(http.MethodPost, "/api/v1/checkout/quote",
			bytes.NewReader([]byte(`{"city":"Dhaka","paymentType":"later"}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Quote().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckoutFormHandlers(t *testing.T) {
	t.Run("Success - Get default form", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()

		mockService.On("GetForm", mock.Anything, sessionID).Return(&models.CheckoutForm{PaymentType: models.PaymentTypePartial}, nil).Once()

		req := testutils.CreateSessionRequest(http.MethodGet, "/api/v1/checkout/form", nil, sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.GetForm().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.CheckoutForm
		decodeEnvelope(t, rr, &got)
		assert.Equal(t, models.PaymentTypePartial, got.PaymentType)
	})

	t.Run("Success - Save partial form", func(t *testing.T) {
		// Arrange
		mockService, handler, sessionID := setupCheckoutTest()
		partial := &models.CheckoutForm{Name: "Rahim"}

		mockService.On("SaveForm", mock.Anything, sessionID, partial).Return(nil).Once()
		mockService.On("GetForm", mock.Anything, sessionID).Return(&models.CheckoutForm{Name: "Rahim", PaymentType: models.PaymentTypePartial}, nil).Once()

		req := testutils.CreateSessionRequest(http.MethodPut, "/api/v1/checkout/form", bytes.NewReader([]byte(`{"name":"Rahim"}`)), sessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.SaveForm().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})
}
