package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService service.CheckoutService, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, validator: validate}
}

func (h *CheckoutHandler) GetForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		form, err := h.checkoutService.GetForm(r.Context(), sessionID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, form)
	}
}

// SaveForm stores a partial form; it is not validated until the order is placed.
func (h *CheckoutHandler) SaveForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		var form models.CheckoutForm
		if err := utils.DecodeJSONBody(r, &form); err != nil {
			response.Error(w, errors.BadRequestError("Invalid request body").WithDetail(err.Error()))
			return
		}

		if err := h.checkoutService.SaveForm(r.Context(), sessionID, &form); err != nil {
			response.Error(w, err)
			return
		}

		saved, err := h.checkoutService.GetForm(r.Context(), sessionID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, saved)
	}
}

func (h *CheckoutHandler) Quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		var req models.QuoteRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		quote, err := h.checkoutService.Quote(r.Context(), sessionID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, quote)
	}
}

// PlaceOrder validates in the service so the form is saved even when invalid.
func (h *CheckoutHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		sessionID, ok := requireSession(w, r)
		if !ok {
			return
		}

		var form models.CheckoutForm
		if err := utils.DecodeJSONBody(r, &form); err != nil {
			logger.Warn("Invalid checkout input", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Invalid request body").WithDetail(err.Error()))

			return
		}

		result, err := h.checkoutService.PlaceOrder(r.Context(), sessionID, &form)
		if err != nil {
			logger.Warn("Checkout failed", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		logger.Info("Checkout completed", slog.String("orderId", result.OrderID))

		w.Header().Set("Location", result.ConfirmationURL)
		response.Success(w, http.StatusCreated, result)
	}
}
