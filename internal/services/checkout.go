package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// OrderPlacer persists a checkout payload as an order.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
}

type CheckoutService interface {
	Quote(ctx context.Context, sessionID string, req *models.QuoteRequest) (*models.CheckoutQuote, error)
	SaveForm(ctx context.Context, sessionID string, form *models.CheckoutForm) error
	GetForm(ctx context.Context, sessionID string) (*models.CheckoutForm, error)
	PlaceOrder(ctx context.Context, sessionID string, form *models.CheckoutForm) (*models.PlaceOrderResponse, error)
}

type CheckoutConfig struct {
	Delivery       pricing.DeliveryRule
	DefaultAdvance decimal.Decimal
	SubmitTimeout  time.Duration
	FormTTL        time.Duration
}

type checkoutService struct {
	carts     CartService
	forms     cache.Cache
	placer    OrderPlacer
	limiter   repository.RateLimitRepository
	validator *validator.Validate
	policy    *bluemonday.Policy
	cfg       CheckoutConfig
}

// NewCheckoutService wires the orchestrator. limiter may be nil to disable
// the per-session attempt limit.
func NewCheckoutService(carts CartService, forms cache.Cache, placer OrderPlacer, limiter repository.RateLimitRepository, validate *validator.Validate, cfg CheckoutConfig) CheckoutService {
	return &checkoutService{
		carts:     carts,
		forms:     forms,
		placer:    placer,
		limiter:   limiter,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
		cfg:       cfg,
	}
}

func (s *checkoutService) Quote(ctx context.Context, sessionID string, req *models.QuoteRequest) (*models.CheckoutQuote, error) {
	store, err := s.carts.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.quote(store.Items(), req.City, req.PaymentType)
}

// quote is recomputed from the live cart on every call.
func (s *checkoutService) quote(items []models.CartItem, city string, paymentType models.PaymentType) (*models.CheckoutQuote, error) {
	totals := pricing.Calculate(items)
	delivery := s.cfg.Delivery.Charge(city)
	advance := pricing.AdvanceFor(items, s.cfg.DefaultAdvance)

	split, err := pricing.Split(totals.TotalPrice, delivery, advance, paymentType)
	if err != nil {
		return nil, appErrors.AddValidationError("paymentType", "must be one of full, partial").WithError(err)
	}

	return &models.CheckoutQuote{
		City:             city,
		PaymentType:      paymentType,
		IsInsideDhaka:    s.cfg.Delivery.IsHomeCity(city),
		Totals:           totals,
		Subtotal:         totals.TotalPrice,
		DeliveryCharge:   delivery,
		AdvancePayment:   advance,
		PayNowAmount:     split.PayNowAmount,
		PayToRiderAmount: split.PayToRiderAmount,
		TotalAmount:      split.TotalAmount,
	}, nil
}

func (s *checkoutService) SaveForm(ctx context.Context, sessionID string, form *models.CheckoutForm) error {
	key := cache.Key(cache.CheckoutFormKeyPrefix, sessionID)

	if err := s.forms.Set(ctx, key, s.sanitize(form), s.cfg.FormTTL); err != nil {
		return appErrors.StorageError("Failed to save checkout form").WithError(err)
	}

	return nil
}

// GetForm never fails on missing or corrupt state; it starts a fresh form.
func (s *checkoutService) GetForm(ctx context.Context, sessionID string) (*models.CheckoutForm, error) {
	key := cache.Key(cache.CheckoutFormKeyPrefix, sessionID)
	form := &models.CheckoutForm{}

	found, err := s.forms.Get(ctx, key, form)
	if err != nil {
		if !errors.Is(err, cache.ErrCorruptEntry) {
			return nil, appErrors.StorageError("Checkout form storage is unavailable").WithError(err)
		}

		logger := middleware.LoggerFromContext(ctx)
		logger.Warn("Discarding corrupt checkout form", slog.String("key", key))

		if delErr := s.forms.Delete(ctx, key); delErr != nil {
			logger.Warn("Failed to delete corrupt checkout form", slog.String("key", key), slog.String("error", delErr.Error()))
		}
	}

	if !found || err != nil {
		form = &models.CheckoutForm{}
	}

	if !form.PaymentType.Valid() {
		form.PaymentType = models.PaymentTypePartial
	}

	return form, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, sessionID string, form *models.CheckoutForm) (*models.PlaceOrderResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	clean := s.sanitize(form)

	if err := s.forms.Set(ctx, cache.Key(cache.CheckoutFormKeyPrefix, sessionID), clean, s.cfg.FormTTL); err != nil {
		logger.Warn("Failed to save checkout form", slog.String("error", err.Error()))
	}

	if err := s.validator.Struct(clean); err != nil {
		metrics.CheckoutFailures.WithLabelValues("validation").Inc()

		var detail string

		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			detail = describeFields(fieldErrs)
		}

		return nil, appErrors.ValidationError("Invalid checkout form").WithDetail(detail).WithError(err)
	}

	store, err := s.carts.Store(ctx, sessionID)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("storage").Inc()
		return nil, err
	}

	items := store.Items()
	if len(items) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, appErrors.BadRequestError("Cart is empty")
	}

	quote, err := s.quote(items, clean.City, clean.PaymentType)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	// only submittable attempts count against the limit
	if err := s.checkRate(ctx, sessionID); err != nil {
		metrics.CheckoutFailures.WithLabelValues("rate_limited").Inc()
		return nil, err
	}

	req := &models.CreateOrderRequest{
		Name:             clean.Name,
		Mobile:           clean.Mobile,
		Address:          clean.Address,
		City:             clean.City,
		PaymentType:      clean.PaymentType,
		TransactionID:    clean.TransactionID,
		DeliveryCharge:   quote.DeliveryCharge,
		PayNowAmount:     quote.PayNowAmount,
		PayToRiderAmount: quote.PayToRiderAmount,
		Items:            items,
		SessionID:        sessionID,
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	order, err := s.placer.CreateOrder(submitCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(submitCtx.Err(), context.DeadlineExceeded) {
			metrics.CheckoutFailures.WithLabelValues("timeout").Inc()
			logger.Error("Order submission timed out", slog.Duration("timeout", s.cfg.SubmitTimeout))

			if appErr, ok := appErrors.IsAppError(err); ok && appErr.Code == appErrors.ErrCodeTimeout {
				return nil, appErr
			}

			return nil, appErrors.TimeoutError("Order submission timed out").WithError(err)
		}

		metrics.CheckoutFailures.WithLabelValues("submit").Inc()
		logger.Error("Order submission failed", slog.String("error", err.Error()))

		return nil, err
	}

	if err := store.ClearCart(ctx); err != nil {
		logger.Error("Failed to clear cart after order", slog.String("orderId", order.OrderID), slog.String("error", err.Error()))
	}

	logger.Info("Order placed", slog.String("orderId", order.OrderID))

	return &models.PlaceOrderResponse{
		OrderID:         order.OrderID,
		ConfirmationURL: "/api/v1/orders/" + order.OrderID,
		Order:           order,
	}, nil
}

// checkRate fails open: a limiter outage must not block checkout.
func (s *checkoutService) checkRate(ctx context.Context, sessionID string) error {
	if s.limiter == nil {
		return nil
	}

	allowed, _, retryAfter, err := s.limiter.CheckCheckoutRateLimit(ctx, sessionID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Checkout rate limit unavailable", slog.String("error", err.Error()))
		return nil
	}

	if !allowed {
		return appErrors.TooManyRequestsError("Too many checkout attempts").
			WithDetail(fmt.Sprintf("retry after %d seconds", retryAfter))
	}

	return nil
}

func (s *checkoutService) sanitize(form *models.CheckoutForm) *models.CheckoutForm {
	clean := func(v string) string {
		return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
	}

	return &models.CheckoutForm{
		Name:          clean(form.Name),
		Mobile:        clean(form.Mobile),
		Address:       clean(form.Address),
		City:          clean(form.City),
		PaymentType:   models.PaymentType(clean(string(form.PaymentType))),
		TransactionID: clean(form.TransactionID),
	}
}

func describeFields(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(fields, "; ")
}
