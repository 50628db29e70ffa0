package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderIDStrategy string

const (
	// OrderIDFromMobile keeps the storefront's historical short ids: the
	// last six digits of the customer's mobile number.
	OrderIDFromMobile OrderIDStrategy = "mobile"
	// OrderIDRandom derives eight upper-case hex characters from a UUID.
	OrderIDRandom OrderIDStrategy = "random"

	orderIDLength  = 6
	notifyTimeout  = 10 * time.Second
	randomIDLength = 8
)

type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetSessionOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type orderService struct {
	repo       repository.OrderRepository
	notifier   OrderNotifier
	validator  *validator.Validate
	delivery   pricing.DeliveryRule
	idStrategy OrderIDStrategy
}

// NewOrderService builds the order record builder. notifier may be nil.
func NewOrderService(repo repository.OrderRepository, notifier OrderNotifier, validate *validator.Validate, delivery pricing.DeliveryRule, idStrategy OrderIDStrategy) OrderService {
	if idStrategy == "" {
		idStrategy = OrderIDFromMobile
	}

	return &orderService{repo: repo, notifier: notifier, validator: validate, delivery: delivery, idStrategy: idStrategy}
}

func (s *orderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ValidationError("Invalid order payload").WithDetail(err.Error()).WithError(err)
	}

	for name, amount := range map[string]decimal.Decimal{
		"deliveryCharge":   req.DeliveryCharge,
		"payNowAmount":     req.PayNowAmount,
		"payToRiderAmount": req.PayToRiderAmount,
	} {
		if amount.IsNegative() {
			return nil, appErrors.AddValidationError(name, "must not be negative")
		}
	}

	orderID, err := s.orderID(req.Mobile)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero

	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, appErrors.AddValidationError("items.quantity", "must be at least 1")
		}

		if line.UnitPrice.IsNegative() {
			return nil, appErrors.AddValidationError("items.unitPrice", "must not be negative")
		}

		items = append(items, snapshotItem(line))

		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	total := subtotal.Add(req.DeliveryCharge)

	if !req.PayNowAmount.Add(req.PayToRiderAmount).Equal(total) {
		return nil, appErrors.ValidationError("Payment split does not match the order total").
			WithDetail(fmt.Sprintf("payNow %s + payToRider %s != total %s", req.PayNowAmount, req.PayToRiderAmount, total))
	}

	order := &models.Order{
		ID:               uuid.New(),
		OrderID:          orderID,
		Name:             req.Name,
		Mobile:           req.Mobile,
		Address:          req.Address,
		City:             req.City,
		IsInsideDhaka:    s.delivery.IsHomeCity(req.City),
		PaymentType:      req.PaymentType,
		TransactionID:    req.TransactionID,
		Items:            items,
		Subtotal:         subtotal,
		DeliveryCharge:   req.DeliveryCharge,
		TotalAmount:      total,
		PayNowAmount:     req.PayNowAmount,
		PayToRiderAmount: req.PayToRiderAmount,
		Status:           models.OrderStatusPending,
		SessionID:        req.SessionID,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateOrderID):
			logger.Warn("Duplicate order id", slog.String("orderId", orderID))
			return nil, appErrors.DuplicateEntryError("An order with this id already exists").WithError(err)
		case errors.Is(err, context.DeadlineExceeded):
			return nil, appErrors.TimeoutError("Order submission timed out").WithError(err)
		}

		logger.Error("Failed to persist order", slog.String("orderId", orderID), slog.String("error", err.Error()))

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.PaymentType)).Inc()

	logger.Info("Order created",
		slog.String("orderId", order.OrderID),
		slog.String("paymentType", string(order.PaymentType)),
		slog.String("total", order.TotalAmount.String()),
	)

	if s.notifier != nil {
		go s.notify(context.WithoutCancel(ctx), order)
	}

	return order, nil
}

// notify runs after the response path; failures are only logged.
func (s *orderService) notify(ctx context.Context, order *models.Order) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyNewOrder(ctx, order); err != nil {
		middleware.LoggerFromContext(ctx).Warn("New order notification failed",
			slog.String("orderId", order.OrderID), slog.String("error", err.Error()))
	}
}

func (s *orderService) orderID(mobile string) (string, error) {
	if s.idStrategy == OrderIDRandom {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		return strings.ToUpper(raw[:randomIDLength]), nil
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}

		return -1
	}, mobile)

	if len(digits) < orderIDLength {
		return "", appErrors.AddValidationError("mobile", "must contain at least 6 digits")
	}

	return digits[len(digits)-orderIDLength:], nil
}

// snapshotItem copies the cart line so later product edits never touch the
// order. Lines saved before images were captured fall back to the primary image.
func snapshotItem(line models.CartItem) models.OrderItem {
	images := slices.Clone(line.Images)
	if len(images) == 0 && line.Image != "" {
		images = []string{line.Image}
	}

	if images == nil {
		images = []string{}
	}

	return models.OrderItem{
		ID:              uuid.New(),
		ProductID:       line.ProductID,
		Name:            line.Name,
		UnitPrice:       line.UnitPrice,
		Quantity:        line.Quantity,
		Images:          images,
		SelectedVariant: line.SelectedVariant,
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.GetOrderByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

// GetSessionOrder returns the order only to the session that placed it.
// Any other caller sees not found, so short ids cannot be enumerated.
func (s *orderService) GetSessionOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.SessionID == "" || order.SessionID != sessionID {
		middleware.LoggerFromContext(ctx).Warn("Order requested by another session", slog.String("orderId", orderID))
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize)

	orders, total, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ValidationError("Invalid order status").WithDetail(err.Error()).WithError(err)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = req.Status

	if err := s.repo.UpdateOrderStatus(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", orderID), slog.String("status", string(order.Status)))

	return order, nil
}
