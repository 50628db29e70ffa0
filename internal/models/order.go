package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is frozen at creation time and never recomputed from live products.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"productId"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int             `json:"quantity"`
	Images          []string        `json:"images"`
	SelectedVariant string          `json:"selectedVariant,omitempty"`
}

type Order struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          string          `json:"orderId"`
	Name             string          `json:"name"`
	Mobile           string          `json:"mobile"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	IsInsideDhaka    bool            `json:"isInsideDhaka"`
	PaymentType      PaymentType     `json:"paymentType"`
	TransactionID    string          `json:"transactionId"`
	Items            []OrderItem     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryCharge   decimal.Decimal `json:"deliveryCharge"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PayNowAmount     decimal.Decimal `json:"payNowAmount"`
	PayToRiderAmount decimal.Decimal `json:"payToRiderAmount"`
	Status           OrderStatus     `json:"status"`
	SessionID        string          `json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CreateOrderRequest is the checkout payload handed to the order builder.
type CreateOrderRequest struct {
	Name             string          `json:"name" validate:"required"`
	Mobile           string          `json:"mobile" validate:"required,numeric,min=10,max=14"`
	Address          string          `json:"address" validate:"required"`
	City             string          `json:"city" validate:"required"`
	PaymentType      PaymentType     `json:"paymentType" validate:"required,oneof=full partial"`
	TransactionID    string          `json:"transactionId" validate:"required"`
	DeliveryCharge   decimal.Decimal `json:"deliveryCharge"`
	PayNowAmount     decimal.Decimal `json:"payNowAmount"`
	PayToRiderAmount decimal.Decimal `json:"payToRiderAmount"`
	Items            []CartItem      `json:"items" validate:"required,min=1,dive"`
	// SessionID is the shopper session that owns the order; empty for
	// orders created outside checkout.
	SessionID string `json:"-"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

type OrderFilter struct {
	Status   OrderStatus
	Page     int
	PageSize int
}
