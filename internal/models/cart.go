package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem holds the product fields captured when the line was added.
// Stock is the snapshot used for clamping; ProductID is the live lookup key.
type CartItem struct {
	ProductID       uuid.UUID        `json:"productId"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug,omitempty"`
	Image           string           `json:"image,omitempty"`
	Images          []string         `json:"images,omitempty"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	AdvancePayment  *decimal.Decimal `json:"advancePayment,omitempty"`
	Stock           int              `json:"stock"`
	Quantity        int              `json:"quantity"`
	SelectedVariant string           `json:"selectedVariant,omitempty"`
}

// Matches reports whether the line has the (product, variant) identity.
func (i CartItem) Matches(productID uuid.UUID, variant string) bool {
	return i.ProductID == productID && i.SelectedVariant == variant
}

type CartTotals struct {
	TotalItems    int             `json:"totalItems"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
}

type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	CartTotals
	UpdatedAt time.Time `json:"updatedAt"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
	Variant   string    `json:"variant" validate:"max=100"`
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"`
	Variant   string    `json:"variant" validate:"max=100"`
}

type ItemRefRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Variant   string    `json:"variant" validate:"max=100"`
}
