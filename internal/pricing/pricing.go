// Package pricing derives cart totals, delivery charges and the payment split
// between the amount collected at checkout and the amount collected on delivery.
package pricing

import (
	"errors"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var ErrInvalidPaymentType = errors.New("invalid payment type")

var hundred = decimal.NewFromInt(100)

// Calculate recomputes the aggregate totals from the current items.
// TotalDiscount is for display only: UnitPrice is already the discounted price.
func Calculate(items []models.CartItem) models.CartTotals {
	totals := models.CartTotals{
		TotalPrice:    decimal.Zero,
		TotalDiscount: decimal.Zero,
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))

		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.UnitPrice.Mul(qty))

		if item.Discount != nil && item.Discount.IsPositive() {
			totals.TotalDiscount = totals.TotalDiscount.Add(item.UnitPrice.Mul(item.Discount.Div(hundred)).Mul(qty))
		}
	}

	return totals
}

// DeliveryRule is a two-tier flat rate: one price for the home city, one for everywhere else.
type DeliveryRule struct {
	HomeCity    string
	InsideRate  decimal.Decimal
	OutsideRate decimal.Decimal
}

func DefaultDeliveryRule() DeliveryRule {
	return DeliveryRule{
		HomeCity:    "Dhaka",
		InsideRate:  decimal.NewFromInt(60),
		OutsideRate: decimal.NewFromInt(120),
	}
}

func (r DeliveryRule) IsHomeCity(city string) bool {
	return strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(r.HomeCity))
}

func (r DeliveryRule) Charge(city string) decimal.Decimal {
	if r.IsHomeCity(city) {
		return r.InsideRate
	}

	return r.OutsideRate
}

// AdvanceFor reads the minimum advance from the first cart line only,
// falling back when that product has none.
func AdvanceFor(items []models.CartItem, fallback decimal.Decimal) decimal.Decimal {
	if len(items) == 0 || items[0].AdvancePayment == nil {
		return fallback
	}

	return *items[0].AdvancePayment
}

type PaymentSplit struct {
	PayNowAmount     decimal.Decimal
	PayToRiderAmount decimal.Decimal
	TotalAmount      decimal.Decimal
}

// Split divides cart total plus delivery into pay-now and pay-to-rider parts.
// PayNowAmount + PayToRiderAmount always equals TotalAmount.
func Split(cartTotal, deliveryCharge, advance decimal.Decimal, paymentType models.PaymentType) (PaymentSplit, error) {
	total := cartTotal.Add(deliveryCharge)

	switch paymentType {
	case models.PaymentTypeFull:
		return PaymentSplit{
			PayNowAmount:     total,
			PayToRiderAmount: decimal.Zero,
			TotalAmount:      total,
		}, nil

	case models.PaymentTypePartial:
		payNow := advance
		if payNow.IsNegative() {
			payNow = decimal.Zero
		}
		if payNow.GreaterThan(total) {
			payNow = total
		}

		return PaymentSplit{
			PayNowAmount:     payNow,
			PayToRiderAmount: total.Sub(payNow),
			TotalAmount:      total,
		}, nil
	}

	return PaymentSplit{}, ErrInvalidPaymentType
}
