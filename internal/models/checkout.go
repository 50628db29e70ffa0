package models

import "github.com/shopspring/decimal"

type PaymentType string

const (
	PaymentTypeFull    PaymentType = "full"
	PaymentTypePartial PaymentType = "partial"
)

func (p PaymentType) Valid() bool {
	return p == PaymentTypeFull || p == PaymentTypePartial
}

type CheckoutForm struct {
	Name          string      `json:"name" validate:"required,max=120"`
	Mobile        string      `json:"mobile" validate:"required,numeric,min=10,max=14"`
	Address       string      `json:"address" validate:"required,max=500"`
	City          string      `json:"city" validate:"required,max=80"`
	PaymentType   PaymentType `json:"paymentType" validate:"required,oneof=full partial"`
	TransactionID string      `json:"transactionId" validate:"required,max=64"`
}

type QuoteRequest struct {
	City        string      `json:"city" validate:"required,max=80"`
	PaymentType PaymentType `json:"paymentType" validate:"required,oneof=full partial"`
}

type CheckoutQuote struct {
	City             string          `json:"city"`
	PaymentType      PaymentType     `json:"paymentType"`
	IsInsideDhaka    bool            `json:"isInsideDhaka"`
	Totals           CartTotals      `json:"totals"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryCharge   decimal.Decimal `json:"deliveryCharge"`
	AdvancePayment   decimal.Decimal `json:"advancePayment"`
	PayNowAmount     decimal.Decimal `json:"payNowAmount"`
	PayToRiderAmount decimal.Decimal `json:"payToRiderAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
}

type PlaceOrderResponse struct {
	OrderID         string `json:"orderId"`
	ConfirmationURL string `json:"confirmationUrl"`
	Order           *Order `json:"order"`
}
