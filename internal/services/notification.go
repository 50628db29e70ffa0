package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
)

// OrderNotifier is told about every persisted order.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order *models.Order) error
}

type notificationService struct {
	emailService sendgrid.EmailService
	adminEmail   string
}

func NewNotificationService(emailService sendgrid.EmailService, adminEmail string) OrderNotifier {
	return &notificationService{emailService: emailService, adminEmail: adminEmail}
}

// NotifyNewOrder mails the shop admin. No admin address disables it.
func (n *notificationService) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	if n.adminEmail == "" {
		return nil
	}

	email := &sendgrid.Email{
		To:          n.adminEmail,
		Subject:     fmt.Sprintf("New order %s (%s payment)", order.OrderID, order.PaymentType),
		Content:     orderText(order),
		HTMLContent: orderHTML(order),
	}

	if err := n.emailService.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to notify admin of order %s: %w", order.OrderID, err)
	}

	return nil
}

func orderText(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", order.OrderID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", order.Name, order.Mobile)
	fmt.Fprintf(&b, "Address: %s, %s\n", order.Address, order.City)
	fmt.Fprintf(&b, "Transaction: %s\n\n", order.TransactionID)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s", item.Name, item.Quantity, item.UnitPrice)

		if item.SelectedVariant != "" {
			fmt.Fprintf(&b, " [%s]", item.SelectedVariant)
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\nDelivery: %s\nTotal: %s\n", order.Subtotal, order.DeliveryCharge, order.TotalAmount)
	fmt.Fprintf(&b, "Paid now: %s\nCollect on delivery: %s\n", order.PayNowAmount, order.PayToRiderAmount)

	return b.String()
}

func orderHTML(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Order %s</h2>", html.EscapeString(order.OrderID))
	fmt.Fprintf(&b, "<p>%s (%s)<br>%s, %s</p><ul>",
		html.EscapeString(order.Name), html.EscapeString(order.Mobile),
		html.EscapeString(order.Address), html.EscapeString(order.City))

	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%s x%d @ %s</li>", html.EscapeString(item.Name), item.Quantity, item.UnitPrice)
	}

	fmt.Fprintf(&b, "</ul><p>Total %s, collect on delivery %s</p>", order.TotalAmount, order.PayToRiderAmount)

	return b.String()
}
