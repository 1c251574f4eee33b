package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vocdoni/checkout-backend/address"
	"github.com/vocdoni/checkout-backend/notifications"
	"github.com/vocdoni/checkout-backend/notifications/mailtemplates"
)

// DefaultNotificationTimeout bounds the delivery of each order notification.
const DefaultNotificationTimeout = 10 * time.Second

// OrderNotifier tells the shop staff about paid and failed orders. Either
// service may be nil, a channel is used only when both its service and its
// recipient are set.
type OrderNotifier struct {
	MailService notifications.NotificationService
	SMSService  notifications.NotificationService
	ToName      string
	ToAddress   string
	ToNumber    string
	Timeout     time.Duration
}

// Enabled reports whether at least one channel can deliver notifications.
func (n *OrderNotifier) Enabled() bool {
	if n == nil {
		return false
	}
	return (n.MailService != nil && n.ToAddress != "") || (n.SMSService != nil && n.ToNumber != "")
}

// NotifyOrder renders the template with the order and sends it through
// every enabled channel. A failing channel does not prevent the others from
// being tried, all the failures are returned together.
func (n *OrderNotifier) NotifyOrder(ctx context.Context, tmpl mailtemplates.MailTemplate, order *OrderSummary) error {
	if !n.Enabled() {
		return nil
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data := orderTemplateData(order)
	var errs []error
	if n.MailService != nil && n.ToAddress != "" {
		if err := n.sendMail(ctx, tmpl, data, order.CustomerEmail); err != nil {
			errs = append(errs, fmt.Errorf("email notification: %w", err))
		}
	}
	if n.SMSService != nil && n.ToNumber != "" {
		if err := n.sendSMS(ctx, tmpl, data); err != nil {
			errs = append(errs, fmt.Errorf("sms notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (n *OrderNotifier) sendMail(ctx context.Context, tmpl mailtemplates.MailTemplate,
	data *mailtemplates.OrderData, replyTo string,
) error {
	notification, err := tmpl.ExecTemplate(data)
	if err != nil {
		return err
	}
	notification.ToName = n.ToName
	notification.ToAddress = n.ToAddress
	// the staff can answer the customer straight from the notification
	notification.ReplyTo = replyTo
	return n.MailService.SendNotification(ctx, notification)
}

func (n *OrderNotifier) sendSMS(ctx context.Context, tmpl mailtemplates.MailTemplate, data *mailtemplates.OrderData) error {
	notification, err := tmpl.ExecPlain(data)
	if err != nil {
		return err
	}
	notification.ToNumber = n.ToNumber
	return n.SMSService.SendNotification(ctx, notification)
}

func orderTemplateData(order *OrderSummary) *mailtemplates.OrderData {
	data := &mailtemplates.OrderData{
		SessionID:       order.SessionID,
		ReferenceID:     order.ReferenceID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Amount:          FormatAmount(order.AmountTotal, order.Currency),
		PaymentStatus:   order.PaymentStatus,
		ShippingName:    order.ShippingName,
		ShippingAddress: formatAddress(order.ShippingAddress),
		Note:            order.Metadata["note"],
	}
	if data.ReferenceID == "" {
		data.ReferenceID = order.SessionID
	}
	return data
}

// FormatAmount renders an amount in minor units with its currency, as in
// "19.98 EUR".
func FormatAmount(minor int64, currency string) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}

// formatAddress renders an address on a single line, skipping the empty
// parts.
func formatAddress(a address.Address) string {
	if a.IsZero() {
		return ""
	}
	locality := strings.TrimSpace(strings.Join(nonEmpty(a.PostalCode, a.City, a.Province), " "))
	return strings.Join(nonEmpty(a.Line1, a.Line2, locality, a.Country), ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
