// Package mailtemplates renders the order notifications sent to the shop
// staff from the HTML templates embedded in the binary.
package mailtemplates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/vocdoni/checkout-backend/notifications"
)

//go:embed assets/*.html
var assets embed.FS

// TemplateFile represents an email template key. Every email template should
// have a key that identifies it, which is the filename without the extension.
type TemplateFile string

// MailTemplate struct represents an email template. It includes the file key
// and the notification placeholder to be sent. The placeholder includes the
// mail subject and the plain body template, used as a fallback for email
// clients that do not support HTML and as the SMS text.
type MailTemplate struct {
	File        TemplateFile
	Placeholder notifications.Notification
}

// OrderData is the data available to the order templates.
type OrderData struct {
	SessionID       string
	ReferenceID     string
	CustomerName    string
	CustomerEmail   string
	Amount          string
	PaymentStatus   string
	ShippingName    string
	ShippingAddress string
	Note            string
}

// OrderPaidNotification is sent to the shop staff when the payment of an
// order is confirmed.
var OrderPaidNotification = MailTemplate{
	File: "order_paid",
	Placeholder: notifications.Notification{
		Subject:   "New paid order {{.ReferenceID}}",
		PlainBody: `Order {{.ReferenceID}} paid: {{.Amount}}{{if .CustomerName}} by {{.CustomerName}}{{end}}{{if .CustomerEmail}} <{{.CustomerEmail}}>{{end}}`,
	},
}

// OrderPaymentFailedNotification is sent to the shop staff when a delayed
// payment of an order fails.
var OrderPaymentFailedNotification = MailTemplate{
	File: "order_payment_failed",
	Placeholder: notifications.Notification{
		Subject:   "Payment failed for order {{.ReferenceID}}",
		PlainBody: `Payment failed for order {{.ReferenceID}} ({{.Amount}}){{if .CustomerEmail}}, customer <{{.CustomerEmail}}>{{end}}`,
	},
}

// ExecTemplate executes the HTML template of the mail template and the text
// templates of its subject and plain body with the data provided. It returns
// the notification with the subject and both bodies filled.
func (mt MailTemplate) ExecTemplate(data any) (*notifications.Notification, error) {
	n, err := mt.ExecPlain(data)
	if err != nil {
		return nil, err
	}
	tmpl, err := htmltemplate.ParseFS(assets, "assets/"+string(mt.File)+".html")
	if err != nil {
		return nil, fmt.Errorf("template %s not found: %w", mt.File, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, err
	}
	n.Body = buf.String()
	return n, nil
}

// ExecPlain executes only the subject and plain body templates, which is
// all an SMS needs.
func (mt MailTemplate) ExecPlain(data any) (*notifications.Notification, error) {
	subject, err := execText("subject", mt.Placeholder.Subject, data)
	if err != nil {
		return nil, err
	}
	plain, err := execText("plain", mt.Placeholder.PlainBody, data)
	if err != nil {
		return nil, err
	}
	return &notifications.Notification{Subject: subject, PlainBody: plain}, nil
}

func execText(name, text string, data any) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := texttemplate.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
