// Package notifications defines the messages sent to the shop staff when an
// order changes state and the interface of the services that deliver them.
package notifications

import "context"

// Notification is a message ready to be delivered. Email services use the
// address fields, the subject and both bodies; SMS services only use
// ToNumber and PlainBody.
type Notification struct {
	ToName    string
	ToAddress string
	ToNumber  string
	ReplyTo   string
	Subject   string
	Body      string
	PlainBody string
}

// NotificationService delivers notifications through a single channel.
type NotificationService interface {
	SendNotification(context.Context, *Notification) error
}
