// Package twilio provides a Twilio-based implementation of the
// NotificationService interface for sending SMS notifications.
package twilio

import (
	"context"
	"fmt"

	t "github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/vocdoni/checkout-backend/notifications"
)

// maxBodyLength is the length above which a message body is truncated, two
// concatenated GSM segments.
const maxBodyLength = 306

// Config represents the configuration for the Twilio SMS service. It
// contains the account SID, the auth token and the number from which the SMS
// will be sent.
type Config struct {
	AccountSid string
	AuthToken  string
	FromNumber string
}

// messageCreator is the part of the Twilio REST API used by the service.
type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// SMS is the implementation of the NotificationService interface for the
// Twilio SMS service. It contains the configuration and the Twilio REST client.
type SMS struct {
	config *Config
	client messageCreator
}

// New initializes the Twilio SMS service with the configuration. The
// credentials are passed to an explicitly constructed REST client, the
// process environment is left untouched.
// Read more here: https://www.twilio.com/docs/messaging/quickstart/go
func New(config *Config) (*SMS, error) {
	if config == nil || config.AccountSid == "" || config.AuthToken == "" {
		return nil, fmt.Errorf("invalid Twilio configuration: missing credentials")
	}
	if config.FromNumber == "" {
		return nil, fmt.Errorf("invalid Twilio configuration: missing sender number")
	}
	client := t.NewRestClientWithParams(t.ClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})
	return &SMS{config: config, client: client.Api}, nil
}

// SendNotification sends an SMS notification to the recipient number with the
// plain body of the notification. It returns an error if the notification
// could not be sent or if the context is done.
func (tsms *SMS) SendNotification(ctx context.Context, notification *notifications.Notification) error {
	if notification.ToNumber == "" {
		return fmt.Errorf("notification has no recipient number")
	}
	body := notification.PlainBody
	if body == "" {
		body = notification.Subject
	}
	if r := []rune(body); len(r) > maxBodyLength {
		body = string(r[:maxBodyLength-1]) + "…"
	}
	// create message with configured sender number and notification data
	params := &api.CreateMessageParams{}
	params.SetTo(notification.ToNumber)
	params.SetFrom(tsms.config.FromNumber)
	params.SetBody(body)
	// the Twilio client has no context support, so the message is sent in a
	// goroutine
	errCh := make(chan error, 1)
	go func() {
		_, err := tsms.client.CreateMessage(params)
		errCh <- err
		close(errCh)
	}()
	// wait for the message to be sent or the context to be done
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
