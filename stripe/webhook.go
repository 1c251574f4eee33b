package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/vocdoni/checkout-backend/address"
	"github.com/vocdoni/checkout-backend/notifications/mailtemplates"
	"go.vocdoni.io/dvote/log"
)

// OrderSummary holds the salient fields of a paid, or failed, checkout
// session.
type OrderSummary struct {
	SessionID       string
	ReferenceID     string
	CustomerEmail   string
	CustomerName    string
	AmountTotal     int64
	Currency        string
	PaymentStatus   string
	ShippingName    string
	ShippingAddress address.Address
	Metadata        map[string]string
}

// PaymentSummary holds the salient fields of a payment intent event.
type PaymentSummary struct {
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
	FailureMessage  string
}

// sessionShipping decodes the shipping details of a session. Depending on
// the API version of the account they come at the top level or inside the
// collected information.
type sessionShipping struct {
	ShippingDetails      *shippingDetails `json:"shipping_details"`
	CollectedInformation *struct {
		ShippingDetails *shippingDetails `json:"shipping_details"`
	} `json:"collected_information"`
}

type shippingDetails struct {
	Name    string `json:"name"`
	Address struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		PostalCode string `json:"postal_code"`
		City       string `json:"city"`
		State      string `json:"state"`
		Country    string `json:"country"`
	} `json:"address"`
}

// VerifyWebhookEvent checks the signature of a webhook payload against every
// configured signing secret, in order, and decodes the event once one of
// them matches. The payload must be the exact bytes of the request body.
func (s *Service) VerifyWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	if len(s.config.WebhookSecrets) == 0 {
		return nil, ErrNotConfigured
	}
	var verifyErr error
	verified := false
	for _, secret := range s.config.WebhookSecrets {
		verifyErr = webhook.ValidatePayloadWithTolerance(payload, signatureHeader, secret, s.config.WebhookTolerance)
		if verifyErr == nil {
			verified = true
			break
		}
	}
	if !verified {
		return nil, NewStripeError(CodeWebhookValidation, "webhook signature validation failed", verifyErr)
	}

	// Decoded here instead of webhook.ConstructEvent so that events sent with
	// an API version other than the library's are still accepted.
	event := &stripeapi.Event{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, NewStripeError(CodeInvalidEvent, "failed to parse webhook event", err)
	}
	if event.Type == "" {
		return nil, NewStripeError(CodeInvalidEvent, "webhook event has no type", nil)
	}
	return event, nil
}

// HandleWebhookEvent verifies a webhook payload and dispatches its event.
// Only verification failures are returned: once the event is verified any
// failure while handling it is logged, so that Stripe does not retry the
// delivery. Redeliveries of an event already processed are accepted
// without dispatching it again.
func (s *Service) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := s.VerifyWebhookEvent(payload, signatureHeader)
	if err != nil {
		return nil, err
	}
	if event.ID != "" {
		unlock := s.locks.Lock(event.ID)
		defer unlock()
		if s.events.EventExists(event.ID) {
			log.Debugw("stripe webhook: event already processed", "event", event.ID, "type", event.Type)
			return event, nil
		}
		defer s.events.MarkProcessed(event.ID)
	}
	if err := s.HandleEvent(ctx, event); err != nil {
		log.Errorw(err, fmt.Sprintf("stripe webhook: failed to handle event %s (%s)", event.ID, event.Type))
	}
	return event, nil
}

// HandleEvent dispatches a verified event by type. Known events are logged
// with a summary and, for orders, notified to the shop staff when a notifier
// is set. The rest are ignored. A panic while handling the event is returned
// as an error.
func (s *Service) HandleEvent(ctx context.Context, event *stripeapi.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling event %s: %v\n%s", event.ID, r, debug.Stack())
		}
	}()
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}

	switch event.Type {
	case stripeapi.EventTypeCheckoutSessionCompleted,
		stripeapi.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		summary, err := parseOrderSummary(event.Data.Raw)
		if err != nil {
			return err
		}
		log.Infow("stripe webhook: order completed",
			"event", event.ID,
			"type", event.Type,
			"session", summary.SessionID,
			"reference", summary.ReferenceID,
			"email", summary.CustomerEmail,
			"name", summary.CustomerName,
			"amountTotal", summary.AmountTotal,
			"currency", summary.Currency,
			"paymentStatus", summary.PaymentStatus,
			"shippingName", summary.ShippingName,
			"shippingAddress", summary.ShippingAddress)
		// a completed session of a delayed payment method is not paid yet,
		// async_payment_succeeded follows
		if event.Type == stripeapi.EventTypeCheckoutSessionCompleted &&
			summary.PaymentStatus == string(stripeapi.CheckoutSessionPaymentStatusUnpaid) {
			return nil
		}
		return s.notifier.NotifyOrder(ctx, mailtemplates.OrderPaidNotification, summary)
	case stripeapi.EventTypeCheckoutSessionAsyncPaymentFailed:
		summary, err := parseOrderSummary(event.Data.Raw)
		if err != nil {
			return err
		}
		log.Warnw("stripe webhook: order payment failed",
			"event", event.ID,
			"session", summary.SessionID,
			"email", summary.CustomerEmail,
			"amountTotal", summary.AmountTotal,
			"paymentStatus", summary.PaymentStatus)
		return s.notifier.NotifyOrder(ctx, mailtemplates.OrderPaymentFailedNotification, summary)
	case stripeapi.EventTypePaymentIntentSucceeded:
		summary, err := parsePaymentSummary(event.Data.Raw)
		if err != nil {
			return err
		}
		log.Infow("stripe webhook: payment succeeded",
			"event", event.ID,
			"paymentIntent", summary.PaymentIntentID,
			"amount", summary.Amount,
			"currency", summary.Currency)
	case stripeapi.EventTypePaymentIntentPaymentFailed:
		summary, err := parsePaymentSummary(event.Data.Raw)
		if err != nil {
			return err
		}
		log.Warnw("stripe webhook: payment failed",
			"event", event.ID,
			"paymentIntent", summary.PaymentIntentID,
			"amount", summary.Amount,
			"currency", summary.Currency,
			"reason", summary.FailureMessage)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
	}
	return nil
}

// parseOrderSummary extracts the order information from a checkout session
// event object.
func parseOrderSummary(raw json.RawMessage) (*OrderSummary, error) {
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session from event: %w", err)
	}
	var shipping sessionShipping
	if err := json.Unmarshal(raw, &shipping); err != nil {
		return nil, fmt.Errorf("failed to parse shipping details from event: %w", err)
	}

	summary := &OrderSummary{
		SessionID:     session.ID,
		ReferenceID:   session.ClientReferenceID,
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		PaymentStatus: string(session.PaymentStatus),
		Metadata:      session.Metadata,
	}
	if details := session.CustomerDetails; details != nil {
		if details.Email != "" {
			summary.CustomerEmail = details.Email
		}
		summary.CustomerName = details.Name
	}

	details := shipping.ShippingDetails
	if shipping.CollectedInformation != nil && shipping.CollectedInformation.ShippingDetails != nil {
		details = shipping.CollectedInformation.ShippingDetails
	}
	if details != nil {
		summary.ShippingName = details.Name
		summary.ShippingAddress = address.Address{
			Line1:      details.Address.Line1,
			Line2:      details.Address.Line2,
			PostalCode: details.Address.PostalCode,
			City:       details.Address.City,
			Province:   details.Address.State,
			Country:    details.Address.Country,
		}
	}
	return summary, nil
}

// parsePaymentSummary extracts the payment information from a payment intent
// event object.
func parsePaymentSummary(raw json.RawMessage) (*PaymentSummary, error) {
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse payment intent from event: %w", err)
	}
	summary := &PaymentSummary{
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        string(intent.Currency),
		Status:          string(intent.Status),
	}
	if intent.LastPaymentError != nil {
		summary.FailureMessage = intent.LastPaymentError.Msg
	}
	return summary, nil
}
