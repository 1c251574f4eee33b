package api

import (
	"net/http"

	"github.com/vocdoni/checkout-backend/api/apicommon"
	"github.com/vocdoni/checkout-backend/errors"
	"github.com/vocdoni/checkout-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// stripeWebhookHandler receives the events Stripe sends about the checkout
// sessions. The body is verified against the Stripe-Signature header before
// anything else happens. Once verified the delivery is always acknowledged,
// handling failures are only logged so Stripe does not retry them.
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	signatureHeader := r.Header.Get(apicommon.StripeSignatureHeader)
	if signatureHeader == "" {
		errors.ErrMissingSignature.Write(w)
		return
	}
	if a.stripe == nil {
		errors.ErrServiceUnavailable.Write(w)
		return
	}
	// the payload must be verified byte by byte, so it is read once and
	// never decoded before the signature check
	payload, err := readBody(w, r)
	if err != nil {
		apiError(err).Write(w)
		return
	}

	event, err := a.stripe.HandleWebhookEvent(r.Context(), payload, signatureHeader)
	if err != nil {
		switch {
		case errors.Is(err, stripe.ErrNotConfigured):
			log.Warnw("stripe webhook: no signing secret configured")
			errors.ErrServiceUnavailable.Write(w)
		case errors.Is(err, stripe.ErrInvalidEvent):
			errors.ErrMalformedBody.WithErr(err).Write(w)
		default:
			log.Debugw("stripe webhook: signature rejected", "error", err.Error())
			errors.ErrInvalidSignature.Write(w)
		}
		return
	}
	log.Debugw("stripe webhook: event acknowledged", "event", event.ID, "type", event.Type)
	apicommon.HTTPWriteJSON(w, &apicommon.WebhookAck{Received: true})
}
