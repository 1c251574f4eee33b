package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/checkout-backend/api/apicommon"
	"github.com/vocdoni/checkout-backend/checkout"
	"github.com/vocdoni/checkout-backend/errors"
	"github.com/vocdoni/checkout-backend/stripe"
)

// createCheckoutSessionHandler creates a hosted checkout session for the cart
// in the request and returns its id and URL. The cart may come as a JSON
// document, a form or, when the body is empty, the query string.
func (a *API) createCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := a.checkoutSession(w, r)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CheckoutSessionResponse{
		ID:  session.ID,
		URL: session.URL,
	})
}

// checkoutRedirectHandler creates a checkout session like
// createCheckoutSessionHandler and redirects the buyer to it. It backs the
// plain HTML forms and links that cannot handle a JSON response.
func (a *API) checkoutRedirectHandler(w http.ResponseWriter, r *http.Request) {
	session, err := a.checkoutSession(w, r)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}

// checkoutSessionStatusHandler returns the public status of a checkout
// session, used by the success page to show the order outcome.
func (a *API) checkoutSessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !strings.HasPrefix(sessionID, "cs_") {
		errors.ErrMalformedURLParam.Withf("invalid checkout session id %q", sessionID).Write(w)
		return
	}
	if a.stripe == nil {
		errors.ErrServiceUnavailable.Write(w)
		return
	}
	status, err := a.stripe.GetCheckoutSession(r.Context(), sessionID)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, apicommon.CheckoutSessionStatusFromService(status))
}

// checkoutSession runs the checkout pipeline over the request: parse the
// cart, validate it, normalize it into an order and submit the order to the
// payment provider.
func (a *API) checkoutSession(w http.ResponseWriter, r *http.Request) (*stripe.CheckoutSessionResult, error) {
	if a.stripe == nil {
		return nil, stripe.ErrNotConfigured
	}
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	req, err := checkout.ParseRequest(r.Header.Get("Content-Type"), body, r.URL.Query())
	if err != nil {
		return nil, err
	}
	if err := a.validator.Validate(req); err != nil {
		return nil, err
	}
	order, err := checkout.Prepare(req)
	if err != nil {
		return nil, err
	}
	return a.stripe.CreateCheckoutSession(r.Context(), order, a.requestOrigin(r))
}
