package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/vocdoni/checkout-backend/address"
	"github.com/vocdoni/checkout-backend/api/apicommon"
	"github.com/vocdoni/checkout-backend/checkout"
	"github.com/vocdoni/checkout-backend/errors"
	"github.com/vocdoni/checkout-backend/stripe"
	"github.com/vocdoni/checkout-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// readBody reads the whole request body, up to apicommon.MaxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, apicommon.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.ErrMalformedBody.WithErr(err)
	}
	return body, nil
}

// requestOrigin returns the origin the default redirect URLs are built on:
// the configured base URL, then the Origin header, then the Host header. If
// none of them is available apicommon.DefaultOrigin is used.
func (a *API) requestOrigin(r *http.Request) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" && origin != "null" {
		return strings.TrimRight(origin, "/")
	}
	if r.Host != "" {
		return "https://" + r.Host
	}
	return apicommon.DefaultOrigin
}

// apiError converts an error returned by the checkout pipeline into the API
// error written to the client. Provider messages are passed through, while
// unexpected errors only expose a generic message and are logged.
func apiError(err error) errors.Error {
	var (
		apiErr        errors.Error
		amountErr     *checkout.InvalidAmountError
		validationErr validator.ValidationErrors
		postalErr     *address.PostalCodeError
		conflictErr   *address.ProvinceConflictError
		stripeErr     *stripe.StripeError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, checkout.ErrMissingItems):
		return errors.ErrMissingItems
	case errors.Is(err, checkout.ErrMalformedRequest):
		return errors.ErrMalformedBody.WithErr(err)
	case errors.As(err, &amountErr):
		return errors.ErrInvalidAmount.WithMessage(amountErr.Error()).WithData(map[string]string{
			"item":  amountErr.Item,
			"value": amountErr.Value,
		})
	case errors.As(err, &validationErr):
		return errors.ErrInvalidRequest.WithData(validationErr)
	case errors.As(err, &postalErr):
		return errors.ErrInvalidPostalCode.WithMessage(postalErr.Error()).WithData(map[string]any{
			"postalCode": postalErr.PostalCode,
			"country":    postalErr.Country,
			"digits":     postalErr.Digits,
		})
	case errors.As(err, &conflictErr):
		return errors.ErrProvinceConflict.WithData(map[string]string{
			"postalCode":       conflictErr.PostalCode,
			"capProvince":      conflictErr.PostalProvince,
			"providedProvince": conflictErr.ProvidedProvince,
		})
	case errors.Is(err, stripe.ErrNotConfigured):
		return errors.ErrServiceUnavailable
	case errors.Is(err, stripe.ErrSessionNotFound):
		return errors.ErrNotFound.With("checkout session not found")
	case errors.As(err, &stripeErr):
		return errors.ErrProvider.WithMessage(stripe.ProviderMessage(err))
	default:
		log.Errorw(err, "checkout request failed")
		return errors.ErrInternal
	}
}
