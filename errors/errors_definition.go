// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Codes are the machine readable part of the response the shop frontends
// branch on. NEVER rename an existing code, only add new ones.
// 4xx statuses are the caller's fault, 5xx statuses are the server's or the
// payment provider's fault.
var (
	// Request errors (400, 405)
	ErrMethodNotAllowed  = Error{Code: "METHOD_NOT_ALLOWED", HTTPstatus: http.StatusMethodNotAllowed, Err: fmt.Errorf("method not allowed")}
	ErrMalformedBody     = Error{Code: "MALFORMED_BODY", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid request body")}
	ErrMalformedURLParam = Error{Code: "MALFORMED_URL_PARAM", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrMissingItems      = Error{Code: "MISSING_ITEMS", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("cart has no items")}
	ErrInvalidAmount     = Error{Code: "INVALID_AMOUNT", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid item amount")}
	ErrInvalidRequest    = Error{Code: "INVALID_REQUEST", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid request data")}
	ErrMissingSignature  = Error{Code: "MISSING_SIGNATURE", HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("missing Stripe-Signature header"), LogLevel: "info"}

	// Authentication errors (401)
	ErrInvalidSignature = Error{Code: "INVALID_SIGNATURE", HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("webhook signature verification failed"), LogLevel: "warn"}

	// Not found errors (404)
	ErrNotFound = Error{Code: "NOT_FOUND", HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}

	// Address errors (422)
	ErrInvalidPostalCode = Error{Code: "INVALID_POSTAL_CODE", HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("invalid postal code")}
	ErrProvinceConflict  = Error{Code: "PROVINCE_CONFLICT", HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("province does not match postal code")}

	// Server errors (500, 503)
	ErrProvider           = Error{Code: "PROVIDER_ERROR", HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("payment provider error")}
	ErrInternal           = Error{Code: "INTERNAL_ERROR", HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrServiceUnavailable = Error{Code: "SERVICE_UNAVAILABLE", HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("payments are not configured")}
)
