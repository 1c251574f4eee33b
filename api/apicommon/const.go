// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

const (
	// MaxBodyBytes caps the size of the request bodies the API reads.
	MaxBodyBytes = int64(65536)
	// StripeSignatureHeader is the header carrying the webhook signature.
	StripeSignatureHeader = "Stripe-Signature"
	// DefaultOrigin is the shop origin used when the request gives no hint of
	// its own.
	DefaultOrigin = "http://localhost:3000"
)
