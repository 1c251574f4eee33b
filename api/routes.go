package api

const (
	// GET /ping to check the service is alive
	pingEndpoint = "/ping"

	// checkout routes

	// POST /api/create-checkout-session to create a hosted checkout session
	createCheckoutSessionEndpoint = "/api/create-checkout-session"
	// GET|POST /api/checkout-redirect to create a checkout session and be
	// redirected to it
	checkoutRedirectEndpoint = "/api/checkout-redirect"
	// GET /api/checkout-session/{sessionID} to get the status of a checkout session
	checkoutSessionEndpoint = "/api/checkout-session/{sessionID}"

	// stripe routes

	// POST /api/stripe-webhook to receive the Stripe events
	stripeWebhookEndpoint = "/api/stripe-webhook"
)
