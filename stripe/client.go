package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Provider is the part of the Stripe API used by the Service. It is
// implemented by Client and by in-memory fakes in tests.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error)
	// FindCustomerByEmail returns nil and no error when no customer has the
	// given email.
	FindCustomerByEmail(ctx context.Context, email string) (*stripeapi.Customer, error)
	CreateCustomer(ctx context.Context, params *stripeapi.CustomerParams) (*stripeapi.Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, params *stripeapi.CustomerParams) (*stripeapi.Customer, error)
}

// Client wraps the Stripe API client. Every Client carries its own key, the
// package level stripe.Key is never set.
type Client struct {
	api *client.API
}

var _ Provider = (*Client)(nil)

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	backends := stripeapi.NewBackends(&http.Client{
		Timeout: 30 * time.Second,
	})
	return &Client{
		api: client.New(config.APIKey, backends),
	}
}

// CreateCheckoutSession creates a new hosted checkout session.
// API description https://docs.stripe.com/api/checkout/sessions/create
func (c *Client) CreateCheckoutSession(ctx context.Context, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	params.Context = ctx
	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create checkout session", err)
	}
	return session, nil
}

// GetCheckoutSession retrieves a checkout session by ID
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var apiErr *stripeapi.Error
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, NewStripeError(CodeSessionNotFound, "checkout session not found", err)
		}
		return nil, NewStripeError(CodeAPICallFailed, "failed to get checkout session", err)
	}
	return session, nil
}

// FindCustomerByEmail retrieves the first customer with the given email.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*stripeapi.Customer, error) {
	params := &stripeapi.CustomerListParams{
		Email: stripeapi.String(email),
	}
	params.Limit = stripeapi.Int64(1)
	params.Context = ctx

	customers := c.api.Customers.List(params)
	if customers.Next() {
		return customers.Customer(), nil
	}
	if err := customers.Err(); err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to list customers", err)
	}
	return nil, nil
}

// CreateCustomer creates a new customer.
func (c *Client) CreateCustomer(ctx context.Context, params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	params.Context = ctx
	customer, err := c.api.Customers.New(params)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create customer", err)
	}
	return customer, nil
}

// UpdateCustomer updates the customer data with the non nil params.
func (c *Client) UpdateCustomer(ctx context.Context, customerID string, params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	params.Context = ctx
	customer, err := c.api.Customers.Update(customerID, params)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to update customer", err)
	}
	return customer, nil
}
