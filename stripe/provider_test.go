package stripe

import (
	"context"
	"fmt"
	"sync"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// fakeProvider is an in-memory Provider recording every call.
type fakeProvider struct {
	mu        sync.Mutex
	sessions  []*stripeapi.CheckoutSessionParams
	customers map[string]*stripeapi.Customer
	created   []*stripeapi.CustomerParams
	updated   map[string]*stripeapi.CustomerParams
	stored    map[string]*stripeapi.CheckoutSession
	// err is returned by every call when set.
	err error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		customers: map[string]*stripeapi.Customer{},
		updated:   map[string]*stripeapi.CustomerParams{},
		stored:    map[string]*stripeapi.CheckoutSession{},
	}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sessions = append(f.sessions, params)
	id := fmt.Sprintf("cs_test_%d", len(f.sessions))
	return &stripeapi.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (f *fakeProvider) GetCheckoutSession(_ context.Context, sessionID string) (*stripeapi.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	session, ok := f.stored[sessionID]
	if !ok {
		return nil, NewStripeError(CodeSessionNotFound, "checkout session not found", nil)
	}
	return session, nil
}

func (f *fakeProvider) FindCustomerByEmail(_ context.Context, email string) (*stripeapi.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.customers[email], nil
}

func (f *fakeProvider) CreateCustomer(_ context.Context, params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	return &stripeapi.Customer{ID: fmt.Sprintf("cus_new_%d", len(f.created))}, nil
}

func (f *fakeProvider) UpdateCustomer(_ context.Context, customerID string, params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updated[customerID] = params
	return &stripeapi.Customer{ID: customerID}, nil
}
