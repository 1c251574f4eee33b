package stripe

import (
	"context"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/checkout-backend/address"
	"github.com/vocdoni/checkout-backend/checkout"
	"go.vocdoni.io/dvote/log"
)

// ensureCustomer returns the ID of the Stripe customer holding the order
// customer data. A customer with the same email is updated, otherwise a new
// one is created.
func (s *Service) ensureCustomer(ctx context.Context, c *checkout.Customer) (string, error) {
	params := s.customerParams(c)
	if c.Email != "" {
		existing, err := s.provider.FindCustomerByEmail(ctx, c.Email)
		if err != nil {
			return "", err
		}
		if existing != nil {
			updated, err := s.provider.UpdateCustomer(ctx, existing.ID, params)
			if err != nil {
				return "", err
			}
			log.Debugw("stripe customer updated", "customer", updated.ID)
			return updated.ID, nil
		}
	}
	created, err := s.provider.CreateCustomer(ctx, params)
	if err != nil {
		return "", err
	}
	log.Debugw("stripe customer created", "customer", created.ID)
	return created.ID, nil
}

// customerParams maps the customer data into the Stripe params. Empty fields
// are left out so an update never clears data Stripe already has.
func (s *Service) customerParams(c *checkout.Customer) *stripeapi.CustomerParams {
	params := &stripeapi.CustomerParams{
		Name:  optionalString(c.Name),
		Email: optionalString(c.Email),
		Phone: optionalString(c.Phone),
	}
	if !c.Address.IsZero() {
		params.Address = addressParams(c.Address)
	}
	if c.HasShippingData() {
		params.Shipping = &stripeapi.CustomerShippingParams{
			Name:    optionalString(c.Name),
			Phone:   optionalString(c.Phone),
			Address: addressParams(c.Address),
		}
	}
	params.Metadata = map[string]string{
		"note":       c.Note,
		"email_hint": c.Email,
		"source":     s.config.MetadataSource,
	}
	return params
}

func addressParams(a address.Address) *stripeapi.AddressParams {
	return &stripeapi.AddressParams{
		Line1:      optionalString(a.Line1),
		Line2:      optionalString(a.Line2),
		PostalCode: optionalString(a.PostalCode),
		City:       optionalString(a.City),
		State:      optionalString(a.Province),
		Country:    optionalString(a.Country),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return stripeapi.String(s)
}
