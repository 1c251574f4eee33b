package stripe

import (
	"context"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/checkout-backend/checkout"
	"go.vocdoni.io/dvote/log"
)

// CheckoutSessionIDPlaceholder is replaced by Stripe with the session ID in
// the redirect URLs.
const CheckoutSessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

const deliveryEstimateUnit = "business_day"

// CheckoutSessionResult is the session created for an order.
type CheckoutSessionResult struct {
	ID  string
	URL string
}

// CheckoutSessionStatus represents the status of a checkout session
type CheckoutSessionStatus struct {
	ID            string
	Status        string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
}

// DefaultRedirectURLs returns the success and cancel URLs used when the
// request carries none.
func DefaultRedirectURLs(origin string) (success, cancel string) {
	origin = strings.TrimRight(origin, "/")
	return origin + "/success?session_id=" + CheckoutSessionIDPlaceholder, origin + "/cancel"
}

// CreateCheckoutSession creates a hosted checkout session for the order. When
// the order has customer data a Stripe customer is created, or reused when
// one with the same email exists, to prefill the checkout form. The origin is
// used to build the redirect URLs the order does not set.
func (s *Service) CreateCheckoutSession(ctx context.Context, order *checkout.Order, origin string) (*CheckoutSessionResult, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	if order == nil || len(order.Items) == 0 {
		return nil, checkout.ErrMissingItems
	}
	params := s.sessionParams(order, origin)

	if order.Customer != nil {
		customerID, err := s.ensureCustomer(ctx, order.Customer)
		if err != nil {
			return nil, err
		}
		params.Customer = stripeapi.String(customerID)
		params.CustomerUpdate = &stripeapi.CheckoutSessionCustomerUpdateParams{
			Address:  stripeapi.String("auto"),
			Name:     stripeapi.String("auto"),
			Shipping: stripeapi.String("auto"),
		}
	}

	session, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}
	log.Infow("checkout session created",
		"session", session.ID,
		"reference", stripeapi.StringValue(params.ClientReferenceID),
		"items", len(order.Items),
		"itemsTotal", order.Total(),
		"shipping", order.ShippingAmount,
		"customer", stripeapi.StringValue(params.Customer))
	return &CheckoutSessionResult{ID: session.ID, URL: session.URL}, nil
}

// GetCheckoutSession returns the status of a checkout session.
func (s *Service) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionStatus, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	status := &CheckoutSessionStatus{
		ID:            session.ID,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		status.CustomerEmail = session.CustomerDetails.Email
	}
	return status, nil
}

// sessionParams composes the session request for the order, without the
// customer reference.
func (s *Service) sessionParams(order *checkout.Order, origin string) *stripeapi.CheckoutSessionParams {
	successURL, cancelURL := DefaultRedirectURLs(origin)
	if order.SuccessURL != "" {
		successURL = order.SuccessURL
	}
	if order.CancelURL != "" {
		cancelURL = order.CancelURL
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:                     stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems:                lineItemParams(order.Items),
		BillingAddressCollection: stripeapi.String(string(stripeapi.CheckoutSessionBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripeapi.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripeapi.Bool(true),
		},
		ShippingAddressCollection: &stripeapi.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripeapi.StringSlice(s.config.AllowedShippingCountries),
		},
		ShippingOptions: []*stripeapi.CheckoutSessionShippingOptionParams{
			s.shippingOption(order.ShippingAmount),
		},
		AllowPromotionCodes: stripeapi.Bool(true),
		SuccessURL:          stripeapi.String(successURL),
		CancelURL:           stripeapi.String(cancelURL),
		ClientReferenceID:   stripeapi.String(s.newReferenceID()),
	}
	params.Metadata = s.sessionMetadata(order)
	return params
}

func lineItemParams(items []checkout.LineItem) []*stripeapi.CheckoutSessionLineItemParams {
	lineItems := make([]*stripeapi.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItem := &stripeapi.CheckoutSessionLineItemParams{
			Quantity: stripeapi.Int64(item.Quantity),
		}
		if item.PriceID != "" {
			lineItem.Price = stripeapi.String(item.PriceID)
		} else {
			lineItem.PriceData = &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency: stripeapi.String(checkout.Currency),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(item.Name),
				},
				UnitAmount: stripeapi.Int64(item.UnitAmount),
			}
		}
		lineItems = append(lineItems, lineItem)
	}
	return lineItems
}

// shippingOption returns the single fixed amount shipping rate of the
// session. Shipping is never added as a line item.
func (s *Service) shippingOption(amount int64) *stripeapi.CheckoutSessionShippingOptionParams {
	name := s.config.ShippingDisplayName
	if amount <= 0 {
		amount = 0
		name = s.config.FreeShippingDisplayName
	}
	return &stripeapi.CheckoutSessionShippingOptionParams{
		ShippingRateData: &stripeapi.CheckoutSessionShippingOptionShippingRateDataParams{
			DisplayName: stripeapi.String(name),
			Type:        stripeapi.String("fixed_amount"),
			FixedAmount: &stripeapi.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripeapi.Int64(amount),
				Currency: stripeapi.String(checkout.Currency),
			},
			DeliveryEstimate: &stripeapi.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
				Minimum: &stripeapi.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
					Unit:  stripeapi.String(deliveryEstimateUnit),
					Value: stripeapi.Int64(s.config.ShippingMinDays),
				},
				Maximum: &stripeapi.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
					Unit:  stripeapi.String(deliveryEstimateUnit),
					Value: stripeapi.Int64(s.config.ShippingMaxDays),
				},
			},
		},
	}
}

// sessionMetadata tags the session with its source and the prefill data the
// customer typed. Metadata sent by the caller takes precedence.
func (s *Service) sessionMetadata(order *checkout.Order) map[string]string {
	metadata := map[string]string{"source": s.config.MetadataSource}
	if c := order.Customer; c != nil {
		for key, value := range map[string]string{
			"name_initial":          c.Name,
			"email_initial":         c.Email,
			"phone_initial":         c.Phone,
			"address_line1_initial": c.Address.Line1,
			"city_initial":          c.Address.City,
			"cap_initial":           c.Address.PostalCode,
			"province_initial":      c.Address.Province,
			"note":                  c.Note,
		} {
			if value != "" {
				metadata[key] = value
			}
		}
	}
	for key, value := range order.Metadata {
		metadata[key] = value
	}
	return metadata
}
