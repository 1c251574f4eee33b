package apicommon

import "github.com/vocdoni/checkout-backend/stripe"

// CheckoutSessionResponse is returned once a hosted checkout session is
// created. The frontend redirects the buyer to URL.
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookAck acknowledges a verified webhook delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}

// CheckoutSessionStatus is the public view of a checkout session, shown by
// the success page.
type CheckoutSessionStatus struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	// AmountTotal is expressed in minor units.
	AmountTotal int64  `json:"amountTotal"`
	Currency    string `json:"currency"`
}

// CheckoutSessionStatusFromService converts the service representation of a
// session into its API form.
func CheckoutSessionStatusFromService(s *stripe.CheckoutSessionStatus) *CheckoutSessionStatus {
	return &CheckoutSessionStatus{
		ID:            s.ID,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      s.Currency,
	}
}
