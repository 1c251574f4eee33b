// Package checkout turns the cart payloads sent by the shop frontends into a
// normalized order ready to be submitted to the payment provider.
package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vocdoni/checkout-backend/address"
)

// Currency is the only currency the shop charges in.
const Currency = "eur"

// PriceReferencePrefix marks an item price that points to a price object
// already defined on the provider.
const PriceReferencePrefix = "price_"

// Names used for items sent without a name and for errors about the
// shipping cost.
const (
	defaultItemName  = "Articolo"
	shippingItemName = "shipping"
)

var (
	// ErrMissingItems is returned when a request carries no cart items.
	ErrMissingItems = errors.New("missing cart items")
	// ErrMalformedRequest is returned when the request body cannot be decoded.
	ErrMalformedRequest = errors.New("malformed checkout request")
)

// CartItem is a single product of the cart as sent by the frontend.
type CartItem struct {
	Name string `json:"name" validate:"max=250"`
	// PriceID references a provider price. When set, UnitPrice is ignored.
	PriceID string `json:"price,omitempty"`
	// UnitPrice is expressed in major units (euros).
	UnitPrice decimal.Decimal `json:"amount"`
	// Quantity values below 1 are clamped to 1.
	Quantity int64 `json:"quantity"`
}

// CustomerInfo holds the optional prefill data of the buyer. A phone that
// cannot be normalized is dropped instead of rejecting the request.
type CustomerInfo struct {
	Name    string           `json:"name,omitempty" validate:"max=250"`
	Email   string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string           `json:"phone,omitempty"`
	Address *address.Address `json:"address,omitempty"`
	Note    string           `json:"note,omitempty" validate:"max=500"`
}

// Request is a parsed checkout session request.
type Request struct {
	Items        []CartItem      `json:"items" validate:"dive"`
	Customer     *CustomerInfo   `json:"customer,omitempty"`
	ShippingCost decimal.Decimal `json:"shippingCostOverride"`
	SuccessURL   string          `json:"success_url,omitempty" validate:"omitempty,url"`
	CancelURL    string          `json:"cancel_url,omitempty" validate:"omitempty,url"`
	// Metadata leaves room for the keys the session adds on its own.
	Metadata map[string]string `json:"metadata,omitempty" validate:"max=40,dive,keys,max=40,endkeys,max=500"`
}

// LineItem is a priced, quantified entry of the order. Either PriceID or the
// (Name, UnitAmount) pair is set.
type LineItem struct {
	PriceID    string
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

// Customer is the normalized buyer data. Phone is in international form and
// Address carries the resolved province.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Note    string
	Address address.Address
}

// HasShippingData reports whether the customer has enough data to prefill a
// shipping destination.
func (c *Customer) HasShippingData() bool {
	return c.Name != "" || c.Address.Line1 != ""
}

// Order is the normalized result of a Request.
type Order struct {
	Items []LineItem
	// ShippingAmount is the fixed shipping rate in minor units, 0 for free
	// shipping.
	ShippingAmount int64
	// Customer is nil when the request carried no customer data.
	Customer   *Customer
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Total returns the sum of the inline priced items in minor units. Items
// pointing to a provider price are not included.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitAmount * item.Quantity
	}
	return total
}

// InvalidAmountError is returned for items whose price is missing, not a
// number, not positive or too large, and for quantities above MaxQuantity.
// Quantity is set when Value holds the rejected quantity.
type InvalidAmountError struct {
	Item     string
	Value    string
	Quantity bool
}

func (e *InvalidAmountError) Error() string {
	kind := "amount"
	if e.Quantity {
		kind = "quantity"
	}
	if e.Item == "" {
		return fmt.Sprintf("invalid %s %q", kind, e.Value)
	}
	return fmt.Sprintf("invalid %s %q for item %q", kind, e.Value, e.Item)
}
