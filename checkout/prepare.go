package checkout

import (
	"maps"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vocdoni/checkout-backend/address"
)

const (
	// MaxUnitAmount is the largest amount, in minor units, accepted for a
	// single unit price or for the shipping rate.
	MaxUnitAmount = 99_999_999
	// MaxQuantity is the largest quantity accepted for a line item.
	MaxQuantity = 999_999
)

var maxUnitAmount = decimal.NewFromInt(MaxUnitAmount)

// MinorUnits converts a major unit amount into minor units (cents), rounding
// half away from zero. A positive amount never converts to less than 1. The
// second result is false when the converted amount is beyond MaxUnitAmount in
// either direction.
func MinorUnits(amount decimal.Decimal) (int64, bool) {
	shifted := amount.Shift(2).Round(0)
	if shifted.Abs().GreaterThan(maxUnitAmount) {
		return 0, false
	}
	units := shifted.IntPart()
	if units < 1 && amount.IsPositive() {
		return 1, true
	}
	return units, true
}

// Prepare normalizes a parsed request into an Order: prices are converted to
// minor units, quantities clamped, the shipping amount resolved and the
// customer address and phone normalized.
//
// It returns ErrMissingItems for an empty cart, an *InvalidAmountError for
// items priced at zero or less or above MaxUnitAmount, quantities above
// MaxQuantity and oversized shipping costs, and the address package errors for postal
// codes that break their country rule or disagree with the given province.
func Prepare(req *Request) (*Order, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, ErrMissingItems
	}
	order := &Order{
		Items:      make([]LineItem, 0, len(req.Items)),
		SuccessURL: strings.TrimSpace(req.SuccessURL),
		CancelURL:  strings.TrimSpace(req.CancelURL),
		Metadata:   maps.Clone(req.Metadata),
	}
	for _, item := range req.Items {
		line, err := lineItem(item)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, line)
	}
	if req.ShippingCost.IsPositive() {
		units, ok := MinorUnits(req.ShippingCost)
		if !ok {
			return nil, &InvalidAmountError{Item: shippingItemName, Value: req.ShippingCost.String()}
		}
		order.ShippingAmount = units
	}
	if req.Customer != nil {
		customer, err := normalizeCustomer(req.Customer)
		if err != nil {
			return nil, err
		}
		order.Customer = customer
	}
	return order, nil
}

func lineItem(item CartItem) (LineItem, error) {
	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	name := strings.TrimSpace(item.Name)
	if quantity > MaxQuantity {
		return LineItem{}, &InvalidAmountError{
			Item:     name,
			Value:    strconv.FormatInt(quantity, 10),
			Quantity: true,
		}
	}
	if item.PriceID != "" {
		return LineItem{PriceID: item.PriceID, Name: name, Quantity: quantity}, nil
	}
	if !item.UnitPrice.IsPositive() {
		return LineItem{}, &InvalidAmountError{Item: name, Value: item.UnitPrice.String()}
	}
	units, ok := MinorUnits(item.UnitPrice)
	if !ok {
		return LineItem{}, &InvalidAmountError{Item: name, Value: item.UnitPrice.String()}
	}
	if name == "" {
		name = defaultItemName
	}
	return LineItem{
		Name:       name,
		UnitAmount: units,
		Quantity:   quantity,
	}, nil
}

func normalizeCustomer(info *CustomerInfo) (*Customer, error) {
	var addr address.Address
	if info.Address != nil {
		addr = *info.Address
	}
	normalized, err := address.Normalize(addr)
	if err != nil {
		return nil, err
	}
	customer := &Customer{
		Name:    strings.TrimSpace(info.Name),
		Email:   strings.ToLower(strings.TrimSpace(info.Email)),
		Phone:   address.NormalizePhone(info.Phone, normalized.Country),
		Note:    strings.TrimSpace(info.Note),
		Address: normalized,
	}
	if customer.Name == "" && customer.Email == "" && customer.Phone == "" &&
		customer.Note == "" && info.Address == nil {
		return nil, nil
	}
	return customer, nil
}
