package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/checkout-backend/api/apicommon"
	"github.com/vocdoni/checkout-backend/stripe"
)

const (
	jsonType = "application/json"
	formType = "application/x-www-form-urlencoded"
)

func TestCreateCheckoutSession(t *testing.T) {
	t.Run("Widget", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":9.99,"quantity":2}]}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))

		var resp apicommon.CheckoutSessionResponse
		c.Assert(json.Unmarshal(rec.Body.Bytes(), &resp), qt.IsNil)
		c.Assert(resp, qt.DeepEquals, apicommon.CheckoutSessionResponse{
			ID:  "cs_test_1",
			URL: "https://checkout.stripe.com/c/pay/cs_test_1",
		})

		params := provider.lastSession(c)
		c.Assert(params.LineItems, qt.HasLen, 1)
		item := params.LineItems[0]
		c.Assert(*item.PriceData.UnitAmount, qt.Equals, int64(999))
		c.Assert(*item.Quantity, qt.Equals, int64(2))
		total := *item.PriceData.UnitAmount * *item.Quantity
		c.Assert(total, qt.Equals, int64(1998))
		c.Assert(*params.SuccessURL, qt.Equals, testBaseURL+"/success?session_id={CHECKOUT_SESSION_ID}")
		c.Assert(*params.CancelURL, qt.Equals, testBaseURL+"/cancel")
		c.Assert(params.Customer, qt.IsNil)
		c.Assert(provider.customers, qt.HasLen, 0)
	})

	t.Run("DerivedProvince", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType, mustMarshal(map[string]any{
			"items":    []any{map[string]any{"name": "Widget", "amount": "9,99"}},
			"customer": map[string]any{"address": map[string]any{"postal_code": "20100"}},
		}), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))
		c.Assert(provider.customers, qt.HasLen, 1)
		c.Assert(*provider.customers[0].Address.State, qt.Equals, "MI")
		c.Assert(*provider.customers[0].Address.Country, qt.Equals, "IT")
		c.Assert(provider.lastSession(c).Metadata["province_initial"], qt.Equals, "MI")
	})

	t.Run("ShippingOption", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"cartItems":[{"title":"Widget","price":"12.50","qty":"1"}],"shippingCost":"6.90"}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))
		params := provider.lastSession(c)
		c.Assert(params.LineItems, qt.HasLen, 1)
		c.Assert(params.ShippingOptions, qt.HasLen, 1)
		c.Assert(*params.ShippingOptions[0].ShippingRateData.FixedAmount.Amount, qt.Equals, int64(690))
	})

	t.Run("Form", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, "")

		form := url.Values{}
		form.Set("items", `[{"name":"Widget","amount":5}]`)
		form.Set("metadata[cart]", "abc")
		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, formType,
			[]byte(form.Encode()), map[string]string{"Origin": "https://landing.example"})
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))
		params := provider.lastSession(c)
		c.Assert(*params.LineItems[0].PriceData.UnitAmount, qt.Equals, int64(500))
		c.Assert(params.Metadata["cart"], qt.Equals, "abc")
		c.Assert(*params.CancelURL, qt.Equals, "https://landing.example/cancel")
	})

	t.Run("OriginFromHost", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, "")

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":5}]}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		// httptest requests are addressed to example.com
		c.Assert(*provider.lastSession(c).CancelURL, qt.Equals, "https://example.com/cancel")
	})

	t.Run("ReusesCustomer", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		provider.existing["mario@example.com"] = "cus_existing"
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":5}],"customer":{"email":"Mario@Example.com","phone":"333 123 4567"}}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))
		c.Assert(*provider.lastSession(c).Customer, qt.Equals, "cus_existing")
		c.Assert(*provider.customers[0].Phone, qt.Equals, "+393331234567")
	})

	t.Run("DropsUnusablePhone", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":5}],"customer":{"email":"mario@example.com","phone":"#ask at reception"}}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body %s", rec.Body.String()))
		c.Assert(provider.customers, qt.HasLen, 1)
		c.Assert(provider.customers[0].Phone, qt.IsNil)
		c.Assert(*provider.customers[0].Email, qt.Equals, "mario@example.com")
	})
}

func TestCreateCheckoutSessionErrors(t *testing.T) {
	c := qt.New(t)
	provider := newTestProvider()
	handler := newTestAPI(c, provider, testBaseURL)

	for _, tc := range []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"EmptyItems", `{"items":[]}`, http.StatusBadRequest, "MISSING_ITEMS"},
		{"NoItems", `{"customer":{"address":{"postal_code":"20100"}}}`, http.StatusBadRequest, "MISSING_ITEMS"},
		{"EmptyBody", ``, http.StatusBadRequest, "MISSING_ITEMS"},
		{"BrokenJSON", `{"items":[`, http.StatusBadRequest, "MALFORMED_BODY"},
		{"ZeroPrice", `{"items":[{"name":"Widget","amount":0}]}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"NegativePrice", `{"items":[{"name":"Widget","amount":-5}]}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"TextPrice", `{"items":[{"name":"Widget","amount":"free"}]}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"HugePrice", `{"items":[{"name":"Big","amount":100000000000000000}]}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"HugeQuantity", `{"items":[{"name":"Widget","amount":1,"quantity":1e20}]}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"HugeShipping", `{"items":[{"name":"Widget","amount":1}],"shippingCost":1e15}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"BadEmail", `{"items":[{"name":"Widget","amount":1}],"customer":{"email":"not-an-email"}}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"BadURL", `{"items":[{"name":"Widget","amount":1}],"success_url":"not a url"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"PostalCodeDigits", `{"items":[{"name":"Widget","amount":1}],"customer":{"address":{"postal_code":"2010"}}}`, http.StatusUnprocessableEntity, "INVALID_POSTAL_CODE"},
		{"ProvinceConflict", `{"items":[{"name":"Widget","amount":1}],"customer":{"address":{"postal_code":"20100","province":"RM"}}}`, http.StatusUnprocessableEntity, "PROVINCE_CONFLICT"},
	} {
		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType, []byte(tc.body), nil)
		c.Assert(rec.Code, qt.Equals, tc.status, qt.Commentf("%s: %s", tc.name, rec.Body.String()))
		c.Assert(decodeError(c, rec).Code, qt.Equals, tc.code, qt.Commentf(tc.name))
	}
	// nothing was ever sent upstream
	c.Assert(provider.sessions, qt.HasLen, 0)

	t.Run("ProvinceConflictDetails", func(t *testing.T) {
		c := qt.New(t)
		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":1}],"customer":{"address":{"cap":"00184","provincia":"Milano"}}}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)
		body := decodeError(c, rec)
		c.Assert(body.Error, qt.Equals, "province does not match postal code")
		var details map[string]string
		c.Assert(json.Unmarshal(body.Details, &details), qt.IsNil)
		c.Assert(details, qt.DeepEquals, map[string]string{
			"postalCode":       "00184",
			"capProvince":      "RM",
			"providedProvince": "MI",
		})
	})

	t.Run("ValidationDetails", func(t *testing.T) {
		c := qt.New(t)
		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":1}],"customer":{"email":"nope"}}`), nil)
		var details []map[string]string
		c.Assert(json.Unmarshal(decodeError(c, rec).Details, &details), qt.IsNil)
		c.Assert(details, qt.HasLen, 1)
		c.Assert(details[0]["field"], qt.Equals, "customer.email")
	})

	t.Run("ProviderError", func(t *testing.T) {
		c := qt.New(t)
		provider := newTestProvider()
		provider.err = stripe.NewStripeError(stripe.CodeAPICallFailed, "failed to create checkout session",
			&stripeapi.Error{Msg: "No such price: 'price_missing'"})
		handler := newTestAPI(c, provider, testBaseURL)

		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"price":"price_missing","quantity":1}]}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
		body := decodeError(c, rec)
		c.Assert(body.Code, qt.Equals, "PROVIDER_ERROR")
		c.Assert(body.Error, qt.Equals, "No such price: 'price_missing'")
	})

	t.Run("NotConfigured", func(t *testing.T) {
		c := qt.New(t)
		handler := newTestAPI(c, nil, testBaseURL)
		rec := doRequest(handler, http.MethodPost, createCheckoutSessionEndpoint, jsonType,
			[]byte(`{"items":[{"name":"Widget","amount":1}]}`), nil)
		c.Assert(rec.Code, qt.Equals, http.StatusServiceUnavailable)
		c.Assert(decodeError(c, rec).Code, qt.Equals, "SERVICE_UNAVAILABLE")
	})
}

func TestCheckoutRedirect(t *testing.T) {
	c := qt.New(t)
	provider := newTestProvider()
	handler := newTestAPI(c, provider, testBaseURL)

	query := url.Values{}
	query.Set("name", "Widget")
	query.Set("amount", "9.99")
	query.Set("qty", "3")
	rec := doRequest(handler, http.MethodGet, checkoutRedirectEndpoint+"?"+query.Encode(), "", nil, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther, qt.Commentf("body %s", rec.Body.String()))
	c.Assert(rec.Header().Get("Location"), qt.Equals, "https://checkout.stripe.com/c/pay/cs_test_1")
	params := provider.lastSession(c)
	c.Assert(*params.LineItems[0].PriceData.UnitAmount, qt.Equals, int64(999))
	c.Assert(*params.LineItems[0].Quantity, qt.Equals, int64(3))

	form := url.Values{}
	form.Set("items", `[{"name":"Widget","amount":1}]`)
	rec = doRequest(handler, http.MethodPost, checkoutRedirectEndpoint, formType, []byte(form.Encode()), nil)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get("Location"), qt.Equals, "https://checkout.stripe.com/c/pay/cs_test_2")

	rec = doRequest(handler, http.MethodGet, checkoutRedirectEndpoint, "", nil, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decodeError(c, rec).Code, qt.Equals, "MISSING_ITEMS")
}

func TestCheckoutSessionStatus(t *testing.T) {
	c := qt.New(t)
	provider := newTestProvider()
	provider.stored["cs_test_paid"] = &stripeapi.CheckoutSession{
		ID:              "cs_test_paid",
		Status:          stripeapi.CheckoutSessionStatusComplete,
		PaymentStatus:   stripeapi.CheckoutSessionPaymentStatusPaid,
		AmountTotal:     2688,
		Currency:        stripeapi.CurrencyEUR,
		CustomerDetails: &stripeapi.CheckoutSessionCustomerDetails{Email: "mario@example.com"},
	}
	handler := newTestAPI(c, provider, testBaseURL)

	rec := doRequest(handler, http.MethodGet, "/api/checkout-session/cs_test_paid", "", nil, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var status apicommon.CheckoutSessionStatus
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &status), qt.IsNil)
	c.Assert(status, qt.DeepEquals, apicommon.CheckoutSessionStatus{
		ID:            "cs_test_paid",
		Status:        "complete",
		PaymentStatus: "paid",
		CustomerEmail: "mario@example.com",
		AmountTotal:   2688,
		Currency:      "eur",
	})

	rec = doRequest(handler, http.MethodGet, "/api/checkout-session/cs_test_missing", "", nil, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decodeError(c, rec).Code, qt.Equals, "NOT_FOUND")

	rec = doRequest(handler, http.MethodGet, "/api/checkout-session/pi_123", "", nil, nil)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decodeError(c, rec).Code, qt.Equals, "MALFORMED_URL_PARAM")
}
