package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vocdoni/checkout-backend/address"
)

const formMediaType = "application/x-www-form-urlencoded"

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// Field aliases accepted by ParseRequest, in order of precedence.
var (
	itemsKeys        = []string{"items", "cartItems", "cart_items"}
	itemNameKeys     = []string{"name", "title", "description"}
	itemPriceKeys    = []string{"amount", "price", "unit_amount", "unitPrice"}
	itemPriceIDKeys  = []string{"price", "priceId", "price_id"}
	itemQuantityKeys = []string{"quantity", "qty"}
	shippingKeys     = []string{"shippingCostOverride", "shippingCost", "shipping_cost"}
	successURLKeys   = []string{"success_url", "successUrl"}
	cancelURLKeys    = []string{"cancel_url", "cancelUrl"}
	line1Keys        = []string{"line1", "address", "street"}
	postalCodeKeys   = []string{"postal_code", "postalCode", "cap", "zip"}
	provinceKeys     = []string{"state", "province", "prov", "provincia"}
	phoneKeys        = []string{"phone", "tel"}
	noteKeys         = []string{"note", "notes"}
)

// jsonFormFields are the form fields whose value may be a JSON document.
var jsonFormFields = map[string]bool{
	"items":      true,
	"cartItems":  true,
	"cart_items": true,
	"customer":   true,
	"metadata":   true,
}

// ParseRequest decodes a checkout request from a JSON or form encoded body.
// When the body is empty the query string is used instead. Every field alias
// the frontends use is resolved here. It returns ErrMissingItems when no
// item is found and an *InvalidAmountError for prices that are not numbers.
func ParseRequest(contentType string, body []byte, query url.Values) (*Request, error) {
	fields, err := decodeFields(contentType, body, query)
	if err != nil {
		return nil, err
	}
	return requestFromFields(fields)
}

func decodeFields(contentType string, body []byte, query url.Values) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return formFields(query), nil
	case mediaType == formMediaType:
		values, err := url.ParseQuery(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return formFields(values), nil
	case trimmed[0] == '[':
		// a bare array is the list of items
		var items []any
		if err := decodeJSON(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return map[string]any{"items": items}, nil
	case trimmed[0] == '{':
		fields := map[string]any{}
		if err := decodeJSON(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return fields, nil
	default:
		values, err := url.ParseQuery(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		return formFields(values), nil
	}
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// formFields flattens form values into the same shape a JSON body has.
// Fields holding JSON documents are decoded and "metadata[key]" fields are
// collected into the metadata map.
func formFields(values url.Values) map[string]any {
	fields := map[string]any{}
	metadata := map[string]any{}
	for key := range values {
		value := values.Get(key)
		if strings.HasPrefix(key, "metadata[") && strings.HasSuffix(key, "]") {
			metadata[key[len("metadata["):len(key)-1]] = value
			continue
		}
		if jsonFormFields[key] {
			trimmed := strings.TrimSpace(value)
			if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
				var decoded any
				if err := decodeJSON([]byte(trimmed), &decoded); err == nil {
					fields[key] = decoded
					continue
				}
			}
		}
		fields[key] = value
	}
	if len(metadata) > 0 {
		if _, ok := fields["metadata"]; !ok {
			fields["metadata"] = metadata
		}
	}
	return fields
}

func requestFromFields(fields map[string]any) (*Request, error) {
	rawItems, err := itemList(fields)
	if err != nil {
		return nil, err
	}
	req := &Request{}
	for _, raw := range rawItems {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: cart item must be an object", ErrMalformedRequest)
		}
		item, err := parseItem(obj)
		if err != nil {
			return nil, err
		}
		req.Items = append(req.Items, item)
	}
	if len(req.Items) == 0 {
		return nil, ErrMissingItems
	}

	if raw := first(fields, shippingKeys...); raw != nil && toString(raw) != "" {
		cost, err := toDecimal(raw)
		if err != nil {
			return nil, &InvalidAmountError{Item: shippingItemName, Value: toString(raw)}
		}
		req.ShippingCost = cost
	}

	req.SuccessURL = toString(first(fields, successURLKeys...))
	req.CancelURL = toString(first(fields, cancelURLKeys...))

	if req.Metadata, err = parseMetadata(fields["metadata"]); err != nil {
		return nil, err
	}
	if req.Customer, err = parseCustomerField(fields); err != nil {
		return nil, err
	}
	return req, nil
}

// itemList finds the list of raw items. Without an items field, a request
// with top level item fields is read as a single item.
func itemList(fields map[string]any) ([]any, error) {
	switch v := first(fields, itemsKeys...).(type) {
	case nil:
		if first(fields, itemPriceKeys...) != nil {
			return []any{fields}, nil
		}
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		return []any{v}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var items []any
		if err := decodeJSON([]byte(v), &items); err != nil {
			return nil, fmt.Errorf("%w: items: %v", ErrMalformedRequest, err)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: items must be a list", ErrMalformedRequest)
	}
}

func parseItem(obj map[string]any) (CartItem, error) {
	item := CartItem{
		Name:     toString(first(obj, itemNameKeys...)),
		Quantity: toQuantity(first(obj, itemQuantityKeys...)),
	}
	for _, key := range itemPriceIDKeys {
		if s, ok := obj[key].(string); ok && strings.HasPrefix(strings.TrimSpace(s), PriceReferencePrefix) {
			item.PriceID = strings.TrimSpace(s)
			return item, nil
		}
	}
	raw := first(obj, itemPriceKeys...)
	if raw == nil {
		return item, nil
	}
	price, err := toDecimal(raw)
	if err != nil {
		return CartItem{}, &InvalidAmountError{Item: item.Name, Value: toString(raw)}
	}
	item.UnitPrice = price
	return item, nil
}

func parseMetadata(raw any) (map[string]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		metadata := make(map[string]string, len(v))
		for key, value := range v {
			metadata[key] = toString(value)
		}
		return metadata, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: metadata must be an object", ErrMalformedRequest)
	default:
		return nil, fmt.Errorf("%w: metadata must be an object", ErrMalformedRequest)
	}
}

// parseCustomerField reads the customer object, or the flat customer fields
// form posts use, and returns nil when no customer data is present.
func parseCustomerField(fields map[string]any) (*CustomerInfo, error) {
	var customer *CustomerInfo
	switch v := fields["customer"].(type) {
	case nil:
		flat := map[string]any{}
		for key, value := range fields {
			flat[key] = value
		}
		flat["name"] = fields["customer_name"]
		customer = parseCustomer(flat)
	case map[string]any:
		customer = parseCustomer(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: customer must be an object", ErrMalformedRequest)
	default:
		return nil, fmt.Errorf("%w: customer must be an object", ErrMalformedRequest)
	}
	if customer.Name == "" && customer.Email == "" && customer.Phone == "" &&
		customer.Note == "" && customer.Address == nil {
		return nil, nil
	}
	return customer, nil
}

func parseCustomer(obj map[string]any) *CustomerInfo {
	customer := &CustomerInfo{
		Name:  toString(obj["name"]),
		Email: toString(obj["email"]),
		Phone: toString(first(obj, phoneKeys...)),
		Note:  toString(first(obj, noteKeys...)),
	}
	addrObj := obj
	if nested, ok := first(obj, "address", "shipping_address").(map[string]any); ok {
		addrObj = nested
	}
	addr := address.Address{
		Line1:      toString(first(addrObj, line1Keys...)),
		Line2:      toString(addrObj["line2"]),
		PostalCode: toString(first(addrObj, postalCodeKeys...)),
		City:       toString(addrObj["city"]),
		Province:   toString(first(addrObj, provinceKeys...)),
		Country:    toString(addrObj["country"]),
	}
	if !addr.IsZero() {
		customer.Address = &addr
	}
	return customer
}

// first returns the value of the first key present in obj.
func first(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case map[string]any, []any:
		data, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// toDecimal parses a major unit amount. Strings may use a decimal comma and
// carry a euro sign.
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(normalizeDecimalString(n))
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}

func normalizeDecimalString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€"))
	s = strings.ReplaceAll(s, " ", "")
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	if comma > dot {
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	}
	// 1,234.56
	return strings.ReplaceAll(s, ",", "")
}

func toQuantity(v any) int64 {
	if v == nil {
		return 1
	}
	n, err := toDecimal(v)
	if err != nil {
		return 1
	}
	// values past int64 saturate so Prepare can reject them
	if n.GreaterThan(maxInt64) {
		return math.MaxInt64
	}
	q := n.IntPart()
	if q < 1 {
		return 1
	}
	return q
}
