// Package address normalizes the customer postal data collected by the
// checkout form: phone numbers, postal codes and Italian province codes.
package address

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCountry is assumed when an address comes without a country.
const DefaultCountry = "IT"

// postalCodeDigits is the exact number of digits a postal code must have for
// the countries whose codes are purely numeric.
var postalCodeDigits = map[string]int{
	"IT": 5,
	"SM": 5,
	"VA": 5,
	"DE": 5,
	"FR": 5,
	"ES": 5,
	"AT": 4,
	"CH": 4,
	"BE": 4,
	"DK": 4,
}

// ErrInvalidPostalCode is matched by every PostalCodeError.
var ErrInvalidPostalCode = errors.New("invalid postal code")

// Address is a customer postal address. Province holds the administrative
// subdivision, a two letter province code for Italy.
type Address struct {
	Line1      string `json:"line1,omitempty" validate:"max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,postalcode"`
	City       string `json:"city,omitempty" validate:"max=100"`
	Province   string `json:"state,omitempty" validate:"max=100"`
	Country    string `json:"country,omitempty" validate:"omitempty,alpha,len=2"`
}

// IsZero reports whether the address carries no data at all.
func (a Address) IsZero() bool {
	return a == Address{}
}

// PostalCodeError is returned when a postal code breaks the digit rule of its
// country.
type PostalCodeError struct {
	Country    string
	PostalCode string
	Digits     int
}

func (e *PostalCodeError) Error() string {
	return fmt.Sprintf("postal code %q is not valid for %s: it must have %d digits",
		e.PostalCode, e.Country, e.Digits)
}

// Is makes errors.Is(err, ErrInvalidPostalCode) match.
func (*PostalCodeError) Is(target error) bool {
	return target == ErrInvalidPostalCode
}

// ProvinceConflictError is returned when the province given by the customer
// differs from the one derived from the postal code.
type ProvinceConflictError struct {
	PostalCode       string
	PostalProvince   string
	ProvidedProvince string
}

func (e *ProvinceConflictError) Error() string {
	return fmt.Sprintf("province does not match postal code: %s belongs to %s, but %s was provided",
		e.PostalCode, e.PostalProvince, e.ProvidedProvince)
}

// ValidatePostalCode checks code against the digit rule of country. Countries
// without a known rule and empty codes are accepted.
func ValidatePostalCode(country, code string) error {
	if code == "" {
		return nil
	}
	digits, ok := postalCodeDigits[country]
	if !ok {
		return nil
	}
	if len(code) != digits || strings.IndexFunc(code, notDigit) >= 0 {
		return &PostalCodeError{Country: country, PostalCode: code, Digits: digits}
	}
	return nil
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}

// Normalize trims every field, upper-cases the country (DefaultCountry when
// empty), validates the postal code and resolves the province. For Italian
// addresses the province is taken from the explicit value or derived from the
// postal code; if both exist and differ a *ProvinceConflictError is returned.
func Normalize(a Address) (Address, error) {
	out := Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		PostalCode: strings.TrimSpace(a.PostalCode),
		City:       strings.TrimSpace(a.City),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	if err := ValidatePostalCode(out.Country, out.PostalCode); err != nil {
		return Address{}, err
	}

	explicit := NormalizeProvince(a.Province)
	if out.Country != "IT" {
		out.Province = explicit
		return out, nil
	}

	fromPostalCode, _ := ProvinceFromPostalCode(out.PostalCode)
	if explicit != "" && fromPostalCode != "" && explicit != fromPostalCode {
		return Address{}, &ProvinceConflictError{
			PostalCode:       out.PostalCode,
			PostalProvince:   fromPostalCode,
			ProvidedProvince: explicit,
		}
	}
	out.Province = explicit
	if out.Province == "" {
		out.Province = fromPostalCode
	}
	return out, nil
}
