package address

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	minPhoneLength = 7  // "+" plus at least 6 digits
	maxPhoneLength = 16 // "+" plus the 15 digits E.164 allows
)

// NormalizePhone converts a phone number into international dialing form.
// A leading "00" becomes "+", punctuation and spaces are removed and, when
// the number has no "+" prefix, the dialing code of country is prepended
// (DefaultCountry when country is unknown). It returns an empty string when
// the result is not a plausible number.
func NormalizePhone(raw, country string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	region := strings.ToUpper(strings.TrimSpace(country))
	if phonenumbers.GetCountryCodeForRegion(region) == 0 {
		region = DefaultCountry
	}
	pn, err := phonenumbers.Parse(s, region)
	if err != nil {
		return ""
	}
	phone := phonenumbers.Format(pn, phonenumbers.E164)
	if len(phone) < minPhoneLength || len(phone) > maxPhoneLength {
		return ""
	}
	return phone
}
