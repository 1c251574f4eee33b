package validator

import (
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

type testAddress struct {
	PostalCode string `json:"postal_code" validate:"omitempty,postalcode"`
}

type testRequest struct {
	Email    string            `json:"email,omitempty" validate:"omitempty,email"`
	URL      string            `json:"success_url,omitempty" validate:"omitempty,url"`
	Address  *testAddress      `json:"address,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" validate:"max=2,dive,keys,max=5,endkeys,max=10"`
}

func TestValidatePostalCode(t *testing.T) {
	c := qt.New(t)
	v := New()

	for _, code := range []string{"20100", "1010", "SW1A 1AA", "75-001"} {
		c.Assert(v.Validate(&testRequest{Address: &testAddress{PostalCode: code}}), qt.IsNil, qt.Commentf("code %q", code))
	}
	for _, code := range []string{"2", "-2010", "20100!", "12345678901"} {
		c.Assert(v.Validate(&testRequest{Address: &testAddress{PostalCode: code}}), qt.IsNotNil, qt.Commentf("code %q", code))
	}
}

func TestValidateEmailAndURL(t *testing.T) {
	c := qt.New(t)
	v := New()

	c.Assert(v.Validate(&testRequest{Email: "test+shop@example.co.uk", URL: "https://shop.example/ok"}), qt.IsNil)
	c.Assert(v.Validate(&testRequest{}), qt.IsNil)

	err := v.Validate(&testRequest{Email: "test@", URL: "not a url"})
	var ve ValidationErrors
	c.Assert(errors.As(err, &ve), qt.IsTrue)
	c.Assert(ve, qt.DeepEquals, ValidationErrors{
		{Field: "email", Message: "Invalid email format"},
		{Field: "success_url", Message: "Invalid URL format"},
	})
	c.Assert(err.Error(), qt.Equals, "email: Invalid email format, success_url: Invalid URL format")
}

func TestValidateMetadata(t *testing.T) {
	c := qt.New(t)
	v := New()

	c.Assert(v.Validate(&testRequest{Metadata: map[string]string{"a": "1", "b": "2"}}), qt.IsNil)

	err := v.Validate(&testRequest{Metadata: map[string]string{"a": "1", "b": "2", "c": "3"}})
	var ve ValidationErrors
	c.Assert(errors.As(err, &ve), qt.IsTrue)
	c.Assert(ve, qt.HasLen, 1)
	c.Assert(ve[0].Field, qt.Equals, "metadata")
	c.Assert(ve[0].Message, qt.Equals, "Must have at most 2 entries")

	err = v.Validate(&testRequest{Metadata: map[string]string{"toolong": "1"}})
	c.Assert(err, qt.IsNotNil)

	err = v.Validate(&testRequest{Metadata: map[string]string{"a": strings.Repeat("x", 11)}})
	c.Assert(errors.As(err, &ve), qt.IsTrue)
	c.Assert(ve[0].Message, qt.Equals, "Must be at most 10 characters long")
}
