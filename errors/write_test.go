package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestWrite(t *testing.T) {
	c := qt.New(t)

	w := httptest.NewRecorder()
	ErrProvinceConflict.With("20100 belongs to MI").WithData(map[string]string{
		"postalCode":       "20100",
		"capProvince":      "MI",
		"providedProvince": "RM",
	}).Write(w)

	c.Assert(w.Code, qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(w.Header().Get("Content-Type"), qt.Equals, "application/json")

	var body struct {
		Error   string            `json:"error"`
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	c.Assert(json.Unmarshal(w.Body.Bytes(), &body), qt.IsNil)
	c.Assert(body.Code, qt.Equals, "PROVINCE_CONFLICT")
	c.Assert(body.Error, qt.Equals, "province does not match postal code: 20100 belongs to MI")
	c.Assert(body.Details["capProvince"], qt.Equals, "MI")
	c.Assert(body.Details["providedProvince"], qt.Equals, "RM")
}

func TestWriteWithoutDetails(t *testing.T) {
	c := qt.New(t)

	w := httptest.NewRecorder()
	ErrMissingSignature.Write(w)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(w.Body.String(), qt.Equals, `{"error":"missing Stripe-Signature header","code":"MISSING_SIGNATURE"}`+"\n")
}

func TestWrapping(t *testing.T) {
	c := qt.New(t)

	cause := stderrors.New("card_declined")
	err := ErrProvider.WithErr(cause)
	c.Assert(stderrors.Is(err, cause), qt.IsTrue)
	c.Assert(err.Code, qt.Equals, ErrProvider.Code)

	msg := ErrProvider.WithMessage("Your card was declined.")
	c.Assert(msg.Error(), qt.Equals, "Your card was declined.")
	c.Assert(msg.HTTPstatus, qt.Equals, http.StatusInternalServerError)

	withData := ErrInvalidRequest.WithData("x").Withf("field %s", "email")
	c.Assert(withData.Data, qt.Equals, "x")
}
