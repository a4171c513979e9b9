package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/tokenarena/arena-backend/errors"
)

func TestCreatePaymentIntentValidation(t *testing.T) {
	c := qt.New(t)
	token, _, err := registerTestUser("payments@test.com", "payer", testUserPass)
	c.Assert(err, qt.IsNil)

	// the endpoint requires authentication
	resp, err := doRequest(http.MethodPost, paymentsIntentEndpoint, "", mustMarshal(&PaymentIntentRequest{
		Amount: 1000,
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusUnauthorized)
	c.Assert(resp.Body.Close(), qt.IsNil)

	// a non positive amount is rejected before reaching the gateway
	for _, amount := range []int64{0, -500} {
		resp, err := doRequest(http.MethodPost, paymentsIntentEndpoint, token, mustMarshal(&PaymentIntentRequest{
			Amount: amount,
		}))
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		apiErr := &apiError{}
		c.Assert(decodeBody(resp, apiErr), qt.IsNil)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrInvalidAmount.Code)
	}

	// a malformed body is rejected as well
	resp, err = doRequest(http.MethodPost, paymentsIntentEndpoint, token, []byte("{not-json"))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
	apiErr := &apiError{}
	c.Assert(decodeBody(resp, apiErr), qt.IsNil)
	c.Assert(apiErr.Code, qt.Equals, errors.ErrMalformedBody.Code)
}

func TestCreatePaymentIntentUpstreamErrorIsGeneric(t *testing.T) {
	c := qt.New(t)
	token, _, err := registerTestUser("payments-upstream@test.com", "payerup", testUserPass)
	c.Assert(err, qt.IsNil)

	// the request is valid, so it reaches the gateway, where the fake test
	// key makes the call fail. The caller must get the bare coded error,
	// the upstream failure detail belongs in the logs.
	resp, err := doRequest(http.MethodPost, paymentsIntentEndpoint, token, mustMarshal(&PaymentIntentRequest{
		Amount:      1000,
		PackageID:   "pkg_10",
		PackageName: "starter",
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusInternalServerError)
	apiErr := &apiError{}
	c.Assert(decodeBody(resp, apiErr), qt.IsNil)
	c.Assert(apiErr.Code, qt.Equals, errors.ErrStripeError.Code)
	c.Assert(apiErr.Error, qt.Equals, errors.ErrStripeError.Error())
}

func TestWriteInternalErrorHidesUpstreamDetail(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()
	upstream := fmt.Errorf("stripe: request failed, key sk_live_abc123 rejected by api.stripe.com")
	writeInternalError(rec, errors.ErrStripeError, upstream)

	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(strings.Contains(rec.Body.String(), "sk_live_abc123"), qt.IsFalse)
	apiErr := &apiError{}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), apiErr), qt.IsNil)
	c.Assert(apiErr.Error, qt.Equals, errors.ErrStripeError.Error())
	c.Assert(apiErr.Code, qt.Equals, errors.ErrStripeError.Code)
}
