package api

import (
	"encoding/json"
	"net/http"

	"github.com/tokenarena/arena-backend/errors"
	"github.com/tokenarena/arena-backend/stripe"
)

// createPaymentIntentHandler creates a payment intent for a token purchase.
// The amount is validated before any call to the payment gateway.
func (a *API) createPaymentIntentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &PaymentIntentRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Amount <= 0 {
		errors.ErrInvalidAmount.Withf("got %d", req.Amount).Write(w)
		return
	}
	intent, err := a.stripe.CreatePaymentIntent(user, req.Amount, req.PackageID, req.PackageName)
	if err != nil {
		writeInternalError(w, errors.ErrStripeError, err)
		return
	}
	httpWriteJSON(w, &PaymentIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          req.Amount,
		Tokens:          stripe.TokensForMinorAmount(req.Amount),
	})
}

// createSubscriptionHandler subscribes the current user to the VIP
// membership. The VIP flag itself is only set when the gateway confirms the
// subscription through the webhook.
func (a *API) createSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &SubscriptionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	subscription, err := a.stripe.CreateVIPSubscription(user, req.PaymentMethodID)
	if err != nil {
		writeInternalError(w, errors.ErrStripeError, err)
		return
	}
	res := &SubscriptionResponse{
		SubscriptionID: subscription.ID,
		Status:         string(subscription.Status),
	}
	if subscription.LatestInvoice != nil && subscription.LatestInvoice.PaymentIntent != nil {
		res.ClientSecret = subscription.LatestInvoice.PaymentIntent.ClientSecret
	}
	httpWriteJSON(w, res)
}
