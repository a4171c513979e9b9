package api

import (
	"io"
	"net/http"

	"github.com/tokenarena/arena-backend/errors"
	"github.com/tokenarena/arena-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// handleWebhook handles the incoming webhook event from Stripe. The signature
// is verified before anything else: a bad signature gets a 400 so the gateway
// retries the delivery. Once the signature checks out the event is always
// acknowledged with a 200, even if processing fails, because the gateway
// cannot fix a processing failure by resending the same event. Failures are
// logged for reconciliation.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("stripe webhook: error reading request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signatureHeader := r.Header.Get("Stripe-Signature")
	if err := a.stripe.HandleWebhookEvent(payload, signatureHeader); err != nil {
		if stripe.IsValidationError(err) {
			errors.ErrInvalidSignature.WithErr(err).Write(w)
			return
		}
		log.Errorw(err, "stripe webhook: event processing failed")
	}
	httpWriteJSON(w, map[string]bool{"received": true})
}
