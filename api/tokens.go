package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/errors"
	"github.com/tokenarena/arena-backend/notifications"
	"go.vocdoni.io/dvote/log"
)

// tipTokensHandler moves tokens from the current user to another user.
func (a *API) tipTokensHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &TipRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Amount <= 0 {
		errors.ErrInvalidAmount.Withf("got %d", req.Amount).Write(w)
		return
	}
	if req.ToUserID == "" || req.ToUserID == user.ID {
		errors.ErrInvalidUserData.Withf("invalid tip recipient").Write(w)
		return
	}
	if _, err := a.db.User(req.ToUserID); err != nil {
		if err == db.ErrNotFound {
			errors.ErrUserNotFound.Write(w)
			return
		}
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	description := "tip"
	if req.Message != "" {
		description = "tip: " + req.Message
	}
	if err := a.db.TransferTokens(user.ID, req.ToUserID, req.Amount, description); err != nil {
		writeTokenOpError(w, err)
		return
	}
	updated, err := a.db.User(user.ID)
	if err != nil {
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	httpWriteJSON(w, &BalanceResponse{TokenBalance: updated.TokenBalance})
}

// withdrawTokensHandler debits tokens from the current user balance and
// records the withdrawal on the ledger.
func (a *API) withdrawTokensHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &WithdrawRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Amount <= 0 {
		errors.ErrInvalidAmount.Withf("got %d", req.Amount).Write(w)
		return
	}
	if err := a.db.SpendTokens(user.ID, req.Amount, db.TxTypeWithdrawal, "withdrawal"); err != nil {
		writeTokenOpError(w, err)
		return
	}
	updated, err := a.db.User(user.ID)
	if err != nil {
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	a.notifyWithdrawal(user, req.Amount, updated.TokenBalance)
	httpWriteJSON(w, &BalanceResponse{TokenBalance: updated.TokenBalance})
}

// notifyWithdrawal sends a best effort withdrawal confirmation to the user,
// by mail and by SMS when the user has a phone number. Failures are logged,
// never surfaced, the withdrawal already happened.
func (a *API) notifyWithdrawal(user *db.User, amount, balance int64) {
	body := fmt.Sprintf("You withdrew %d tokens. Your new balance is %d tokens.", amount, balance)
	if a.mail != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.mail.SendNotification(ctx, &notifications.Notification{
				ToName:    user.Username,
				ToAddress: user.Email,
				Subject:   "Withdrawal confirmation",
				Body:      body,
				PlainBody: body,
			}); err != nil {
				log.Warnw("failed to send withdrawal mail", "error", err, "user", user.ID)
			}
		}()
	}
	if a.sms != nil && user.Phone != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.sms.SendNotification(ctx, &notifications.Notification{
				ToNumber: user.Phone,
				Body:     body,
			}); err != nil {
				log.Warnw("failed to send withdrawal SMS", "error", err, "user", user.ID)
			}
		}()
	}
}

// writeTokenOpError maps a ledger operation error to its API error.
func writeTokenOpError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, db.ErrInsufficientTokens):
		errors.ErrInsufficientBalance.Write(w)
	case stderrors.Is(err, db.ErrNotFound):
		errors.ErrUserNotFound.Write(w)
	case stderrors.Is(err, db.ErrInvalidData):
		errors.ErrInvalidAmount.Write(w)
	default:
		writeInternalError(w, errors.ErrInternalStorageError, err)
	}
}
