package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tokenarena/arena-backend/errors"
)

// userInfoHandler returns the current user information, including the token
// balance and the VIP flag.
func (a *API) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	httpWriteJSON(w, userInfoFromDB(user))
}

// userTransactionsHandler returns the token ledger of the current user,
// newest first.
func (a *API) userTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			errors.ErrMalformedURLParam.Withf("invalid limit").Write(w)
			return
		}
		limit = parsed
	}
	txs, err := a.db.TransactionsByUser(user.ID, limit)
	if err != nil {
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	list := &TransactionList{Transactions: []*TransactionInfo{}}
	for _, tx := range txs {
		list.Transactions = append(list.Transactions, &TransactionInfo{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		})
	}
	httpWriteJSON(w, list)
}

// healthHandler is the liveness probe.
func (a *API) healthHandler(w http.ResponseWriter, _ *http.Request) {
	httpWriteJSON(w, map[string]any{
		"message":   "ok",
		"timestamp": time.Now().UTC(),
	})
}
