package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tokenarena/arena-backend/db"
	"github.com/tokenarena/arena-backend/errors"
)

// createMatchHandler opens a new wager match owned by the current user.
func (a *API) createMatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &MatchRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Wager <= 0 {
		errors.ErrInvalidAmount.Withf("got %d", req.Wager).Write(w)
		return
	}
	if req.Game == "" {
		errors.ErrMalformedBody.Withf("game is required").Write(w)
		return
	}
	match, err := a.db.CreateMatch(user.ID, req.Game, req.Wager)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	httpWriteJSON(w, matchInfoFromDB(match))
}

// openMatchesHandler lists the matches waiting for an opponent.
func (a *API) openMatchesHandler(w http.ResponseWriter, _ *http.Request) {
	matches, err := a.db.OpenMatches(0)
	if err != nil {
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	list := &MatchList{Matches: []*MatchInfo{}}
	for _, match := range matches {
		list.Matches = append(list.Matches, matchInfoFromDB(match))
	}
	httpWriteJSON(w, list)
}

// matchInfoHandler returns the match referenced in the URL.
func (a *API) matchInfoHandler(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		errors.ErrMalformedURLParam.Withf("matchID is required").Write(w)
		return
	}
	match, err := a.db.Match(matchID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	httpWriteJSON(w, matchInfoFromDB(match))
}

// joinMatchHandler registers the current user as the opponent of an open
// match.
func (a *API) joinMatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	match, err := a.db.JoinMatch(matchID, user.ID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	httpWriteJSON(w, matchInfoFromDB(match))
}

// settleMatchHandler declares the winner of an active match. Only a
// participant can settle, and the winner must be one of the two players.
func (a *API) settleMatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	req := &MatchSettleRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	match, err := a.db.Match(matchID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	if user.ID != match.CreatorID && user.ID != match.OpponentID {
		errors.ErrNotMatchParticipant.Write(w)
		return
	}
	settled, err := a.db.SettleMatch(matchID, req.WinnerID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	httpWriteJSON(w, matchInfoFromDB(settled))
}

// cancelMatchHandler cancels an open match. Only the creator can cancel.
func (a *API) cancelMatchHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	match, err := a.db.CancelMatch(matchID, user.ID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	httpWriteJSON(w, matchInfoFromDB(match))
}

// writeMatchError maps a match operation error to its API error.
func writeMatchError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, db.ErrNotFound):
		errors.ErrMatchNotFound.Write(w)
	case stderrors.Is(err, db.ErrInsufficientTokens):
		errors.ErrInsufficientBalance.Write(w)
	case stderrors.Is(err, db.ErrInvalidMatchTransition):
		errors.ErrInvalidMatchState.Write(w)
	case stderrors.Is(err, db.ErrNotParticipant):
		errors.ErrNotMatchParticipant.Write(w)
	case stderrors.Is(err, db.ErrInvalidData):
		errors.ErrMalformedBody.Write(w)
	default:
		writeInternalError(w, errors.ErrInternalStorageError, err)
	}
}
