package api

import (
	"net/http"
	"strconv"

	"github.com/tokenarena/arena-backend/errors"
)

// leaderboardHandler returns the top users ordered by tokens won, with wins
// as the tiebreaker.
func (a *API) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultLeaderboardSize)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			errors.ErrMalformedURLParam.Withf("invalid limit").Write(w)
			return
		}
		if parsed > maxLeaderboardSize {
			parsed = maxLeaderboardSize
		}
		limit = parsed
	}
	users, err := a.db.Leaderboard(limit)
	if err != nil {
		writeInternalError(w, errors.ErrInternalStorageError, err)
		return
	}
	res := &LeaderboardResponse{Entries: []*LeaderboardEntry{}}
	for i, user := range users {
		res.Entries = append(res.Entries, &LeaderboardEntry{
			Rank:      i + 1,
			UserID:    user.ID,
			Username:  user.Username,
			VIP:       user.VIP,
			Wins:      user.Stats.Wins,
			Losses:    user.Stats.Losses,
			TokensWon: user.Stats.TokensWon,
		})
	}
	httpWriteJSON(w, res)
}
